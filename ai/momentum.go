package ai

import (
	"sync"

	"github.com/dtsys/intraday/market"
	"github.com/dtsys/intraday/position"
)

// Momentum is a deterministic advisor for backtests and paper sessions.
// It scores on short-term momentum, reads trend from a five-bar window and
// tightens the trailing stop as profit accumulates. Live deployments swap
// in a real model behind the same Advisor interface.
type Momentum struct {
	// BaseTSLPct is returned while a position is not yet meaningfully in
	// profit. Defaults to 1.0.
	BaseTSLPct float64

	mu     sync.Mutex
	trends map[string]Trend
}

func NewMomentum() *Momentum {
	return &Momentum{
		BaseTSLPct: 1.0,
		trends:     make(map[string]Trend),
	}
}

func (m *Momentum) TradeDirection(symbol string) (position.Direction, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.trends[symbol] {
	case TrendUp:
		return position.Long, true
	case TrendDown:
		return position.Short, true
	}
	return "", false
}

func (m *Momentum) MetricsFor(symbol string, h *market.History, sentiment float64) Metrics {
	trend := detectTrend(h)

	m.mu.Lock()
	m.trends[symbol] = trend
	m.mu.Unlock()

	var score float64
	last, err := h.Last()
	prev, errPrev := h.At(1)
	if err == nil && errPrev == nil && last.Close > prev.Close {
		score = 0.8
	}

	// A large single-bar move hints at an approaching circuit limit.
	var circuit float64
	if err == nil && errPrev == nil && prev.Close > 0 {
		move := (last.Close - prev.Close) / prev.Close * 100
		if move < 0 {
			move = -move
		}
		circuit = move / 10
		if circuit > 1 {
			circuit = 1
		}
	}

	return Metrics{
		Score:            score,
		Trend:            trend,
		CircuitPotential: circuit,
	}
}

// AdjustSLTarget widens the target and loosens the stop a little on
// favorable sentiment, and the reverse on adverse sentiment. Sentiment is
// ~[-1, 1]; the adjustment tops out at 20% of the original distance.
func (m *Momentum) AdjustSLTarget(baseSL, baseTGT float64, dir position.Direction, sentiment float64) (float64, float64) {
	factor := 1 + 0.2*sentiment
	if dir == position.Short {
		factor = 1 - 0.2*sentiment
	}
	return baseSL, baseTGT * factor
}

func (m *Momentum) ConfirmTrendReversal(symbol string, h *market.History) bool {
	// Confirm only when the last three closes all move the same way as the
	// five-bar trend.
	if h == nil || h.Len() < 4 {
		return false
	}
	trend := detectTrend(h)
	if trend == TrendNeutral {
		return false
	}
	for i := 0; i < 3; i++ {
		cur, err1 := h.At(i)
		older, err2 := h.At(i + 1)
		if err1 != nil || err2 != nil {
			return false
		}
		if trend == TrendUp && cur.Close <= older.Close {
			return false
		}
		if trend == TrendDown && cur.Close >= older.Close {
			return false
		}
	}
	return true
}

// TSLPercent tightens to 0.5% once the position is more than 5% in profit.
func (m *Momentum) TSLPercent(symbol string, pnlPct float64) float64 {
	if pnlPct > 5.0 {
		return 0.5
	}
	if m.BaseTSLPct > 0 {
		return m.BaseTSLPct
	}
	return 1.0
}

func detectTrend(h *market.History) Trend {
	if h == nil || h.Len() < 5 {
		return TrendNeutral
	}
	last, err1 := h.Last()
	back, err2 := h.At(4)
	if err1 != nil || err2 != nil {
		return TrendNeutral
	}
	switch {
	case last.Close > back.Close:
		return TrendUp
	case last.Close < back.Close:
		return TrendDown
	}
	return TrendNeutral
}
