package engine

import (
	"log/slog"
	"time"

	"github.com/dtsys/intraday/ai"
	"github.com/dtsys/intraday/market"
	"github.com/dtsys/intraday/position"
)

// runExitPipeline evaluates the exit rules for every open position, in a
// fixed order, short-circuiting on the first rule that closes it. The
// snapshot keeps iteration safe while closes mutate the store, and
// guarantees no position is processed by more than one closing rule per
// tick.
func (e *Engine) runExitPipeline(ts time.Time, bars map[string]market.Bar, eod bool) {
	for _, p := range e.store.Snapshot() {
		if !p.Open {
			continue
		}

		bar, hasBar := bars[p.Symbol]
		if hasBar {
			if e.checkHardStopTarget(p, bar, ts) {
				continue
			}
			if e.checkTrailingStop(p, bar, ts) {
				continue
			}
			if e.checkTrendFlip(p, bar, ts) {
				continue
			}
			if e.checkMinProfit(p, bar, ts) {
				continue
			}
		}

		// Rule 5: end-of-day liquidation, bar or no bar.
		if eod {
			e.closePosition(p, e.lastPrice(p), ts, position.ExitEOD)
		}
	}
}

// checkHardStopTarget is rule 1: sentiment-adjusted hard stop-loss and
// target prices off the entry.
func (e *Engine) checkHardStopTarget(p *position.Position, bar market.Bar, ts time.Time) bool {
	price := bar.Close

	var baseSL, baseTGT float64
	if p.Direction == position.Long {
		baseSL = p.EntryPrice * (1 - p.StopPct/100)
		baseTGT = p.EntryPrice * (1 + p.TargetPct/100)
	} else {
		baseSL = p.EntryPrice * (1 + p.StopPct/100)
		baseTGT = p.EntryPrice * (1 - p.TargetPct/100)
	}

	sl, tgt := e.advisor.AdjustSLTarget(baseSL, baseTGT, p.Direction, e.sentiment.Score(p.Symbol))

	if p.Direction == position.Long {
		if price <= sl {
			e.closePosition(p, price, ts, position.ExitStopLoss)
			return true
		}
		if price >= tgt {
			e.closePosition(p, price, ts, position.ExitTargetProfit)
			return true
		}
		return false
	}

	if price >= sl {
		e.closePosition(p, price, ts, position.ExitStopLoss)
		return true
	}
	if price <= tgt {
		e.closePosition(p, price, ts, position.ExitTargetProfit)
		return true
	}
	return false
}

// checkTrailingStop is rule 2: the AI-driven trailing stop, scaled by
// recent volatility and the position's leverage. The candidate only ever
// tightens the stop; a tighter value imposed by the profit lock survives.
func (e *Engine) checkTrailingStop(p *position.Position, bar market.Bar, ts time.Time) bool {
	price := bar.Close

	base := e.advisor.TSLPercent(p.Symbol, p.PnLPercent(price))
	if base <= 0 {
		base = e.params.BaseTSLPct
	}

	vol := market.RecentVolatility(e.histories[p.Symbol], e.params.VolatilityWindow)

	volMult := 1.0
	switch {
	case vol > 3.0:
		volMult = 0.7
	case vol < 1.0:
		volMult = 1.3
	}

	levMult := 1.0
	switch {
	case p.Leverage > 5:
		levMult = 0.5
	case p.Leverage > 2:
		levMult = 0.8
	}

	eff := base * volMult * levMult
	if eff < 0.2 {
		eff = 0.2
	}
	if eff > 5.0 {
		eff = 5.0
	}

	var candidate float64
	if p.Direction == position.Long {
		candidate = price * (1 - eff/100)
	} else {
		candidate = price * (1 + eff/100)
	}
	p.TightenStop(candidate)

	if p.StopHit(price) {
		e.closePosition(p, price, ts, position.ExitAITSL)
		return true
	}
	return false
}

// checkTrendFlip is rule 3: close when the trend signal opposes the
// position and the reversal is confirmed.
func (e *Engine) checkTrendFlip(p *position.Position, bar market.Bar, ts time.Time) bool {
	h := e.histories[p.Symbol]
	m := e.advisor.MetricsFor(p.Symbol, h, e.sentiment.Score(p.Symbol))

	opposed := (p.Direction == position.Long && m.Trend == ai.TrendDown) ||
		(p.Direction == position.Short && m.Trend == ai.TrendUp)
	if !opposed {
		return false
	}
	if !e.advisor.ConfirmTrendReversal(p.Symbol, h) {
		return false
	}

	e.closePosition(p, bar.Close, ts, position.ExitTrendFlip)
	return true
}

// checkMinProfit is rule 4: once unrealized profit reaches the threshold,
// arm a lock level above/below entry and close when price retraces to it.
// Profit-gated: it never closes at a loss.
func (e *Engine) checkMinProfit(p *position.Position, bar market.Bar, ts time.Time) bool {
	if !e.params.MinProfitMode {
		return false
	}

	price := bar.Close
	if !p.MinProfitArmed {
		if p.PnLPercent(price) >= e.params.MinProfitPct {
			p.MinProfitArmed = true
			e.log.Debug("minimum-profit lock armed",
				slog.String("symbol", p.Symbol),
				slog.Float64("pnl_pct", p.PnLPercent(price)))
		}
		return false
	}

	var lock float64
	if p.Direction == position.Long {
		lock = p.EntryPrice * (1 + e.params.MinProfitLockPct/100)
		if price <= lock && p.UnrealizedPnL(price) > 0 {
			e.closePosition(p, price, ts, position.ExitMinProfit)
			return true
		}
		return false
	}

	lock = p.EntryPrice * (1 - e.params.MinProfitLockPct/100)
	if price >= lock && p.UnrealizedPnL(price) > 0 {
		e.closePosition(p, price, ts, position.ExitMinProfit)
		return true
	}
	return false
}
