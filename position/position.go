// Package position holds the trade lifecycle types: an open Position, the
// immutable ClosedTrade it becomes, and the Store that tracks open positions
// per symbol.
package position

import "time"

type Direction string

const (
	Long  Direction = "LONG"
	Short Direction = "SHORT"
)

// SafetyFlag records which session-level safety rule last touched the
// position. It is advisory and audit-only; it never drives a close directly.
type SafetyFlag string

const (
	SafetyNone       SafetyFlag = "none"
	SafetyProfitLock SafetyFlag = "profit_lock"
	SafetyCrash      SafetyFlag = "market_crash"
)

type ExitReason string

const (
	ExitStopLoss     ExitReason = "stop_loss"
	ExitTargetProfit ExitReason = "target_profit"
	ExitAITSL        ExitReason = "ai_tsl"
	ExitTrendFlip    ExitReason = "trend_flip"
	ExitMinProfit    ExitReason = "min_profit"
	ExitEOD          ExitReason = "eod"
	ExitManual       ExitReason = "manual"
)

// AIMetrics is the advisor snapshot captured at entry. Stored verbatim on the
// position and echoed into the audit record; the engine never re-reads it
// after entry.
type AIMetrics struct {
	Score            float64  `json:"score"`
	Leverage         *float64 `json:"leverage,omitempty"`
	Trend            string   `json:"trend"`
	CircuitPotential float64  `json:"circuit_potential"`
}

// Position is one open trade. At most one exists per symbol.
type Position struct {
	ID         string
	Symbol     string
	Direction  Direction
	EntryPrice float64
	Quantity   float64
	Leverage   float64
	Notional   float64
	EntryTime  time.Time

	// TrailingStop only ever tightens toward the favorable side; use
	// TightenStop to mutate it.
	TrailingStop float64

	StopPct   float64
	TargetPct float64

	Metrics   AIMetrics
	Sentiment float64
	Safety    SafetyFlag

	// Armed once unrealized profit reaches the minimum-profit threshold;
	// the min-profit exit rule then waits for price to fall back to the
	// lock level.
	MinProfitArmed bool

	Open bool
}

// UnrealizedPnL is (price − entry) × qty for longs, negated for shorts.
func (p *Position) UnrealizedPnL(price float64) float64 {
	pnl := (price - p.EntryPrice) * p.Quantity
	if p.Direction == Short {
		pnl = -pnl
	}
	return pnl
}

// PnLPercent is the unrealized move relative to entry, in percent,
// direction-aware.
func (p *Position) PnLPercent(price float64) float64 {
	if p.EntryPrice == 0 {
		return 0
	}
	pct := (price - p.EntryPrice) / p.EntryPrice * 100
	if p.Direction == Short {
		pct = -pct
	}
	return pct
}

// TightenStop moves the trailing stop to candidate only if that is tighter:
// higher for a long, lower for a short. It reports whether the stop moved.
func (p *Position) TightenStop(candidate float64) bool {
	if candidate <= 0 {
		return false
	}
	if p.TrailingStop == 0 {
		p.TrailingStop = candidate
		return true
	}
	switch p.Direction {
	case Long:
		if candidate > p.TrailingStop {
			p.TrailingStop = candidate
			return true
		}
	case Short:
		if candidate < p.TrailingStop {
			p.TrailingStop = candidate
			return true
		}
	}
	return false
}

// StopHit reports whether price has crossed the trailing stop.
func (p *Position) StopHit(price float64) bool {
	if p.TrailingStop == 0 {
		return false
	}
	if p.Direction == Long {
		return price <= p.TrailingStop
	}
	return price >= p.TrailingStop
}

// ClosedTrade is the immutable record of a finished position. Built exactly
// once, at close, and appended to the audit journal.
type ClosedTrade struct {
	ID         string
	Symbol     string
	Direction  Direction
	Quantity   float64
	Leverage   float64
	Notional   float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	PnL        float64
	Duration   time.Duration
	Reason     ExitReason
	StrategyID string
	Metrics    AIMetrics
	Sentiment  float64
	Safety     SafetyFlag
}

// Close transitions the position OPEN → CLOSED and returns the audit record.
// Callers must ensure this happens at most once; the Store enforces it by
// removing the position in the same step.
func (p *Position) Close(exitPrice float64, exitTime time.Time, reason ExitReason, strategyID string) ClosedTrade {
	p.Open = false
	return ClosedTrade{
		ID:         p.ID,
		Symbol:     p.Symbol,
		Direction:  p.Direction,
		Quantity:   p.Quantity,
		Leverage:   p.Leverage,
		Notional:   p.Notional,
		EntryPrice: p.EntryPrice,
		ExitPrice:  exitPrice,
		EntryTime:  p.EntryTime,
		ExitTime:   exitTime,
		PnL:        p.UnrealizedPnL(exitPrice),
		Duration:   exitTime.Sub(p.EntryTime),
		Reason:     reason,
		StrategyID: strategyID,
		Metrics:    p.Metrics,
		Sentiment:  p.Sentiment,
		Safety:     p.Safety,
	}
}
