// Package ai defines the contract the engine consumes from the scoring
// model. The model itself is an external collaborator; everything here is
// either interface or deterministic fallback.
package ai

import (
	"github.com/dtsys/intraday/market"
	"github.com/dtsys/intraday/position"
)

type Trend string

const (
	TrendUp      Trend = "UP"
	TrendDown    Trend = "DOWN"
	TrendNeutral Trend = "NEUTRAL"
)

// Metrics is the per-symbol scoring bundle returned by the advisor.
// Leverage is a hint and may be nil; the engine then applies the default
// curve from ResolveLeverage.
type Metrics struct {
	Score            float64 // signal strength, ~[0, 1]
	Leverage         *float64
	Trend            Trend
	CircuitPotential float64 // likelihood of approaching a circuit limit, ~[0, 1]
}

// Advisor is the capability interface onto the AI collaborator. All calls
// are synchronous and must return within the tick; the engine never retries.
type Advisor interface {
	// TradeDirection resolves which way to trade the symbol; ok is false
	// when the model has no view.
	TradeDirection(symbol string) (position.Direction, bool)

	// MetricsFor scores the symbol against its recent history and current
	// news sentiment.
	MetricsFor(symbol string, h *market.History, sentiment float64) Metrics

	// AdjustSLTarget shifts the base stop-loss and target prices for the
	// prevailing sentiment.
	AdjustSLTarget(baseSL, baseTGT float64, dir position.Direction, sentiment float64) (sl, tgt float64)

	// ConfirmTrendReversal double-checks a trend flip before the engine
	// acts on it.
	ConfirmTrendReversal(symbol string, h *market.History) bool

	// TSLPercent returns the base trailing-stop percentage for the
	// position's current PnL percent. Zero means "no opinion".
	TSLPercent(symbol string, pnlPct float64) float64
}

// ResolveLeverage prefers the advisor's leverage hint and otherwise applies
// the default curve. The result is clamped to [1.0, cap]; session safety
// dampeners are applied by the caller afterwards.
func ResolveLeverage(m Metrics, cap float64) float64 {
	var lev float64
	if m.Leverage != nil {
		lev = *m.Leverage
	} else {
		switch {
		case m.Score >= 0.80:
			lev = 5.0
		case m.Score >= 0.50:
			lev = 3.5
		default:
			lev = 1.0
		}
	}

	if lev < 1.0 {
		lev = 1.0
	}
	if cap > 0 && lev > cap {
		lev = cap
	}
	return lev
}
