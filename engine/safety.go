package engine

import (
	"log/slog"
	"time"

	"github.com/dtsys/intraday/market"
	"github.com/dtsys/intraday/position"
)

// applySafetyOverlay refreshes the session-level dampeners after the exit
// pipeline has run. The overlay never closes positions itself: the crash
// guard only dampens new-entry leverage and the profit lock only tightens
// trailing stops for rule 2 to act on.
func (e *Engine) applySafetyOverlay(ts time.Time, bars map[string]market.Bar) {
	e.updateCrashGuard(bars)
	e.applyProfitLock(bars)
}

// updateCrashGuard recomputes the benchmark drawdown from its session open
// each tick. While active, every open position is tagged and new-entry
// leverage is multiplied by the crash dampener.
func (e *Engine) updateCrashGuard(bars map[string]market.Bar) {
	bench, ok := bars[e.params.BenchmarkSymbol]
	if !ok {
		return
	}

	if e.session.benchmarkOpen == 0 {
		e.session.benchmarkOpen = bench.Open
	}
	if e.session.benchmarkOpen == 0 {
		return
	}

	drop := (e.session.benchmarkOpen - bench.Close) / e.session.benchmarkOpen * 100
	active := drop >= e.params.CrashThresholdPct

	if active && !e.session.crashActive {
		e.log.Warn("market crash guard activated",
			slog.String("benchmark", e.params.BenchmarkSymbol),
			slog.Float64("drop_pct", drop))
		for _, p := range e.store.Snapshot() {
			p.Safety = position.SafetyCrash
		}
	}
	if !active && e.session.crashActive {
		e.log.Info("market crash guard cleared",
			slog.Float64("drop_pct", drop))
	}

	e.session.crashActive = active
	if e.metrics != nil {
		if active {
			e.metrics.CrashGuardActive.Set(1)
		} else {
			e.metrics.CrashGuardActive.Set(0)
		}
	}
}

// applyProfitLock tightens the trailing stop of well-in-profit positions to
// a narrow band under the current price. Rule 2 keeps the tighter of this
// and its own candidate, so the lock survives volatile-width recomputes.
func (e *Engine) applyProfitLock(bars map[string]market.Bar) {
	for _, p := range e.store.Snapshot() {
		bar, ok := bars[p.Symbol]
		if !ok {
			continue
		}
		price := bar.Close
		if p.PnLPercent(price) < e.params.ProfitLockPct {
			continue
		}

		var candidate float64
		if p.Direction == position.Long {
			candidate = price * (1 - e.params.ProfitLockTSLPct/100)
		} else {
			candidate = price * (1 + e.params.ProfitLockTSLPct/100)
		}

		if p.TightenStop(candidate) {
			p.Safety = position.SafetyProfitLock
			e.log.Debug("profit lock tightened trailing stop",
				slog.String("symbol", p.Symbol),
				slog.Float64("trailing_stop", p.TrailingStop))
		}
	}
}

// entryLeverageMultiplier combines the session dampeners applied to every
// newly resolved entry leverage.
func (e *Engine) entryLeverageMultiplier() float64 {
	mult := e.session.holidayMult
	if e.session.crashActive {
		mult *= e.params.CrashDampener
	}
	return mult
}
