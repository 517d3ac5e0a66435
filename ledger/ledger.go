// Package ledger tracks the session's capital, aggregate leverage and
// aggregate notional exposure. Only position opens and closes mutate it.
package ledger

// Ledger is a single owned instance passed to the engine, never package
// state, so independent simulations can run side by side.
type Ledger struct {
	initial   float64
	available float64

	aggLeverage float64
	aggExposure float64

	leverageCap float64
	exposureCap float64
}

func New(initialCapital, dailyLeverageCap, dailyExposureCap float64) *Ledger {
	return &Ledger{
		initial:     initialCapital,
		available:   initialCapital,
		leverageCap: dailyLeverageCap,
		exposureCap: dailyExposureCap,
	}
}

// Reserve commits capital for a new position. It reports false without
// mutating anything when the notional exceeds levered capacity or either
// session cap would be breached.
func (l *Ledger) Reserve(notional, leverage float64) bool {
	if notional <= 0 || leverage <= 0 {
		return false
	}
	if notional > l.available*leverage {
		return false
	}
	if l.leverageCap > 0 && l.aggLeverage+leverage > l.leverageCap {
		return false
	}
	if l.exposureCap > 0 && l.aggExposure+notional > l.exposureCap {
		return false
	}

	l.available -= notional
	l.aggLeverage += leverage
	l.aggExposure += notional
	return true
}

// Release returns a closed position's notional plus realized PnL to the
// pool. Callers must pass the values recorded at that position's open, not
// anything recomputed from current prices, and call exactly once per close.
func (l *Ledger) Release(notional, leverage, pnl float64) {
	l.available += notional + pnl
	l.aggLeverage -= leverage
	l.aggExposure -= notional
}

func (l *Ledger) Initial() float64           { return l.initial }
func (l *Ledger) Available() float64         { return l.available }
func (l *Ledger) AggregateLeverage() float64 { return l.aggLeverage }
func (l *Ledger) AggregateExposure() float64 { return l.aggExposure }
func (l *Ledger) LeverageCap() float64       { return l.leverageCap }
