package position

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newLong(t *testing.T, entry, qty float64) *Position {
	t.Helper()
	return &Position{
		ID:         "t-1",
		Symbol:     "RELIANCE",
		Direction:  Long,
		EntryPrice: entry,
		Quantity:   qty,
		Leverage:   5,
		Notional:   entry * qty,
		EntryTime:  time.Date(2025, 8, 29, 9, 30, 0, 0, time.UTC),
		Open:       true,
	}
}

func newShort(t *testing.T, entry, qty float64) *Position {
	t.Helper()
	p := newLong(t, entry, qty)
	p.Direction = Short
	return p
}

func TestUnrealizedPnL(t *testing.T) {
	long := newLong(t, 100, 10)
	assert.Equal(t, 50.0, long.UnrealizedPnL(105))
	assert.Equal(t, -30.0, long.UnrealizedPnL(97))

	short := newShort(t, 100, 10)
	assert.Equal(t, -50.0, short.UnrealizedPnL(105))
	assert.Equal(t, 30.0, short.UnrealizedPnL(97))
}

func TestPnLPercent(t *testing.T) {
	long := newLong(t, 200, 1)
	assert.InDelta(t, 5.0, long.PnLPercent(210), 1e-9)

	short := newShort(t, 200, 1)
	assert.InDelta(t, -5.0, short.PnLPercent(210), 1e-9)

	zero := newLong(t, 0, 1)
	assert.Equal(t, 0.0, zero.PnLPercent(100))
}

func TestTightenStopLongOnlyRises(t *testing.T) {
	p := newLong(t, 100, 1)

	assert.True(t, p.TightenStop(98), "first candidate initializes the stop")
	assert.Equal(t, 98.0, p.TrailingStop)

	assert.True(t, p.TightenStop(99))
	assert.Equal(t, 99.0, p.TrailingStop)

	assert.False(t, p.TightenStop(97), "a looser candidate must be ignored")
	assert.Equal(t, 99.0, p.TrailingStop)

	assert.False(t, p.TightenStop(0))
	assert.False(t, p.TightenStop(-5))
}

func TestTightenStopShortOnlyFalls(t *testing.T) {
	p := newShort(t, 100, 1)

	assert.True(t, p.TightenStop(102))
	assert.True(t, p.TightenStop(101))
	assert.False(t, p.TightenStop(103))
	assert.Equal(t, 101.0, p.TrailingStop)
}

func TestStopHit(t *testing.T) {
	long := newLong(t, 100, 1)
	assert.False(t, long.StopHit(95), "unset stop never triggers")

	long.TightenStop(98)
	assert.False(t, long.StopHit(98.5))
	assert.True(t, long.StopHit(98))
	assert.True(t, long.StopHit(90))

	short := newShort(t, 100, 1)
	short.TightenStop(102)
	assert.False(t, short.StopHit(101.5))
	assert.True(t, short.StopHit(102))
	assert.True(t, short.StopHit(110))
}

func TestCloseProducesAuditRecord(t *testing.T) {
	p := newLong(t, 100, 10)
	exitAt := p.EntryTime.Add(45 * time.Minute)

	ct := p.Close(104, exitAt, ExitTargetProfit, "strat-1")

	assert.False(t, p.Open)
	assert.Equal(t, "t-1", ct.ID)
	assert.Equal(t, 40.0, ct.PnL)
	assert.Equal(t, 45*time.Minute, ct.Duration)
	assert.Equal(t, ExitTargetProfit, ct.Reason)
	assert.Equal(t, "strat-1", ct.StrategyID)
	assert.Equal(t, 104.0, ct.ExitPrice)
}
