package backtest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtsys/intraday/ai"
	"github.com/dtsys/intraday/engine"
	"github.com/dtsys/intraday/ledger"
	"github.com/dtsys/intraday/market"
	"github.com/dtsys/intraday/position"
)

type tick struct {
	ts   time.Time
	bars map[string]market.Bar
}

// memFeed replays in-memory ticks for runner tests.
type memFeed struct {
	ticks  []tick
	index  int
	closed bool
	err    error
}

func (m *memFeed) Next() (time.Time, map[string]market.Bar, bool, error) {
	if m.err != nil {
		return time.Time{}, nil, false, m.err
	}
	if m.index >= len(m.ticks) {
		return time.Time{}, nil, false, nil
	}
	tk := m.ticks[m.index]
	m.index++
	return tk.ts, tk.bars, true, nil
}

func (m *memFeed) Close() error {
	m.closed = true
	return nil
}

// alwaysLong is a minimal advisor that goes long on every symbol.
type alwaysLong struct{}

func (alwaysLong) TradeDirection(string) (position.Direction, bool) { return position.Long, true }
func (alwaysLong) MetricsFor(string, *market.History, float64) ai.Metrics {
	return ai.Metrics{Score: 0.9, Trend: ai.TrendUp}
}
func (alwaysLong) AdjustSLTarget(sl, tgt float64, _ position.Direction, _ float64) (float64, float64) {
	return sl, tgt
}
func (alwaysLong) ConfirmTrendReversal(string, *market.History) bool { return false }
func (alwaysLong) TSLPercent(string, float64) float64                { return 1.0 }

func testBar(t *testing.T, symbol string, ts time.Time, close float64) market.Bar {
	t.Helper()
	return market.Bar{Symbol: symbol, Time: ts, Open: close, High: close, Low: close, Close: close}
}

func TestRunnerRequiresEngineAndFeed(t *testing.T) {
	_, err := (&Runner{}).Run(nil)
	assert.Error(t, err)

	led := ledger.New(100_000, 0, 0)
	eng := engine.New(engine.DefaultParams(), led, engine.Deps{})
	_, err = (&Runner{Engine: eng}).Run(nil)
	assert.Error(t, err)
}

func TestRunnerPropagatesFeedErrors(t *testing.T) {
	led := ledger.New(100_000, 0, 0)
	eng := engine.New(engine.DefaultParams(), led, engine.Deps{})

	_, err := (&Runner{Engine: eng, Feed: &memFeed{err: errors.New("torn file")}}).Run(nil)
	assert.ErrorContains(t, err, "torn file")
}

func TestRunnerReplaysAndSummarizes(t *testing.T) {
	t0 := time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)
	feed := &memFeed{ticks: []tick{
		{t0, map[string]market.Bar{"TCS": testBar(t, "TCS", t0, 100)}},
		{t0.Add(time.Minute), map[string]market.Bar{"TCS": testBar(t, "TCS", t0.Add(time.Minute), 103)}},
	}}

	led := ledger.New(1_000_000, 20, 0)
	eng := engine.New(engine.DefaultParams(), led, engine.Deps{Advisor: alwaysLong{}})

	runner := &Runner{
		Engine:  eng,
		Feed:    feed,
		Options: Options{CloseEnd: true},
	}

	res, err := runner.Run(nil)
	require.NoError(t, err)

	assert.True(t, feed.closed, "the runner owns the feed's lifetime")
	assert.Equal(t, t0, res.Start)
	assert.Equal(t, t0.Add(time.Minute), res.End)
	assert.Equal(t, 0, eng.Positions().Count(), "close-end liquidates leftovers")

	// One long from 100 closed at 103: 5000 shares, +15000.
	assert.InDelta(t, 15_000, res.PnL, 1e-9)
	assert.InDelta(t, 1_015_000, res.Available, 1e-9)
}
