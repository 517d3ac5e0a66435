// Package backtest replays recorded minute bars through the lifecycle
// engine and summarizes the outcome.
package backtest

import (
	"fmt"
	"time"

	"github.com/dtsys/intraday/engine"
	"github.com/dtsys/intraday/feed"
	"github.com/dtsys/intraday/journal"
	"github.com/dtsys/intraday/position"
)

// Options controls how the runner behaves at the end of the dataset.
type Options struct {
	// If true, force-close every remaining open position when the feed is
	// exhausted. The engine's own end-of-day rule usually gets there first;
	// this is the backstop for truncated datasets.
	CloseEnd    bool
	CloseReason position.ExitReason
}

// Runner drives an engine forward over a bar feed, one minute per tick.
type Runner struct {
	Engine  *engine.Engine
	Feed    feed.Source
	Options Options
}

// Result is the replay summary.
type Result struct {
	Available float64
	PnL       float64
	Trades    int
	Wins      int
	Losses    int
	Start     time.Time
	End       time.Time
}

// Run executes the replay loop: read a tick, hand it to the engine, repeat
// until the feed is exhausted. If j is not nil, the trades/wins/losses
// summary is computed from trades journaled within the observed time range.
func (r *Runner) Run(j *journal.SQLite) (Result, error) {
	if r.Engine == nil {
		return Result{}, fmt.Errorf("backtest: Engine is required")
	}
	if r.Feed == nil {
		return Result{}, fmt.Errorf("backtest: Feed is required")
	}
	defer r.Feed.Close()

	var start, end time.Time

	for {
		ts, bars, ok, err := r.Feed.Next()
		if err != nil {
			return Result{}, err
		}
		if !ok {
			break
		}

		if start.IsZero() || ts.Before(start) {
			start = ts
		}
		if end.IsZero() || ts.After(end) {
			end = ts
		}

		r.Engine.OnMinute(ts, bars)
	}

	if r.Options.CloseEnd {
		reason := r.Options.CloseReason
		if reason == "" {
			reason = position.ExitEOD
		}
		r.Engine.CloseAll(end, reason)
	}

	led := r.Engine.Ledger()
	res := Result{
		Available: led.Available(),
		PnL:       led.Available() - led.Initial(),
		Start:     start,
		End:       end,
	}

	if j != nil && !start.IsZero() && !end.IsZero() && start.Before(end) {
		// Extend the window a hair so trades closing exactly at end count.
		recs, err := j.ListTradesClosedBetween(start, end.Add(time.Nanosecond))
		if err == nil {
			res.Trades = len(recs)
			for _, tr := range recs {
				switch {
				case tr.PnL > 0:
					res.Wins++
				case tr.PnL < 0:
					res.Losses++
				}
			}
		}
	}

	return res, nil
}
