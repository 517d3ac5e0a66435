// Package analytics computes performance summaries from journaled trades.
package analytics

import (
	"sort"

	"github.com/dtsys/intraday/journal"
)

// Summary aggregates the outcome of a set of closed trades.
type Summary struct {
	TotalTrades int
	Wins        int
	Losses      int
	WinRate     float64 // percent of closed trades with positive PnL
	TotalPnL    float64
	AvgPnL      float64
	BestPnL     float64
	WorstPnL    float64
}

// Summarize folds records into a Summary. Zero trades yields the zero value.
func Summarize(recs []journal.Record) Summary {
	var s Summary
	if len(recs) == 0 {
		return s
	}

	s.TotalTrades = len(recs)
	s.BestPnL = recs[0].PnL
	s.WorstPnL = recs[0].PnL

	for _, r := range recs {
		s.TotalPnL += r.PnL
		switch {
		case r.PnL > 0:
			s.Wins++
		case r.PnL < 0:
			s.Losses++
		}
		if r.PnL > s.BestPnL {
			s.BestPnL = r.PnL
		}
		if r.PnL < s.WorstPnL {
			s.WorstPnL = r.PnL
		}
	}

	s.WinRate = float64(s.Wins) / float64(s.TotalTrades) * 100
	s.AvgPnL = s.TotalPnL / float64(s.TotalTrades)
	return s
}

// Bucket is one grouped PnL aggregate, sorted for stable reporting.
type Bucket struct {
	Key    string
	Trades int
	PnL    float64
}

// PnLBySymbol groups realized PnL per symbol, sorted by symbol.
func PnLBySymbol(recs []journal.Record) []Bucket {
	return group(recs, func(r journal.Record) string { return r.Symbol })
}

// PnLByStrategy groups realized PnL per strategy ID, sorted by ID.
func PnLByStrategy(recs []journal.Record) []Bucket {
	return group(recs, func(r journal.Record) string { return r.StrategyID })
}

// ExitsByReason counts closed trades per exit reason, sorted by reason.
func ExitsByReason(recs []journal.Record) []Bucket {
	return group(recs, func(r journal.Record) string { return r.Reason })
}

func group(recs []journal.Record, key func(journal.Record) string) []Bucket {
	agg := make(map[string]*Bucket)
	for _, r := range recs {
		k := key(r)
		b, ok := agg[k]
		if !ok {
			b = &Bucket{Key: k}
			agg[k] = b
		}
		b.Trades++
		b.PnL += r.PnL
	}

	out := make([]Bucket, 0, len(agg))
	for _, b := range agg {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
