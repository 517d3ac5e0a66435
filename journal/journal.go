// Package journal is the audit sink: one append-only record per closed
// trade. Writes must never stop trading — callers log and swallow errors.
package journal

import (
	"encoding/json"
	"time"

	"github.com/dtsys/intraday/position"
)

// Record is the audit schema. AIMetrics is stored verbatim as JSON and
// never interpreted here.
type Record struct {
	TradeID    string
	Symbol     string
	Direction  string
	Quantity   float64
	Leverage   float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	PnL        float64
	Duration   time.Duration
	Reason     string
	StrategyID string
	AIScore    float64
	Sentiment  float64
	SafetyFlag string
	AIMetrics  string
}

// FromClosedTrade maps a closed position onto the audit schema.
func FromClosedTrade(ct position.ClosedTrade) Record {
	metrics, err := json.Marshal(ct.Metrics)
	if err != nil {
		metrics = []byte("{}")
	}
	return Record{
		TradeID:    ct.ID,
		Symbol:     ct.Symbol,
		Direction:  string(ct.Direction),
		Quantity:   ct.Quantity,
		Leverage:   ct.Leverage,
		EntryPrice: ct.EntryPrice,
		ExitPrice:  ct.ExitPrice,
		EntryTime:  ct.EntryTime,
		ExitTime:   ct.ExitTime,
		PnL:        ct.PnL,
		Duration:   ct.Duration,
		Reason:     string(ct.Reason),
		StrategyID: ct.StrategyID,
		AIScore:    ct.Metrics.Score,
		Sentiment:  ct.Sentiment,
		SafetyFlag: string(ct.Safety),
		AIMetrics:  string(metrics),
	}
}

type Journal interface {
	RecordTrade(Record) error
	Close() error
}
