package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtsys/intraday/journal"
)

func records(t *testing.T) []journal.Record {
	t.Helper()
	return []journal.Record{
		{TradeID: "1", Symbol: "TCS", StrategyID: "a", Reason: "target_profit", PnL: 500},
		{TradeID: "2", Symbol: "TCS", StrategyID: "a", Reason: "stop_loss", PnL: -200},
		{TradeID: "3", Symbol: "INFY", StrategyID: "b", Reason: "eod", PnL: 0},
		{TradeID: "4", Symbol: "INFY", StrategyID: "a", Reason: "ai_tsl", PnL: 100},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(records(t))

	assert.Equal(t, 4, s.TotalTrades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.InDelta(t, 50.0, s.WinRate, 1e-9)
	assert.Equal(t, 400.0, s.TotalPnL)
	assert.Equal(t, 100.0, s.AvgPnL)
	assert.Equal(t, 500.0, s.BestPnL)
	assert.Equal(t, -200.0, s.WorstPnL)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestPnLBySymbol(t *testing.T) {
	buckets := PnLBySymbol(records(t))

	assert.Len(t, buckets, 2)
	assert.Equal(t, Bucket{Key: "INFY", Trades: 2, PnL: 100}, buckets[0])
	assert.Equal(t, Bucket{Key: "TCS", Trades: 2, PnL: 300}, buckets[1])
}

func TestPnLByStrategy(t *testing.T) {
	buckets := PnLByStrategy(records(t))

	assert.Len(t, buckets, 2)
	assert.Equal(t, Bucket{Key: "a", Trades: 3, PnL: 400}, buckets[0])
	assert.Equal(t, Bucket{Key: "b", Trades: 1, PnL: 0}, buckets[1])
}

func TestExitsByReason(t *testing.T) {
	buckets := ExitsByReason(records(t))

	assert.Len(t, buckets, 4)
	assert.Equal(t, "ai_tsl", buckets[0].Key)
	assert.Equal(t, "eod", buckets[1].Key)
	assert.Equal(t, "stop_loss", buckets[2].Key)
	assert.Equal(t, "target_profit", buckets[3].Key)
}
