package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveStreamRollsTicksIntoMinuteBars(t *testing.T) {
	s := NewLiveStream("ws://example", []string{"TCS"}, nil)

	base := time.Date(2025, 8, 29, 9, 15, 0, 0, time.UTC)

	s.ingest(tickMessage{Symbol: "TCS", LTP: 100, Volume: 10, TS: base.Unix()})
	s.ingest(tickMessage{Symbol: "TCS", LTP: 102, Volume: 5, TS: base.Add(20 * time.Second).Unix()})
	s.ingest(tickMessage{Symbol: "TCS", LTP: 99, Volume: 5, TS: base.Add(40 * time.Second).Unix()})

	// First print of the next minute flushes the completed one.
	s.ingest(tickMessage{Symbol: "TCS", LTP: 101, Volume: 1, TS: base.Add(time.Minute).Unix()})

	select {
	case out := <-s.Bars:
		assert.Equal(t, base, out.Time)
		b, ok := out.Bars["TCS"]
		require.True(t, ok)
		assert.Equal(t, 100.0, b.Open)
		assert.Equal(t, 102.0, b.High)
		assert.Equal(t, 99.0, b.Low)
		assert.Equal(t, 99.0, b.Close)
		assert.Equal(t, 20.0, b.Volume)
	default:
		t.Fatal("expected a completed minute on the channel")
	}
}

func TestLiveStreamGroupsSymbolsPerMinute(t *testing.T) {
	s := NewLiveStream("ws://example", []string{"TCS", "INFY"}, nil)

	base := time.Date(2025, 8, 29, 9, 15, 0, 0, time.UTC)
	s.ingest(tickMessage{Symbol: "TCS", LTP: 100, TS: base.Unix()})
	s.ingest(tickMessage{Symbol: "INFY", LTP: 50, TS: base.Add(30 * time.Second).Unix()})
	s.flush()

	out := <-s.Bars
	assert.Len(t, out.Bars, 2)
	assert.Equal(t, 100.0, out.Bars["TCS"].Close)
	assert.Equal(t, 50.0, out.Bars["INFY"].Close)
}

func TestLiveStreamFlushOnEmptyIsNoOp(t *testing.T) {
	s := NewLiveStream("ws://example", nil, nil)
	s.flush()

	select {
	case <-s.Bars:
		t.Fatal("nothing should be emitted")
	default:
	}
}
