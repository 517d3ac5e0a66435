package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreAddRejectsDuplicateSymbol(t *testing.T) {
	s := NewStore()

	assert.True(t, s.Add(newLong(t, 100, 1)))
	assert.False(t, s.Add(newLong(t, 101, 1)), "one open position per symbol")
	assert.Equal(t, 1, s.Count())
}

func TestStoreRemoveIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Add(newLong(t, 100, 1))

	_, ok := s.Remove("RELIANCE")
	assert.True(t, ok)

	_, ok = s.Remove("RELIANCE")
	assert.False(t, ok, "second remove is a no-op")
	assert.Equal(t, 0, s.Count())
}

func TestStoreSnapshotPreservesInsertionOrder(t *testing.T) {
	s := NewStore()
	for _, sym := range []string{"TCS", "INFY", "HDFC"} {
		p := newLong(t, 100, 1)
		p.Symbol = sym
		assert.True(t, s.Add(p))
	}

	snap := s.Snapshot()
	assert.Len(t, snap, 3)
	assert.Equal(t, "TCS", snap[0].Symbol)
	assert.Equal(t, "INFY", snap[1].Symbol)
	assert.Equal(t, "HDFC", snap[2].Symbol)

	// Removing from the middle keeps the rest in order.
	s.Remove("INFY")
	snap = s.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, "TCS", snap[0].Symbol)
	assert.Equal(t, "HDFC", snap[1].Symbol)
}

func TestStoreGet(t *testing.T) {
	s := NewStore()
	p := newLong(t, 250, 4)
	s.Add(p)

	got, ok := s.Get("RELIANCE")
	assert.True(t, ok)
	assert.Same(t, p, got)

	_, ok = s.Get("TCS")
	assert.False(t, ok)
}
