package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVolatilityOfConstantSeriesIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Volatility([]float64{100, 100, 100, 100}))
}

func TestVolatilityNeedsTwoCloses(t *testing.T) {
	assert.Equal(t, 0.0, Volatility(nil))
	assert.Equal(t, 0.0, Volatility([]float64{100}))
}

func TestVolatilityAlternatingSeries(t *testing.T) {
	// +1% then roughly -0.99%: two changes symmetric around ~0.
	closes := []float64{100, 101, 100, 101, 100}
	v := Volatility(closes)
	assert.InDelta(t, 1.0, v, 0.05)
}

func TestRecentVolatilityFallsBackToDefault(t *testing.T) {
	assert.Equal(t, DefaultVolatilityPct, RecentVolatility(nil, 10))

	h := NewHistory(0)
	for _, c := range []float64{100, 101, 102} {
		h.Add(bar(t, c))
	}
	assert.Equal(t, DefaultVolatilityPct, RecentVolatility(h, 10),
		"too few bars uses the default")

	for _, c := range []float64{103, 104, 105, 106, 107, 108, 109} {
		h.Add(bar(t, c))
	}
	assert.NotEqual(t, DefaultVolatilityPct, RecentVolatility(h, 10))
}
