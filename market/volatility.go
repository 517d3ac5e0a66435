package market

import "math"

// DefaultVolatilityPct is used when a symbol has too little history to
// compute a meaningful standard deviation.
const DefaultVolatilityPct = 2.0

// Volatility returns the standard deviation of percentage changes between
// consecutive closes, expressed in percent.
func Volatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}

	changes := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		changes = append(changes, (closes[i]-closes[i-1])/closes[i-1]*100)
	}
	if len(changes) == 0 {
		return 0
	}

	var mean float64
	for _, c := range changes {
		mean += c
	}
	mean /= float64(len(changes))

	var variance float64
	for _, c := range changes {
		d := c - mean
		variance += d * d
	}
	variance /= float64(len(changes))

	return math.Sqrt(variance)
}

// RecentVolatility computes the pct-change volatility over the most recent
// window of bars. Symbols with fewer than minObs observations get the fixed
// default so the trailing stop still has a sane width early in the session.
func RecentVolatility(h *History, minObs int) float64 {
	if h == nil || h.Len() < minObs {
		return DefaultVolatilityPct
	}
	return Volatility(h.Closes(minObs))
}
