package news

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeScoresKeywords(t *testing.T) {
	assert.Equal(t, 0.5, Analyze([]string{"Markets see strong session"}))
	assert.Equal(t, -0.5, Analyze([]string{"Broad sell-off hits IT stocks"}))
	assert.Equal(t, 0.0, Analyze([]string{"Quarterly results due Thursday"}))
	assert.Equal(t, 0.0, Analyze(nil))
}

func TestAnalyzeClampsToUnitRange(t *testing.T) {
	bullish := []string{
		"Strong gains on growth outlook",
		"Rally continues, upbeat brokers",
	}
	assert.Equal(t, 1.0, Analyze(bullish))

	bearish := []string{
		"Crisis concerns deepen",
		"Weak demand, sell-off accelerates",
	}
	assert.Equal(t, -1.0, Analyze(bearish))
}

func TestAnalyzeMixedHeadlinesNet(t *testing.T) {
	// One positive and one negative hit cancel out.
	assert.Equal(t, 0.0, Analyze([]string{"Strong quarter despite demand concerns"}))
}

type stubHeadlines struct {
	headlines []string
	err       error
}

func (s stubHeadlines) Headlines(ctx context.Context, symbol string) ([]string, error) {
	return s.headlines, s.err
}

func TestAnalyzerScoresFromSource(t *testing.T) {
	a := NewAnalyzer(stubHeadlines{headlines: []string{"Rally in banking stocks"}}, nil, nil)
	assert.Equal(t, 0.5, a.Score("HDFC"))
}

func TestAnalyzerDegradesToNeutral(t *testing.T) {
	assert.Equal(t, 0.0, NewAnalyzer(nil, nil, nil).Score("TCS"),
		"no source means no news")

	failing := NewAnalyzer(stubHeadlines{err: errors.New("upstream down")}, nil, nil)
	assert.Equal(t, 0.0, failing.Score("TCS"), "fetch failures score neutral")
}
