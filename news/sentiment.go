// Package news scores recent headlines per symbol into a sentiment value in
// [-1, 1]. The scorer here is a keyword model good enough for backtests;
// live systems plug a real analyzer behind the same shape.
package news

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dtsys/intraday/state"
)

// HeadlineSource fetches recent headlines for a symbol. A nil source or an
// error means "no news", which scores neutral.
type HeadlineSource interface {
	Headlines(ctx context.Context, symbol string) ([]string, error)
}

var (
	positiveKeywords = []string{"gains", "strong", "positive", "growth", "rally", "upbeat"}
	negativeKeywords = []string{"concerns", "weak", "sell-off", "risk", "down", "crisis"}
)

// Analyze scores a batch of headlines by keyword hits, clamped to [-1, 1].
func Analyze(headlines []string) float64 {
	var score float64
	for _, h := range headlines {
		lower := strings.ToLower(h)
		for _, kw := range positiveKeywords {
			if strings.Contains(lower, kw) {
				score += 0.5
			}
		}
		for _, kw := range negativeKeywords {
			if strings.Contains(lower, kw) {
				score -= 0.5
			}
		}
	}
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

// Analyzer implements the engine's sentiment source: fetch, score, cache.
type Analyzer struct {
	source HeadlineSource
	mirror *state.Mirror // optional write-through cache
	log    *slog.Logger
}

func NewAnalyzer(source HeadlineSource, mirror *state.Mirror, log *slog.Logger) *Analyzer {
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{
		source: source,
		mirror: mirror,
		log:    log.With(slog.String("component", "news")),
	}
}

// Score returns the sentiment for a symbol, preferring the cached value.
// Any failure degrades to neutral; sentiment must never block a tick.
func (a *Analyzer) Score(symbol string) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if a.mirror != nil {
		if v, ok, err := a.mirror.Sentiment(ctx, symbol); err == nil && ok {
			return v
		}
	}

	if a.source == nil {
		return 0
	}

	headlines, err := a.source.Headlines(ctx, symbol)
	if err != nil {
		a.log.Warn("headline fetch failed, scoring neutral",
			slog.String("symbol", symbol), slog.Any("err", err))
		return 0
	}
	score := Analyze(headlines)

	if a.mirror != nil {
		if err := a.mirror.SetSentiment(ctx, symbol, score); err != nil {
			a.log.Warn("sentiment cache write failed",
				slog.String("symbol", symbol), slog.Any("err", err))
		}
	}
	return score
}
