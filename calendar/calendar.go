// Package calendar answers "is today a trading holiday or special session".
// Holiday data comes from the exchange API when reachable, a local JSON
// file otherwise, and is cached in Redis for a day. Weekends always count.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dtsys/intraday/state"
)

const (
	dateLayout = "02-Jan-2006" // exchange format, e.g. "26-Jan-2025"
	cacheTTL   = 24 * time.Hour
)

// apiResponse mirrors the exchange holiday-master payload shape.
type apiResponse struct {
	Data []struct {
		TradingDate string `json:"tradingDate"`
	} `json:"data"`
}

type fileFallback struct {
	TradingHolidays []struct {
		TradingDate string `json:"tradingDate"`
	} `json:"tradingHolidays"`
}

// Calendar lazily loads the holiday set on first use.
type Calendar struct {
	SourceURL    string
	FallbackPath string
	Client       *http.Client
	Mirror       *state.Mirror // optional cache
	Log          *slog.Logger

	mu       sync.Mutex
	loaded   bool
	holidays map[string]bool // "2006-01-02" → true
}

func New(sourceURL, fallbackPath string, mirror *state.Mirror, log *slog.Logger) *Calendar {
	if log == nil {
		log = slog.Default()
	}
	return &Calendar{
		SourceURL:    sourceURL,
		FallbackPath: fallbackPath,
		Client:       &http.Client{Timeout: 5 * time.Second},
		Mirror:       mirror,
		Log:          log.With(slog.String("component", "calendar")),
	}
}

// IsHolidayOrSpecialSession reports whether the given date is a weekend or a
// listed trading holiday.
func (c *Calendar) IsHolidayOrSpecialSession(t time.Time) bool {
	if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.loadLocked()
	}
	return c.holidays[t.Format("2006-01-02")]
}

// Refresh forces a reload from the primary source on next use.
func (c *Calendar) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.holidays = nil
}

func (c *Calendar) loadLocked() {
	c.holidays = make(map[string]bool)
	c.loaded = true

	ctx, cancel := context.WithTimeout(context.Background(), 6*time.Second)
	defer cancel()

	// 1. Redis cache.
	if c.Mirror != nil {
		if dates, err := c.Mirror.Holidays(ctx); err == nil && len(dates) > 0 {
			for _, d := range dates {
				c.holidays[d] = true
			}
			c.Log.Info("holidays loaded from cache", slog.Int("count", len(dates)))
			return
		}
	}

	// 2. Exchange API.
	if dates, err := c.fetchFromAPI(ctx); err == nil && len(dates) > 0 {
		c.store(ctx, dates, cacheTTL)
		c.Log.Info("holidays loaded from API", slog.Int("count", len(dates)))
		return
	} else if err != nil {
		c.Log.Warn("holiday API fetch failed, falling back to file", slog.Any("err", err))
	}

	// 3. Local JSON fallback. Static data, so cache it for much longer.
	dates, err := c.loadFromFile()
	if err != nil {
		c.Log.Error("holiday fallback file unusable", slog.Any("err", err))
		return
	}
	c.store(ctx, dates, 365*24*time.Hour)
	c.Log.Info("holidays loaded from fallback file", slog.Int("count", len(dates)))
}

func (c *Calendar) store(ctx context.Context, dates []string, ttl time.Duration) {
	for _, d := range dates {
		c.holidays[d] = true
	}
	if c.Mirror != nil {
		if err := c.Mirror.SetHolidays(ctx, dates, ttl); err != nil {
			c.Log.Warn("holiday cache write failed", slog.Any("err", err))
		}
	}
}

func (c *Calendar) fetchFromAPI(ctx context.Context) ([]string, error) {
	if c.SourceURL == "" {
		return nil, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SourceURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "intraday-engine/1.0")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("holiday API status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode holiday API response: %w", err)
	}

	var dates []string
	for _, h := range payload.Data {
		d, err := time.Parse(dateLayout, h.TradingDate)
		if err != nil {
			c.Log.Warn("unparsable holiday date from API", slog.String("date", h.TradingDate))
			continue
		}
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}

func (c *Calendar) loadFromFile() ([]string, error) {
	if c.FallbackPath == "" {
		return nil, fmt.Errorf("no fallback path configured")
	}
	data, err := os.ReadFile(c.FallbackPath)
	if err != nil {
		return nil, err
	}

	var payload fileFallback
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode holiday file: %w", err)
	}

	var dates []string
	for _, h := range payload.TradingHolidays {
		d, err := time.Parse(dateLayout, h.TradingDate)
		if err != nil {
			c.Log.Warn("unparsable holiday date in file", slog.String("date", h.TradingDate))
			continue
		}
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}
