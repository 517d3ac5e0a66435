// Package state mirrors engine state into Redis so dashboards and sibling
// processes see live positions, capital and cooldowns. Every write is
// best-effort: the engine logs failures and keeps trading.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtsys/intraday/journal"
	"github.com/dtsys/intraday/position"
)

const (
	keyCapital       = "capital"
	keyOpenPositions = "open_positions"
	keyClosedTrades  = "closed_trades"
)

func cooldownKey(symbol string) string {
	return "cooldown:" + symbol
}

func sentimentKey(symbol string) string {
	return "news_sentiment:" + symbol
}

// Options holds connection parameters for the Redis mirror.
type Options struct {
	Addr     string
	Password string
	DB       int
}

type Mirror struct {
	rdb *redis.Client
}

// New connects and pings; a mirror that cannot connect is an error here so
// the operator notices at startup, not silently mid-session.
func New(ctx context.Context, opts Options) (*Mirror, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("state: ping redis: %w", err)
	}
	return &Mirror{rdb: rdb}, nil
}

func (m *Mirror) Close() error {
	return m.rdb.Close()
}

// SetCapital overwrites the mirrored available-capital value.
func (m *Mirror) SetCapital(ctx context.Context, value float64) error {
	return m.rdb.Set(ctx, keyCapital, strconv.FormatFloat(value, 'f', -1, 64), 0).Err()
}

func (m *Mirror) Capital(ctx context.Context) (float64, error) {
	s, err := m.rdb.Get(ctx, keyCapital).Result()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}

// AddOpenPosition stores the position JSON in the open-positions hash,
// keyed by symbol.
func (m *Mirror) AddOpenPosition(ctx context.Context, p *position.Position) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("state: marshal position %s: %w", p.Symbol, err)
	}
	return m.rdb.HSet(ctx, keyOpenPositions, p.Symbol, data).Err()
}

func (m *Mirror) RemoveOpenPosition(ctx context.Context, symbol string) error {
	return m.rdb.HDel(ctx, keyOpenPositions, symbol).Err()
}

func (m *Mirror) OpenPositionCount(ctx context.Context) (int64, error) {
	return m.rdb.HLen(ctx, keyOpenPositions).Result()
}

// PushClosedTrade prepends the audit record to the closed-trades list.
func (m *Mirror) PushClosedTrade(ctx context.Context, rec journal.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("state: marshal closed trade %s: %w", rec.TradeID, err)
	}
	return m.rdb.LPush(ctx, keyClosedTrades, data).Err()
}

// SetCooldown suppresses re-entry for the symbol for the given duration.
func (m *Mirror) SetCooldown(ctx context.Context, symbol string, d time.Duration) error {
	return m.rdb.SetEx(ctx, cooldownKey(symbol), "true", d).Err()
}

func (m *Mirror) OnCooldown(ctx context.Context, symbol string) (bool, error) {
	n, err := m.rdb.Exists(ctx, cooldownKey(symbol)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetSentiment caches a symbol's news sentiment score.
func (m *Mirror) SetSentiment(ctx context.Context, symbol string, score float64) error {
	return m.rdb.Set(ctx, sentimentKey(symbol), strconv.FormatFloat(score, 'f', -1, 64), 0).Err()
}

// Sentiment returns the cached score; ok is false when nothing is cached.
func (m *Mirror) Sentiment(ctx context.Context, symbol string) (float64, bool, error) {
	s, err := m.rdb.Get(ctx, sentimentKey(symbol)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("state: parse sentiment %s: %w", symbol, err)
	}
	return v, true, nil
}

// SetHolidays caches the holiday date set (YYYY-MM-DD strings) with a TTL.
func (m *Mirror) SetHolidays(ctx context.Context, dates []string, ttl time.Duration) error {
	data, err := json.Marshal(dates)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, "trading_holidays", data, ttl).Err()
}

func (m *Mirror) Holidays(ctx context.Context) ([]string, error) {
	s, err := m.rdb.Get(ctx, "trading_holidays").Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var dates []string
	if err := json.Unmarshal([]byte(s), &dates); err != nil {
		return nil, fmt.Errorf("state: parse holidays: %w", err)
	}
	return dates, nil
}
