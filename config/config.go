package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Safety   SafetyConfig   `json:"safety" yaml:"safety"`
	Session  SessionConfig  `json:"session" yaml:"session"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Redis    RedisConfig    `json:"redis" yaml:"redis"`
	Calendar CalendarConfig `json:"calendar" yaml:"calendar"`
}

// AccountConfig holds the capital and session-wide exposure limits.
type AccountConfig struct {
	InitialCapital   float64 `json:"initial_capital" yaml:"initial_capital"`
	DailyLeverageCap float64 `json:"daily_leverage_cap" yaml:"daily_leverage_cap"`
	DailyExposureCap float64 `json:"daily_exposure_cap" yaml:"daily_exposure_cap"`
}

// StrategyConfig holds entry/exit rule parameters.
type StrategyConfig struct {
	StopLossPct        float64 `json:"sl_percent" yaml:"sl_percent"`
	TargetPct          float64 `json:"target_percent" yaml:"target_percent"`
	BaseTSLPct         float64 `json:"tsl_percent" yaml:"tsl_percent"`
	CapitalPerTradePct float64 `json:"capital_per_trade_pct" yaml:"capital_per_trade_pct"`
	MaxActivePositions int     `json:"max_active_positions" yaml:"max_active_positions"`
	MinProfitMode      bool    `json:"min_profit_mode" yaml:"min_profit_mode"`
	MinProfitPct       float64 `json:"min_profit_pct" yaml:"min_profit_pct"`
	MinProfitLockPct   float64 `json:"min_profit_lock_pct" yaml:"min_profit_lock_pct"`
	CooldownSeconds    int     `json:"cooldown_seconds" yaml:"cooldown_seconds"`
	StrategyID         string  `json:"strategy_id" yaml:"strategy_id"`
}

// SafetyConfig holds the session-level dampeners.
type SafetyConfig struct {
	BenchmarkSymbol    string  `json:"benchmark_symbol" yaml:"benchmark_symbol"`
	CrashThresholdPct  float64 `json:"crash_threshold_pct" yaml:"crash_threshold_pct"`
	CrashDampener      float64 `json:"crash_dampener" yaml:"crash_dampener"`
	HolidayDampener    float64 `json:"holiday_dampener" yaml:"holiday_dampener"`
	ProfitLockPct      float64 `json:"profit_lock_pct" yaml:"profit_lock_pct"`
	ProfitLockTSLPct   float64 `json:"profit_lock_tsl_pct" yaml:"profit_lock_tsl_pct"`
}

// SessionConfig holds market timing parameters.
type SessionConfig struct {
	MarketOpen   string `json:"market_open" yaml:"market_open"`   // "09:15"
	MarketClose  string `json:"market_close" yaml:"market_close"` // "15:30"
	AutoExitTime string `json:"auto_exit_time" yaml:"auto_exit_time"`
}

// JournalConfig selects the audit sink.
type JournalConfig struct {
	Type      string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesCSV string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	DBPath    string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// RedisConfig configures the optional state mirror.
type RedisConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db" yaml:"db"`
}

// CalendarConfig points at the holiday sources.
type CalendarConfig struct {
	SourceURL    string `json:"source_url" yaml:"source_url"`
	FallbackPath string `json:"fallback_path" yaml:"fallback_path"`
}

// LoadFromFile loads configuration from a YAML or JSON file, then applies
// any environment overrides.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Cooldown returns the re-entry suppression window as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Strategy.CooldownSeconds) * time.Second
}

// Validate checks the configuration for values that would break the engine.
func (c *Config) Validate() error {
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if c.Strategy.StopLossPct <= 0 {
		return fmt.Errorf("strategy.sl_percent must be positive")
	}
	if c.Strategy.TargetPct <= 0 {
		return fmt.Errorf("strategy.target_percent must be positive")
	}
	if c.Strategy.CapitalPerTradePct <= 0 || c.Strategy.CapitalPerTradePct > 100 {
		return fmt.Errorf("strategy.capital_per_trade_pct must be in (0, 100]")
	}
	if c.Strategy.MaxActivePositions <= 0 {
		return fmt.Errorf("strategy.max_active_positions must be positive")
	}
	if _, err := time.Parse("15:04", c.Session.AutoExitTime); err != nil {
		return fmt.Errorf("session.auto_exit_time %q: %w", c.Session.AutoExitTime, err)
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && c.Journal.TradesCSV == "" {
		return fmt.Errorf("journal.trades_file required for csv journal")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal.db_path required for sqlite journal")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr required when redis is enabled")
	}
	return nil
}

// Default returns the stock parameter set.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital:   1_000_000,
			DailyLeverageCap: 20,
			DailyExposureCap: 4_000_000,
		},
		Strategy: StrategyConfig{
			StopLossPct:        2.0,
			TargetPct:          10.0,
			BaseTSLPct:         1.0,
			CapitalPerTradePct: 10.0,
			MaxActivePositions: 10,
			MinProfitMode:      false,
			MinProfitPct:       3.0,
			MinProfitLockPct:   1.0,
			CooldownSeconds:    300,
			StrategyID:         "intraday-ai",
		},
		Safety: SafetyConfig{
			BenchmarkSymbol:   "NIFTY50",
			CrashThresholdPct: 3.0,
			CrashDampener:     0.1,
			HolidayDampener:   0.5,
			ProfitLockPct:     5.0,
			ProfitLockTSLPct:  0.5,
		},
		Session: SessionConfig{
			MarketOpen:   "09:15",
			MarketClose:  "15:30",
			AutoExitTime: "15:20",
		},
		Journal: JournalConfig{
			Type:      "csv",
			TradesCSV: "./trade_log.csv",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Calendar: CalendarConfig{
			FallbackPath: "./data/holidays.json",
		},
	}
}

// SaveToFile writes the config back out, YAML or JSON by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
