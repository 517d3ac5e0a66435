package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateCatchesBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capital", func(c *Config) { c.Account.InitialCapital = 0 }},
		{"negative stop", func(c *Config) { c.Strategy.StopLossPct = -1 }},
		{"zero target", func(c *Config) { c.Strategy.TargetPct = 0 }},
		{"trade pct over 100", func(c *Config) { c.Strategy.CapitalPerTradePct = 150 }},
		{"zero max positions", func(c *Config) { c.Strategy.MaxActivePositions = 0 }},
		{"bad auto exit time", func(c *Config) { c.Session.AutoExitTime = "half past three" }},
		{"unknown journal type", func(c *Config) { c.Journal.Type = "parquet" }},
		{"csv journal without path", func(c *Config) { c.Journal.TradesCSV = "" }},
		{"redis enabled without addr", func(c *Config) { c.Redis.Enabled = true; c.Redis.Addr = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	content := `
account:
  initial_capital: 250000
strategy:
  sl_percent: 1.5
  target_percent: 8
  tsl_percent: 1
  capital_per_trade_pct: 5
  max_active_positions: 4
  cooldown_seconds: 120
  strategy_id: test-run
session:
  auto_exit_time: "15:10"
journal:
  type: csv
  trades_file: ./trades.csv
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 250_000.0, cfg.Account.InitialCapital)
	assert.Equal(t, 1.5, cfg.Strategy.StopLossPct)
	assert.Equal(t, 4, cfg.Strategy.MaxActivePositions)
	assert.Equal(t, "15:10", cfg.Session.AutoExitTime)
	assert.Equal(t, 2*time.Minute, cfg.Cooldown())
}

func TestLoadFromJSONFile(t *testing.T) {
	cfg := Default()
	cfg.Account.InitialCapital = 42_000
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 42_000.0, loaded.Account.InitialCapital)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{not config"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("INITIAL_CAPITAL", "750000")
	t.Setenv("SL_PERCENT", "3.5")
	t.Setenv("MAX_ACTIVE_POSITIONS", "7")
	t.Setenv("MIN_PROFIT_MODE", "enabled")
	t.Setenv("AUTO_EXIT_TIME", "15:00")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, 750_000.0, cfg.Account.InitialCapital)
	assert.Equal(t, 3.5, cfg.Strategy.StopLossPct)
	assert.Equal(t, 7, cfg.Strategy.MaxActivePositions)
	assert.True(t, cfg.Strategy.MinProfitMode)
	assert.Equal(t, "15:00", cfg.Session.AutoExitTime)
}

func TestApplyEnvIgnoresUnparsableValues(t *testing.T) {
	t.Setenv("INITIAL_CAPITAL", "lots")
	t.Setenv("MIN_PROFIT_MODE", "disabled")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, 1_000_000.0, cfg.Account.InitialCapital)
	assert.False(t, cfg.Strategy.MinProfitMode)
}
