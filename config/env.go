package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv reads a .env file into the process environment if one exists.
// Missing files are fine; ApplyEnv simply sees nothing to override.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplyEnv overrides file-based settings with environment variables, using
// the same variable names the original deployment scripts export.
func (c *Config) ApplyEnv() {
	envFloat("INITIAL_CAPITAL", &c.Account.InitialCapital)
	envFloat("SL_PERCENT", &c.Strategy.StopLossPct)
	envFloat("TARGET_PERCENT", &c.Strategy.TargetPct)
	envFloat("TSL_PERCENT", &c.Strategy.BaseTSLPct)
	envFloat("CAPITAL_PER_TRADE_PCT", &c.Strategy.CapitalPerTradePct)
	envInt("MAX_ACTIVE_POSITIONS", &c.Strategy.MaxActivePositions)
	envInt("COOLDOWN_PERIOD_SECONDS", &c.Strategy.CooldownSeconds)
	envBool("MIN_PROFIT_MODE", &c.Strategy.MinProfitMode)
	envString("AUTO_EXIT_TIME", &c.Session.AutoExitTime)
	envString("MARKET_OPEN_TIME", &c.Session.MarketOpen)
	envString("MARKET_CLOSE_TIME", &c.Session.MarketClose)
	envString("REDIS_ADDR", &c.Redis.Addr)
	envString("REDIS_PASSWORD", &c.Redis.Password)
	envInt("REDIS_DB", &c.Redis.DB)
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envFloat(key string, dst *float64) {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func envInt(key string, dst *int) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
			return
		}
		// The original system used "enabled"/"disabled" here.
		*dst = v == "enabled"
	}
}
