package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dtsys/intraday/backtest"
	"github.com/dtsys/intraday/calendar"
	"github.com/dtsys/intraday/config"
	"github.com/dtsys/intraday/engine"
	"github.com/dtsys/intraday/feed"
	"github.com/dtsys/intraday/journal"
	"github.com/dtsys/intraday/ledger"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay recorded minute bars through the engine",
	Long: `Backtest replays a CSV minute-bar dataset through the full lifecycle
engine: entries, the exit pipeline, safety dampeners and the capital ledger.

The bar file holds rows of time,symbol,open,high,low,close,volume with
RFC3339 timestamps, sorted by time. Plain .csv, .csv.xz and .zip day
archives are all accepted.

Example:
  intraday backtest --bars data/2025-08-29.csv --config session.yaml`,
	RunE: runBacktest,
}

var (
	btBarsPath   string
	btConfigPath string
	btDBPath     string
	btCloseEnd   bool
	btHolidays   string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to minute-bar CSV (.csv, .csv.xz or .zip) (required)")
	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to config file (defaults used when empty)")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "./backtest.sqlite", "path to SQLite journal DB")
	backtestCmd.Flags().BoolVar(&btCloseEnd, "close-end", true, "close all open positions at end of replay")
	backtestCmd.Flags().StringVar(&btHolidays, "holidays", "", "path to holiday fallback JSON (overrides config)")

	backtestCmd.MarkFlagRequired("bars")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if btConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(btConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if btHolidays != "" {
		cfg.Calendar.FallbackPath = btHolidays
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	src, err := feed.Open(btBarsPath)
	if err != nil {
		return fmt.Errorf("open bars: %w", err)
	}

	j, err := journal.NewSQLite(btDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	led := ledger.New(cfg.Account.InitialCapital, cfg.Account.DailyLeverageCap, cfg.Account.DailyExposureCap)
	eng := engine.New(engine.ParamsFromConfig(cfg), led, engine.Deps{
		Calendar: calendar.New(cfg.Calendar.SourceURL, cfg.Calendar.FallbackPath, nil, log),
		Journal:  j,
		Log:      log,
	})

	runner := &backtest.Runner{
		Engine: eng,
		Feed:   src,
		Options: backtest.Options{
			CloseEnd: btCloseEnd,
		},
	}

	fmt.Printf("Replaying %s\n", btBarsPath)
	fmt.Printf("  Journal: %s\n\n", btDBPath)

	res, err := runner.Run(j)
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	fmt.Printf("Backtest Complete!\n")
	fmt.Printf("  Available: %.2f\n", res.Available)
	fmt.Printf("  PnL: %.2f\n", res.PnL)
	fmt.Printf("  Trades: %d (wins %d, losses %d)\n", res.Trades, res.Wins, res.Losses)
	if !res.Start.IsZero() {
		fmt.Printf("  Range: %s .. %s\n", res.Start.Format("2006-01-02 15:04"), res.End.Format("2006-01-02 15:04"))
	}
	return nil
}
