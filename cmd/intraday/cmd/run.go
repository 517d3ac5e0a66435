package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dtsys/intraday/calendar"
	"github.com/dtsys/intraday/config"
	"github.com/dtsys/intraday/engine"
	"github.com/dtsys/intraday/feed"
	"github.com/dtsys/intraday/journal"
	"github.com/dtsys/intraday/ledger"
	"github.com/dtsys/intraday/metrics"
	"github.com/dtsys/intraday/news"
	"github.com/dtsys/intraday/notify"
	"github.com/dtsys/intraday/position"
	"github.com/dtsys/intraday/state"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a live trading session against a broker market stream",
	Long: `Run connects to the broker websocket, rolls ticks into minute bars
and drives the lifecycle engine until interrupted or the session's auto-exit
time liquidates everything.

Environment variables (and a .env file, if present) override file
configuration. See 'intraday config init' for the full parameter set.

Example:
  intraday run --config session.yaml --stream wss://feed.example.com/ws --symbols RELIANCE,TCS`,
	RunE: runLive,
}

var (
	runConfigPath  string
	runStreamURL   string
	runSymbols     []string
	runMetricsAddr string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to config file (defaults used when empty)")
	runCmd.Flags().StringVar(&runStreamURL, "stream", "", "broker websocket URL (required)")
	runCmd.Flags().StringSliceVar(&runSymbols, "symbols", nil, "symbols to subscribe (required)")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", ":9090", "listen address for /metrics (empty disables)")

	runCmd.MarkFlagRequired("stream")
	runCmd.MarkFlagRequired("symbols")
}

func runLive(cmd *cobra.Command, args []string) error {
	config.LoadDotEnv()

	cfg := config.Default()
	if runConfigPath != "" {
		var err error
		cfg, err = config.LoadFromFile(runConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg.ApplyEnv()
	}

	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mirror *state.Mirror
	if cfg.Redis.Enabled {
		var err error
		mirror, err = state.New(ctx, state.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer mirror.Close()
	}

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	var mset *metrics.Set
	if runMetricsAddr != "" {
		mset = metrics.New(nil)
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(runMetricsAddr, nil); err != nil {
				log.Error("metrics listener failed", slog.Any("err", err))
			}
		}()
	}

	led := ledger.New(cfg.Account.InitialCapital, cfg.Account.DailyLeverageCap, cfg.Account.DailyExposureCap)
	eng := engine.New(engine.ParamsFromConfig(cfg), led, engine.Deps{
		Sentiment: news.NewAnalyzer(nil, mirror, log),
		Calendar:  calendar.New(cfg.Calendar.SourceURL, cfg.Calendar.FallbackPath, mirror, log),
		Journal:   j,
		Notifier:  notify.NewLogNotifier(log),
		Mirror:    mirror,
		Metrics:   mset,
		Log:       log,
	})

	stream := feed.NewLiveStream(runStreamURL, runSymbols, log)
	errc := make(chan error, 1)
	go func() { errc <- stream.Run(ctx) }()

	log.Info("session started",
		slog.String("stream", runStreamURL),
		slog.Float64("capital", cfg.Account.InitialCapital))

	for {
		select {
		case tick := <-stream.Bars:
			eng.OnMinute(tick.Time, tick.Bars)
		case err := <-errc:
			eng.CloseAll(time.Now(), position.ExitManual)
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("market stream: %w", err)
			}
			log.Info("session stopped")
			return nil
		}
	}
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.NewCSV(cfg.Journal.TradesCSV)
	}
}
