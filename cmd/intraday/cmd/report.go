package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtsys/intraday/analytics"
	"github.com/dtsys/intraday/journal"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report on journaled trades",
	Long: `Report queries the SQLite trade journal and prints performance
aggregates.

Subcommands:
  summary  - Overall wins/losses/PnL across all journaled trades
  symbols  - PnL grouped by symbol
  trade    - Full detail of one trade by ID
  day      - Trades closed on a specific day

Examples:
  intraday report summary
  intraday report day 2025-08-29`,
}

var reportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Overall performance summary",
	Args:  cobra.NoArgs,
	RunE:  runReportSummary,
}

var reportSymbolsCmd = &cobra.Command{
	Use:   "symbols",
	Short: "PnL grouped by symbol",
	Args:  cobra.NoArgs,
	RunE:  runReportSymbols,
}

var reportTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Full detail of one trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportTrade,
}

var reportDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "Trades closed on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportDay,
}

var reportDBPath string

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportSummaryCmd)
	reportCmd.AddCommand(reportSymbolsCmd)
	reportCmd.AddCommand(reportTradeCmd)
	reportCmd.AddCommand(reportDayCmd)

	reportCmd.PersistentFlags().StringVarP(&reportDBPath, "db", "d", "./backtest.sqlite", "path to SQLite journal DB")
}

func openReportJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(reportDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runReportSummary(cmd *cobra.Command, args []string) error {
	j, err := openReportJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTrades()
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	s := analytics.Summarize(recs)
	fmt.Printf("Trades: %d (wins %d, losses %d, win rate %.1f%%)\n",
		s.TotalTrades, s.Wins, s.Losses, s.WinRate)
	fmt.Printf("Total PnL: %.2f (avg %.2f, best %.2f, worst %.2f)\n",
		s.TotalPnL, s.AvgPnL, s.BestPnL, s.WorstPnL)

	fmt.Println("\nExits by reason:")
	for _, b := range analytics.ExitsByReason(recs) {
		fmt.Printf("  %-16s %4d trades  %12.2f\n", b.Key, b.Trades, b.PnL)
	}
	return nil
}

func runReportSymbols(cmd *cobra.Command, args []string) error {
	j, err := openReportJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTrades()
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	for _, b := range analytics.PnLBySymbol(recs) {
		fmt.Printf("%-12s %4d trades  %12.2f\n", b.Key, b.Trades, b.PnL)
	}
	return nil
}

func runReportTrade(cmd *cobra.Command, args []string) error {
	j, err := openReportJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	fmt.Printf("Trade %s\n", rec.TradeID)
	fmt.Printf("  %s %s x%.0f @ %.2f -> %.2f (leverage %.1f)\n",
		rec.Direction, rec.Symbol, rec.Quantity, rec.EntryPrice, rec.ExitPrice, rec.Leverage)
	fmt.Printf("  PnL: %.2f  Reason: %s  Held: %s\n", rec.PnL, rec.Reason, rec.Duration)
	fmt.Printf("  Score: %.2f  Sentiment: %.2f  Safety: %s\n", rec.AIScore, rec.Sentiment, rec.SafetyFlag)
	return nil
}

func runReportDay(cmd *cobra.Command, args []string) error {
	j, err := openReportJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	day, err := time.ParseInLocation("2006-01-02", args[0], time.Local)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListTradesClosedBetween(day, day.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	for _, r := range recs {
		fmt.Printf("%s  %-6s %-10s %12.2f  %s\n",
			r.ExitTime.Format("15:04"), r.Direction, r.Symbol, r.PnL, r.Reason)
	}
	s := analytics.Summarize(recs)
	fmt.Printf("\n%d trades, PnL %.2f\n", s.TotalTrades, s.TotalPnL)
	return nil
}
