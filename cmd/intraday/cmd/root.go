package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intraday",
	Short: "An intraday position and risk lifecycle engine",
	Long: `Intraday manages the full lifecycle of leveraged intraday equity
positions: entry evaluation, an ordered exit-rule pipeline, session-level
safety dampeners and a capital ledger.

It provides tools for:
  - Replaying recorded minute bars through the engine (backtest)
  - Running a live session against a broker market stream
  - Reporting on journaled trades (summary, per-symbol, per-strategy)
  - Generating and validating configuration files`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
