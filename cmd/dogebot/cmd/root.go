package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dogebot",
	Short: "A single-symbol crypto trading bot with fee-accurate virtual accounting",
	Long: `Dogebot polls a single market, computes orderbook and candle features,
and trades one position at a time through an edge-triggered state machine.

It provides tools for:
  - Running the live or dry-run trading loop from a config file
  - Durable CSV trade ledgers with balance recovery across restarts
  - An optional SQLite mirror for querying trade history
  - Archiving and bundling old ledger files
  - Prometheus metrics for orders, decisions, and balance`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
