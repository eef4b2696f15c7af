package commands

// Root command for Cobra CLI
// Registers the monitor subcommand

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "highbuy-monitor",
	Short: "HighBuy Monitor - Telegram alerts for large ZigChain swaps",
	Long: `HighBuy Monitor watches the ZigChain transaction event stream over
websocket and sends a Telegram alert to every subscriber whenever a swap
spends more than a configured amount of the native coin.`,
	Version: "1.0.0",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
