package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// rootCmd is the base command for the liquidity CLI
var rootCmd = &cobra.Command{
	Use:   "liqctl",
	Short: "Crypto liquidity predictions from the command line",
	Long: `liqctl scores a market snapshot with the configured liquidity model and
prints the liquidity level, the price trend hint and the market cap.

The prediction is not financial advice; pass --accept to acknowledge this.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "Path to configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
