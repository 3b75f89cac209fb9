package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	policyFlag  string
	verboseFlag bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "screener",
	Short: "台股技術篩選器",
	Long: `台股技術篩選器 CLI

每個交易日掃描候選股票池，套用篩選策略，
把符合條件的股票整理成報告推送到 Discord。

Usage:
  go run ./cmd/screener [command]

Examples:
  go run ./cmd/screener run
  go run ./cmd/screener run --policy pullback-ma20
  go run ./cmd/screener serve
  go run ./cmd/screener policies`,
}

// Execute runs the root command. Called once from main
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyFlag, "policy", "", "screening policy name (overrides POLICY_NAME)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")
}
