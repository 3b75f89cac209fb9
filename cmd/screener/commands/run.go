package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// runCmd executes one screening pass and exits
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "立即執行一次掃描",
	Long: `立即執行一次完整掃描:
組股票池 → 抓歷史股價 → 算指標 → 套用策略 → 排名 → 附新聞 → 推送報告

Example:
  go run ./cmd/screener run
  go run ./cmd/screener run --policy trust-accumulation`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	d, err := wire()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := d.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("screening run: %w", err)
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("  策略      : %s\n", d.policy.Name)
	fmt.Printf("  股票池    : %d 檔\n", result.Universe)
	fmt.Printf("  已評估    : %d 檔\n", result.Evaluated)
	fmt.Printf("  符合條件  : %d 檔\n", result.Matches)
	fmt.Printf("  已推送    : %v\n", result.Delivered)
	fmt.Printf("  耗時      : %s\n", result.FinishedAt.Sub(result.StartedAt))
	fmt.Println("═══════════════════════════════════════")
	fmt.Println()
	fmt.Println(result.Report.Text)

	return nil
}
