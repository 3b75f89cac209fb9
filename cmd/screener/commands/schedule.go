package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ymlin/twscreener/internal/scheduler"
	"github.com/ymlin/twscreener/internal/scheduler/jobs"
)

// scheduleCmd runs the scheduler daemon without the status API
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "啟動排程器 (不含狀態 API)",
	Long: `依排程執行掃描,預設平日 14:30 (收盤後)。
排程用 SCHEDULE 覆寫,cron 格式含秒欄位。

Ctrl+C 結束。

Example:
  go run ./cmd/screener schedule
  SCHEDULE="0 0 15 * * MON-FRI" go run ./cmd/screener schedule`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	d, err := wire()
	if err != nil {
		return err
	}

	sched := scheduler.New(d.log)
	screenJob := jobs.NewScreenJob(d.pipeline, d.cfg.Screener.Schedule, d.log)
	if err := sched.AddJob(screenJob); err != nil {
		return fmt.Errorf("register screen job: %w", err)
	}
	sched.Start()

	fmt.Printf("排程器已啟動 (schedule: %s),Ctrl+C 結束\n", d.cfg.Screener.Schedule)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
