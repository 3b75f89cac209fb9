package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ymlin/twscreener/internal/api"
	"github.com/ymlin/twscreener/internal/api/handlers"
	"github.com/ymlin/twscreener/internal/scheduler"
	"github.com/ymlin/twscreener/internal/scheduler/jobs"
)

// serveCmd runs the scheduler daemon with the status API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "啟動排程器與狀態 API",
	Long: `啟動常駐服務:
- 依排程執行掃描 (預設平日 14:30,收盤後)
- 狀態 API: GET /health, GET /api/report, GET /api/jobs, POST /api/run

Ctrl+C 結束。

Example:
  go run ./cmd/screener serve`,
	RunE: serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
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

	server := api.New(d.cfg, d.log, api.NewRouter(handlers.NewStatusHandler(sched, screenJob, d.log), d.log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		sched.Stop()
		return err
	case sig := <-quit:
		d.log.WithField("signal", sig.String()).Info("Shutting down")
	}

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
