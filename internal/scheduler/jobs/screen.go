package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/ymlin/twscreener/internal/pipeline"
	"github.com/ymlin/twscreener/pkg/logger"
)

// ScreenJob runs the screening pipeline on the configured schedule and
// retains the latest result for the status API
// ⭐ SSOT: 排程掃描只透過這個 Job
type ScreenJob struct {
	pipeline *pipeline.Pipeline
	schedule string
	logger   *logger.Logger

	mu     sync.RWMutex
	latest *pipeline.Result
}

// NewScreenJob creates the screening job
func NewScreenJob(p *pipeline.Pipeline, schedule string, log *logger.Logger) *ScreenJob {
	return &ScreenJob{
		pipeline: p,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScreenJob) Name() string { return "screen" }

// Schedule returns the configured cron expression
func (j *ScreenJob) Schedule() string { return j.schedule }

// Run executes one screening pass
func (j *ScreenJob) Run(ctx context.Context) error {
	result, err := j.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("screening run: %w", err)
	}

	j.mu.Lock()
	j.latest = result
	j.mu.Unlock()
	return nil
}

// Latest returns the most recent run result, nil before the first run
func (j *ScreenJob) Latest() *pipeline.Result {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.latest
}
