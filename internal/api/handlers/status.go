package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ymlin/twscreener/internal/scheduler"
	"github.com/ymlin/twscreener/internal/scheduler/jobs"
	"github.com/ymlin/twscreener/pkg/logger"
)

// StatusHandler serves the read-only run status endpoints
// ⭐ SSOT: 狀態查詢 API 只在這個 handler
type StatusHandler struct {
	sched     *scheduler.Scheduler
	screenJob *jobs.ScreenJob
	logger    *logger.Logger
}

// NewStatusHandler creates the status handler
func NewStatusHandler(sched *scheduler.Scheduler, screenJob *jobs.ScreenJob, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		sched:     sched,
		screenJob: screenJob,
		logger:    log,
	}
}

// GetReport returns the latest screening run and its report text
// GET /api/report
func (h *StatusHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	latest := h.screenJob.Latest()
	if latest == nil {
		respondError(w, http.StatusNotFound, "no screening run yet")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"started_at":  latest.StartedAt,
		"finished_at": latest.FinishedAt,
		"universe":    latest.Universe,
		"evaluated":   latest.Evaluated,
		"matches":     latest.Matches,
		"delivered":   latest.Delivered,
		"report":      latest.Report.Text,
		"truncated":   latest.Report.Truncated,
	})
}

// GetJobs returns per-job scheduler statistics
// GET /api/jobs
func (h *StatusHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sched.Stats())
}

// TriggerRun starts a screening run outside the schedule
// POST /api/run
func (h *StatusHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if err := h.sched.RunJob(h.screenJob.Name()); err != nil {
		h.logger.WithError(err).Error("Failed to trigger screening run")
		respondError(w, http.StatusInternalServerError, "failed to trigger run")
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
