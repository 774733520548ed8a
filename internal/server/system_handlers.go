package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/aristath/cropwatch/internal/di"
	"github.com/aristath/cropwatch/internal/domain"
	"github.com/aristath/cropwatch/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// DashboardStatus is the part of the orchestrator the status endpoint reports on
type DashboardStatus interface {
	State() domain.RefreshState
	LatestGeneration() uint64
	Current() (*domain.DashboardSnapshot, bool)
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status           string              `json:"status"`
	UptimeSeconds    float64             `json:"uptime_seconds"`
	CPUPercent       float64             `json:"cpu_percent"`
	MemoryPercent    float64             `json:"memory_percent"`
	Goroutines       int                 `json:"goroutines"`
	DashboardState   domain.RefreshState `json:"dashboard_state"`
	LatestGeneration uint64              `json:"latest_generation"`
	SnapshotID       string              `json:"snapshot_id,omitempty"`
	SnapshotAge      float64             `json:"snapshot_age_seconds,omitempty"`
	ScheduledJobs    int                 `json:"scheduled_jobs"`
}

// JobsStatusResponse is the body of GET /api/system/jobs
type JobsStatusResponse struct {
	Jobs []string `json:"jobs"`
}

// SystemHandlers serves host and dashboard status plus manual job triggers
type SystemHandlers struct {
	dashboard DashboardStatus
	scheduler *scheduler.Scheduler
	jobs      map[string]scheduler.Job
	startedAt time.Time
	log       zerolog.Logger

	// Overridable in tests
	systemStats func() (float64, float64)
	now         func() time.Time
}

// NewSystemHandlers creates system handlers. jobs may be nil.
func NewSystemHandlers(
	dashboard DashboardStatus,
	sched *scheduler.Scheduler,
	jobs *di.JobInstances,
	log zerolog.Logger,
) *SystemHandlers {
	h := &SystemHandlers{
		dashboard: dashboard,
		scheduler: sched,
		jobs:      map[string]scheduler.Job{},
		startedAt: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
		now:       time.Now,
	}
	if jobs != nil {
		h.jobs = jobs.All()
	}
	h.systemStats = h.getSystemStats
	return h
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.systemStats()
	now := h.now()

	response := SystemStatusResponse{
		Status:           "healthy",
		UptimeSeconds:    now.Sub(h.startedAt).Seconds(),
		CPUPercent:       cpuPercent,
		MemoryPercent:    memPercent,
		Goroutines:       runtime.NumGoroutine(),
		DashboardState:   h.dashboard.State(),
		LatestGeneration: h.dashboard.LatestGeneration(),
	}
	if h.scheduler != nil {
		response.ScheduledJobs = h.scheduler.JobCount()
	}
	if snapshot, ok := h.dashboard.Current(); ok {
		response.SnapshotID = snapshot.ID
		response.SnapshotAge = now.Sub(snapshot.GeneratedAt).Seconds()
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	sort.Strings(names)

	h.writeJSON(w, http.StatusOK, JobsStatusResponse{Jobs: names})
}

// HandleTriggerJob handles POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	job, ok := h.jobs[name]
	if !ok {
		http.Error(w, "Unknown job", http.StatusNotFound)
		return
	}

	run := job.Run
	if h.scheduler != nil {
		run = func() error { return h.scheduler.RunNow(job) }
	}

	if err := run(); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		http.Error(w, "Job failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": name + " completed",
	})
}

// getSystemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// Short sampling window keeps the endpoint responsive
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
