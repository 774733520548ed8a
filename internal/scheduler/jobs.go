package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristath/cropwatch/internal/domain"
	"github.com/aristath/cropwatch/internal/events"
	"github.com/aristath/cropwatch/internal/modules/dashboard"
	"github.com/rs/zerolog"
)

// DefaultJobTimeout bounds a scheduled refresh
const DefaultJobTimeout = 30 * time.Second

// Dashboard is the part of the orchestrator the jobs drive
type Dashboard interface {
	Current() (*domain.DashboardSnapshot, bool)
	RefreshCurrent(ctx context.Context) (*domain.DashboardSnapshot, error)
}

// LiveRefreshJob re-runs the current selection so the dashboard keeps
// producing fresh figures while nobody changes it.
type LiveRefreshJob struct {
	dashboard Dashboard
	events    *events.Manager
	timeout   time.Duration
	log       zerolog.Logger
}

// NewLiveRefreshJob creates a new LiveRefreshJob
func NewLiveRefreshJob(d Dashboard, em *events.Manager) *LiveRefreshJob {
	return &LiveRefreshJob{
		dashboard: d,
		events:    em,
		timeout:   DefaultJobTimeout,
		log:       zerolog.Nop(),
	}
}

// SetLogger sets the logger for the job
func (j *LiveRefreshJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *LiveRefreshJob) Name() string {
	return "live_refresh"
}

// Run executes the live refresh job
func (j *LiveRefreshJob) Run() error {
	return refresh(j.Name(), j.dashboard, j.events, j.timeout, j.log)
}

// MonthRolloverJob refreshes when the calendar month no longer matches the
// visible snapshot, so predicted flags follow the real month.
type MonthRolloverJob struct {
	dashboard Dashboard
	clock     domain.Clock
	events    *events.Manager
	timeout   time.Duration
	log       zerolog.Logger
}

// NewMonthRolloverJob creates a new MonthRolloverJob
func NewMonthRolloverJob(d Dashboard, clock domain.Clock, em *events.Manager) *MonthRolloverJob {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &MonthRolloverJob{
		dashboard: d,
		clock:     clock,
		events:    em,
		timeout:   DefaultJobTimeout,
		log:       zerolog.Nop(),
	}
}

// SetLogger sets the logger for the job
func (j *MonthRolloverJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *MonthRolloverJob) Name() string {
	return "month_rollover"
}

// Run executes the month rollover job
func (j *MonthRolloverJob) Run() error {
	month := domain.MonthIndex(j.clock.Now())

	if snapshot, ok := j.dashboard.Current(); ok && snapshot.ReferenceMonth == month {
		j.log.Debug().Int("month", month).Msg("Snapshot already on current month, skipping")
		return nil
	}

	return refresh(j.Name(), j.dashboard, j.events, j.timeout, j.log)
}

func refresh(job string, d Dashboard, em *events.Manager, timeout time.Duration, log zerolog.Logger) error {
	if em != nil {
		em.EmitTyped("scheduler", &events.ScheduledRefreshData{Job: job})
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snapshot, err := d.RefreshCurrent(ctx)
	if err != nil {
		// A user selection arrived mid-refresh; its result is newer anyway
		if errors.Is(err, dashboard.ErrSuperseded) {
			log.Debug().Str("job", job).Msg("Scheduled refresh superseded")
			return nil
		}
		return fmt.Errorf("%s: failed to refresh dashboard: %w", job, err)
	}

	log.Info().
		Str("job", job).
		Str("crop", snapshot.Crop.Name).
		Str("region", string(snapshot.Region)).
		Uint64("generation", snapshot.Generation).
		Msg("Scheduled refresh completed")

	return nil
}
