package di

import (
	"fmt"

	"github.com/aristath/cropwatch/internal/config"
	"github.com/aristath/cropwatch/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the background jobs and registers those with a schedule
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	sched := scheduler.New(log)
	container.Scheduler = sched

	liveRefresh := scheduler.NewLiveRefreshJob(container.Orchestrator, container.EventManager)
	liveRefresh.SetLogger(log.With().Str("job", "live_refresh").Logger())

	monthRollover := scheduler.NewMonthRolloverJob(container.Orchestrator, container.Clock, container.EventManager)
	monthRollover.SetLogger(log.With().Str("job", "month_rollover").Logger())

	jobs := &JobInstances{
		LiveRefresh:   liveRefresh,
		MonthRollover: monthRollover,
	}

	schedules := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.LiveSchedule, liveRefresh},
		{cfg.RolloverSchedule, monthRollover},
	}
	for _, s := range schedules {
		if s.schedule == "" {
			log.Info().Str("job", s.job.Name()).Msg("Job has no schedule, manual trigger only")
			continue
		}
		if err := sched.AddJob(s.schedule, s.job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", s.job.Name(), err)
		}
	}

	return jobs, nil
}
