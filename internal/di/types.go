/**
 * Package di provides dependency injection type definitions.
 *
 * The Container is the single source of truth for all service instances and is
 * passed to the server for access to services.
 */
package di

import (
	"github.com/aristath/cropwatch/internal/domain"
	"github.com/aristath/cropwatch/internal/events"
	"github.com/aristath/cropwatch/internal/modules/catalog"
	"github.com/aristath/cropwatch/internal/modules/dashboard"
	"github.com/aristath/cropwatch/internal/scheduler"
)

// Container holds all dependencies for the application
type Container struct {
	// Static data
	Catalog *catalog.Catalog

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Collaborators injected into the generators
	Random domain.RandomSource
	Clock  domain.Clock

	// Services
	Orchestrator *dashboard.Orchestrator
	Scheduler    *scheduler.Scheduler
}

// JobInstances holds the registered background jobs so they can be triggered manually
type JobInstances struct {
	LiveRefresh   scheduler.Job
	MonthRollover scheduler.Job
}

// All returns the jobs keyed by name
func (j *JobInstances) All() map[string]scheduler.Job {
	jobs := make(map[string]scheduler.Job)
	for _, job := range []scheduler.Job{j.LiveRefresh, j.MonthRollover} {
		if job != nil {
			jobs[job.Name()] = job
		}
	}
	return jobs
}

// Close stops background work owned by the container
func (c *Container) Close() {
	if c.Orchestrator != nil {
		c.Orchestrator.Close()
	}
}
