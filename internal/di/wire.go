// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"

	"github.com/aristath/cropwatch/internal/config"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Load catalog and event bus
// 2. Initialize services (triggers the initial refresh)
// 3. Register jobs
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, *JobInstances, error) {
	return wire(cfg, log, nil)
}

// wire lets tests supply the random source and clock before services start
func wire(cfg *config.Config, log zerolog.Logger, prepare func(*Container)) (*Container, *JobInstances, error) {
	// Step 1: Catalog and events
	container, err := InitializeCatalog(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	if prepare != nil {
		prepare(container)
	}

	// Step 2: Services
	if err := InitializeServices(container, cfg, log); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Step 3: Jobs
	jobs, err := RegisterJobs(container, cfg, log)
	if err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, jobs, nil
}
