package di

import (
	"fmt"

	"github.com/aristath/cropwatch/internal/config"
	"github.com/aristath/cropwatch/internal/domain"
	"github.com/aristath/cropwatch/internal/events"
	"github.com/aristath/cropwatch/internal/modules/catalog"
	"github.com/aristath/cropwatch/internal/modules/dashboard"
	"github.com/aristath/cropwatch/internal/modules/market"
	"github.com/rs/zerolog"
)

// InitializeCatalog loads the crop catalog (built-in when no path is configured)
func InitializeCatalog(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	source := "built-in"
	if cfg.CatalogPath != "" {
		source = cfg.CatalogPath
	}
	log.Info().
		Str("source", source).
		Int("crops", len(cat.Crops())).
		Int("regions", len(cat.Regions())).
		Int("markets", len(cat.Markets())).
		Msg("Catalog loaded")

	bus := events.NewBus(log)

	return &Container{
		Catalog:      cat,
		EventBus:     bus,
		EventManager: events.NewManager(bus, log),
	}, nil
}

// InitializeServices creates the random source, clock and orchestrator
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.Random == nil {
		if cfg.Seed != 0 {
			container.Random = market.NewSeededSource(cfg.Seed)
			log.Info().Uint64("seed", cfg.Seed).Msg("Using fixed random seed")
		} else {
			container.Random = market.NewTimeSeededSource()
		}
	}
	if container.Clock == nil {
		container.Clock = domain.SystemClock{}
	}

	orchestrator, err := dashboard.New(dashboard.Config{
		Catalog:             container.Catalog,
		Random:              container.Random,
		Clock:               container.Clock,
		Waiter:              dashboard.DelayWaiter{Delay: cfg.FetchDelay},
		Events:              container.EventManager,
		MovingAveragePeriod: cfg.MovingAveragePeriod,
		Log:                 log,
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	container.Orchestrator = orchestrator

	// Initial load, as the renderer shows the default selection on start
	if _, err := orchestrator.Select(cfg.DefaultCrop, cfg.DefaultRegion); err != nil {
		orchestrator.Close()
		return fmt.Errorf("invalid default selection: %w", err)
	}

	return nil
}
