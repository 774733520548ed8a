// Package dashboard turns crop and region selections into complete dashboard
// snapshots, discarding results that a newer selection has superseded.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristath/cropwatch/internal/domain"
	"github.com/aristath/cropwatch/internal/events"
	"github.com/aristath/cropwatch/internal/modules/catalog"
	"github.com/aristath/cropwatch/internal/modules/market"
	"github.com/aristath/cropwatch/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const moduleName = "dashboard"

// ErrSuperseded is returned by a refresh whose result was discarded because a
// newer refresh was issued while it was computing.
var ErrSuperseded = errors.New("refresh superseded by a newer selection")

// ErrClosed is returned by selections made after Close.
var ErrClosed = errors.New("dashboard orchestrator closed")

// Config holds orchestrator dependencies
type Config struct {
	Catalog             *catalog.Catalog
	Random              domain.RandomSource // Defaults to a time-seeded source
	Clock               domain.Clock        // Defaults to the wall clock
	Waiter              Waiter              // Defaults to DelayWaiter{DefaultFetchDelay}
	Events              *events.Manager     // Optional
	MovingAveragePeriod int
	Log                 zerolog.Logger
}

// Selection is the crop and region the renderer is currently showing
type Selection struct {
	Crop   domain.Crop   `json:"crop"`
	Region domain.Region `json:"region"`
}

// Orchestrator regenerates the dashboard on every selection change.
//
// Every refresh takes the next generation number when it starts. Only a result
// whose generation still equals the latest issued one becomes visible; older
// results are dropped with ErrSuperseded. Starting a refresh also cancels the
// context of the one in flight.
type Orchestrator struct {
	catalog  *catalog.Catalog
	rnd      domain.RandomSource
	clock    domain.Clock
	waiter   Waiter
	events   *events.Manager
	maPeriod int
	log      zerolog.Logger

	series *market.PriceSeriesGenerator
	quotes *market.MarketComparisonGenerator

	latest atomic.Uint64

	mu             sync.RWMutex
	current        *domain.DashboardSnapshot
	state          domain.RefreshState
	selection      Selection
	cancelInFlight context.CancelFunc
	closed         bool

	baseCtx    context.Context
	baseCancel context.CancelFunc
	wg         sync.WaitGroup
}

// New creates an orchestrator with the catalog's first crop and region selected
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Catalog == nil {
		return nil, fmt.Errorf("dashboard: catalog is required")
	}
	if cfg.Random == nil {
		cfg.Random = market.NewTimeSeededSource()
	}
	if cfg.Clock == nil {
		cfg.Clock = domain.SystemClock{}
	}
	if cfg.Waiter == nil {
		cfg.Waiter = DelayWaiter{Delay: DefaultFetchDelay}
	}
	if cfg.MovingAveragePeriod <= 0 {
		cfg.MovingAveragePeriod = market.DefaultMovingAveragePeriod
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())

	return &Orchestrator{
		catalog:    cfg.Catalog,
		rnd:        cfg.Random,
		clock:      cfg.Clock,
		waiter:     cfg.Waiter,
		events:     cfg.Events,
		maPeriod:   cfg.MovingAveragePeriod,
		log:        cfg.Log.With().Str("service", moduleName).Logger(),
		series:     market.NewPriceSeriesGenerator(cfg.Random),
		quotes:     market.NewMarketComparisonGenerator(cfg.Random, cfg.Catalog.Markets()),
		state:      domain.StateIdle,
		selection:  Selection{Crop: cfg.Catalog.DefaultCrop(), Region: cfg.Catalog.DefaultRegion()},
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}, nil
}

// Catalog returns the catalog the orchestrator was built with
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}

// Current returns the visible snapshot, if any. Snapshots are never mutated
// after publication.
func (o *Orchestrator) Current() (*domain.DashboardSnapshot, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.current, o.current != nil
}

// State returns idle, computing or ready
func (o *Orchestrator) State() domain.RefreshState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Selection returns the current crop and region
func (o *Orchestrator) Selection() Selection {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.selection
}

// LatestGeneration returns the generation of the most recently issued refresh
func (o *Orchestrator) LatestGeneration() uint64 {
	return o.latest.Load()
}

// OnCropSelected switches the crop and starts one asynchronous refresh.
// It returns the generation assigned to that refresh.
func (o *Orchestrator) OnCropSelected(name string) (uint64, error) {
	crop, err := o.catalog.Crop(name)
	if err != nil {
		return 0, err
	}
	return o.refreshAsync("crop", func(sel *Selection) { sel.Crop = crop })
}

// OnLocationSelected switches the region and starts one asynchronous refresh.
func (o *Orchestrator) OnLocationSelected(name string) (uint64, error) {
	region, err := o.catalog.Region(name)
	if err != nil {
		return 0, err
	}
	return o.refreshAsync("location", func(sel *Selection) { sel.Region = region })
}

// Select switches crop and region together and starts one asynchronous refresh.
// Empty names keep the current value.
func (o *Orchestrator) Select(cropName, regionName string) (uint64, error) {
	var (
		crop   *domain.Crop
		region *domain.Region
	)
	if cropName != "" {
		c, err := o.catalog.Crop(cropName)
		if err != nil {
			return 0, err
		}
		crop = &c
	}
	if regionName != "" {
		r, err := o.catalog.Region(regionName)
		if err != nil {
			return 0, err
		}
		region = &r
	}

	return o.refreshAsync("selection", func(sel *Selection) {
		if crop != nil {
			sel.Crop = *crop
		}
		if region != nil {
			sel.Region = *region
		}
	})
}

// RefreshCurrent synchronously refreshes the current selection
func (o *Orchestrator) RefreshCurrent(ctx context.Context) (*domain.DashboardSnapshot, error) {
	t, err := o.begin(ctx, false, nil)
	if err != nil {
		return nil, err
	}
	defer t.cancel()
	return o.run(t.ctx, t.gen, t.sel.Crop, t.sel.Region)
}

// Refresh synchronously produces a snapshot for crop and region, which become
// the current selection. It returns ErrSuperseded if another refresh was issued
// before this one finished.
func (o *Orchestrator) Refresh(ctx context.Context, crop domain.Crop, region domain.Region) (*domain.DashboardSnapshot, error) {
	t, err := o.begin(ctx, false, func(sel *Selection) {
		sel.Crop = crop
		sel.Region = region
	})
	if err != nil {
		return nil, err
	}
	defer t.cancel()
	return o.run(t.ctx, t.gen, t.sel.Crop, t.sel.Region)
}

// Wait blocks until all asynchronous refreshes have finished
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Close cancels in-flight refreshes and waits for them to exit. Selections
// made after Close fail with ErrClosed.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.baseCancel()
	o.wg.Wait()
}

func (o *Orchestrator) refreshAsync(source string, update func(*Selection)) (uint64, error) {
	t, err := o.begin(o.baseCtx, true, update)
	if err != nil {
		return 0, err
	}

	o.emitSelection(t.sel, source)

	go func() {
		defer o.wg.Done()
		defer t.cancel()

		if _, err := o.run(t.ctx, t.gen, t.sel.Crop, t.sel.Region); err != nil && !errors.Is(err, ErrSuperseded) {
			o.log.Warn().Err(err).Uint64("generation", t.gen).Msg("Refresh did not complete")
		}
	}()

	return t.gen, nil
}

// ticket is one issued refresh
type ticket struct {
	gen    uint64
	sel    Selection
	ctx    context.Context
	cancel context.CancelFunc
}

// begin applies update to the selection and assigns the next generation in the
// same critical section, so the latest generation always refreshes the current
// selection. It then cancels the previous in-flight refresh and enters the
// computing state. Async tickets are counted in wg before the lock is released.
func (o *Orchestrator) begin(ctx context.Context, async bool, update func(*Selection)) (ticket, error) {
	o.mu.Lock()
	if async && o.closed {
		o.mu.Unlock()
		return ticket{}, ErrClosed
	}

	if update != nil {
		update(&o.selection)
	}
	runCtx, cancel := context.WithCancel(ctx)
	t := ticket{
		gen:    o.latest.Add(1),
		sel:    o.selection,
		ctx:    runCtx,
		cancel: cancel,
	}
	if o.cancelInFlight != nil {
		o.cancelInFlight()
	}
	o.cancelInFlight = cancel
	o.state = domain.StateComputing
	if async {
		o.wg.Add(1)
	}
	o.mu.Unlock()

	o.log.Debug().
		Uint64("generation", t.gen).
		Str("crop", t.sel.Crop.Name).
		Str("region", string(t.sel.Region)).
		Msg("Refresh started")

	o.emit(&events.RefreshStartedData{
		Generation: t.gen,
		Crop:       t.sel.Crop.Name,
		Region:     string(t.sel.Region),
	})

	return t, nil
}

func (o *Orchestrator) run(ctx context.Context, gen uint64, crop domain.Crop, region domain.Region) (*domain.DashboardSnapshot, error) {
	if err := o.waiter.Wait(ctx, gen); err != nil {
		if o.latest.Load() != gen {
			o.superseded(gen, crop, region)
			return nil, ErrSuperseded
		}
		o.abandon(gen)
		return nil, fmt.Errorf("refresh cancelled: %w", err)
	}

	snapshot := o.build(gen, crop, region)

	o.mu.Lock()
	if o.latest.Load() != gen {
		o.mu.Unlock()
		o.superseded(gen, crop, region)
		return nil, ErrSuperseded
	}
	o.current = snapshot
	o.state = domain.StateReady
	o.cancelInFlight = nil
	o.mu.Unlock()

	o.log.Info().
		Uint64("generation", gen).
		Str("crop", crop.Name).
		Str("region", string(region)).
		Int("current_price", snapshot.CurrentPrice).
		Float64("price_change_percent", snapshot.PriceChangePercent).
		Str("best_month", snapshot.BestTime.Month).
		Msg("Snapshot ready")

	o.emit(&events.SnapshotReadyData{
		SnapshotID:         snapshot.ID,
		Generation:         gen,
		Crop:               crop.Name,
		Region:             string(region),
		CurrentPrice:       snapshot.CurrentPrice,
		PriceChangePercent: snapshot.PriceChangePercent,
		Trend:              string(snapshot.Trend),
		BestMonth:          snapshot.BestTime.Month,
	})

	return snapshot, nil
}

// abandon restores the pre-refresh state when the latest refresh is cancelled
// by its caller rather than by a newer refresh.
func (o *Orchestrator) abandon(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.latest.Load() != gen {
		return
	}
	o.cancelInFlight = nil
	if o.current != nil {
		o.state = domain.StateReady
	} else {
		o.state = domain.StateIdle
	}
}

func (o *Orchestrator) superseded(gen uint64, crop domain.Crop, region domain.Region) {
	latest := o.latest.Load()
	o.log.Debug().
		Uint64("generation", gen).
		Uint64("latest", latest).
		Msg("Discarding superseded refresh")

	o.emit(&events.RefreshSupersededData{
		Generation: gen,
		Latest:     latest,
		Crop:       crop.Name,
		Region:     string(region),
	})
}

// build runs the generators in order: series, market quotes, best time,
// current price, then the independently sampled period change.
func (o *Orchestrator) build(gen uint64, crop domain.Crop, region domain.Region) *domain.DashboardSnapshot {
	defer utils.OperationTimer("build_snapshot", o.log)()

	now := o.clock.Now()
	ref := domain.MonthIndex(now)

	series := o.series.Generate(crop.BasePrice, ref)
	quotes := o.quotes.Generate(crop.BasePrice)
	best := market.SelectBestTime(series)
	currentPrice := series[ref].Price

	// Not derived from the series; the trend label can disagree with its shape.
	change := math.Round((o.rnd.Float64()-0.45)*8*10) / 10
	trend := TrendFor(change)

	return &domain.DashboardSnapshot{
		ID:                 uuid.NewString(),
		Generation:         gen,
		Crop:               crop,
		Region:             region,
		ReferenceMonth:     ref,
		Series:             series,
		Quotes:             quotes,
		BestTime:           best,
		CurrentPrice:       currentPrice,
		PriceChangePercent: change,
		Trend:              trend,
		Advice:             Advice(trend, best),
		MarketsTracked:     len(quotes),
		Stats:              market.Summarize(series, o.maPeriod),
		GeneratedAt:        now.UTC().Truncate(time.Millisecond),
	}
}

func (o *Orchestrator) emitSelection(sel Selection, source string) {
	o.emit(&events.SelectionChangedData{
		Crop:   sel.Crop.Name,
		Region: string(sel.Region),
		Source: source,
	})
}

func (o *Orchestrator) emit(data events.EventData) {
	if o.events == nil {
		return
	}
	o.events.EmitTyped(moduleName, data)
}
