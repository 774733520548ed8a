// Package testing provides scripted collaborators shared by package tests.
package testing

import (
	"context"
	"sync"
	"time"
)

// SequenceSource replays a fixed list of values and then repeats the last one.
// It satisfies domain.RandomSource.
type SequenceSource struct {
	mu     sync.Mutex
	values []float64
	pos    int
}

// NewSequenceSource creates a source that returns values in order
func NewSequenceSource(values ...float64) *SequenceSource {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &SequenceSource{values: values}
}

// Float64 returns the next scripted value
func (s *SequenceSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.pos]
	if s.pos < len(s.values)-1 {
		s.pos++
	}
	return v
}

// Draws returns how many values have been consumed (saturating at the last one)
func (s *SequenceSource) Draws() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

// ConstantSource always returns the same value
type ConstantSource float64

// Float64 returns the constant
func (c ConstantSource) Float64() float64 {
	return float64(c)
}

// FixedClock reports a settable instant. It satisfies domain.Clock.
type FixedClock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFixedClock creates a clock frozen at t
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// MonthClock returns a clock frozen mid-month in the given month of 2026
func MonthClock(month time.Month) *FixedClock {
	return NewFixedClock(time.Date(2026, month, 15, 12, 0, 0, 0, time.UTC))
}

// Now returns the frozen instant
func (c *FixedClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// Set moves the clock
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// GatedWaiter blocks each refresh generation until the test releases it,
// so tests control completion order of overlapping refreshes.
type GatedWaiter struct {
	// IgnoreCancel keeps a generation blocked even after its context is cancelled.
	IgnoreCancel bool

	mu      sync.Mutex
	gates   map[uint64]chan struct{}
	entered chan uint64
}

// NewGatedWaiter creates a waiter with no open gates
func NewGatedWaiter() *GatedWaiter {
	return &GatedWaiter{
		gates:   make(map[uint64]chan struct{}),
		entered: make(chan uint64, 64),
	}
}

func (w *GatedWaiter) gate(generation uint64) chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	g, ok := w.gates[generation]
	if !ok {
		g = make(chan struct{})
		w.gates[generation] = g
	}
	return g
}

// Wait blocks until Release(generation) or, unless IgnoreCancel, ctx is done
func (w *GatedWaiter) Wait(ctx context.Context, generation uint64) error {
	g := w.gate(generation)
	w.entered <- generation

	if w.IgnoreCancel {
		<-g
		return nil
	}

	select {
	case <-g:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release unblocks the given generation
func (w *GatedWaiter) Release(generation uint64) {
	close(w.gate(generation))
}

// AwaitEntered blocks until n generations have started waiting or the timeout passes.
// It returns the generations in the order they entered.
func (w *GatedWaiter) AwaitEntered(n int, timeout time.Duration) []uint64 {
	var got []uint64
	deadline := time.After(timeout)
	for len(got) < n {
		select {
		case g := <-w.entered:
			got = append(got, g)
		case <-deadline:
			return got
		}
	}
	return got
}
