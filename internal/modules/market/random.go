// Package market synthesizes monthly price series, per-market quotes and the
// best-time-to-sell recommendation from a crop's base price.
package market

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// SeededSource is a goroutine-safe PCG generator. Equal seeds give equal streams.
type SeededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource creates a deterministic source for the given seed
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// NewTimeSeededSource seeds from the wall clock; used when no seed is configured
func NewTimeSeededSource() *SeededSource {
	return NewSeededSource(uint64(time.Now().UnixNano()))
}

// Float64 returns a uniform value in [0, 1)
func (s *SeededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// roundHalfUp rounds to the nearest integer with .5 going up, matching the
// rounding the dashboard has always shown.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// RoundTo rounds x to the given number of decimals, .5 going up.
func RoundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Floor(x*p+0.5) / p
}
