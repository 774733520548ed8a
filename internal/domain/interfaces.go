package domain

import "time"

// RandomSource yields uniform values in [0, 1).
// Every generator draws from one of these so tests can script exact values.
type RandomSource interface {
	Float64() float64
}

// Clock supplies the real-world time used to pick the reference month.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time {
	return time.Now()
}

// MonthIndex returns the 0-based calendar month of t (0 = January).
func MonthIndex(t time.Time) int {
	return int(t.Month()) - 1
}
