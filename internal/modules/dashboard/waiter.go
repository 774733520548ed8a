package dashboard

import (
	"context"
	"time"
)

// DefaultFetchDelay is how long a refresh stays in the computing state
const DefaultFetchDelay = 600 * time.Millisecond

// Waiter models the asynchronous fetch before a refresh completes.
// Implementations must return ctx.Err() promptly once ctx is cancelled.
type Waiter interface {
	Wait(ctx context.Context, generation uint64) error
}

// DelayWaiter waits a fixed delay. A non-positive delay completes immediately.
type DelayWaiter struct {
	Delay time.Duration
}

// Wait blocks for the delay or until ctx is done
func (w DelayWaiter) Wait(ctx context.Context, _ uint64) error {
	if w.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(w.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
