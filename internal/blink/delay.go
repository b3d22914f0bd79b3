package blink

import (
	"context"
	"time"
)

// Delay suspends the caller for a duration. It is the Blinker's wait
// capability: Step performs exactly one Wait per call, between the pin
// toggle and the retirement bookkeeping.
type Delay interface {
	// Wait blocks until d has elapsed or ctx is cancelled, returning
	// ctx's error in the latter case.
	Wait(ctx context.Context, d time.Duration) error
}

// TimerDelay waits on the wall clock.
type TimerDelay struct{}

// Wait blocks for d, or until ctx is cancelled.
func (TimerDelay) Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
