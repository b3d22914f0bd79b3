package blink

import (
	"context"
	"time"
)

// FakeDelay is a test double that records requested waits without sleeping.
type FakeDelay struct {
	// Waits contains the duration of every Wait call, in order.
	Waits []time.Duration

	// WaitError, if set, is returned by Wait before the call is recorded.
	WaitError error
}

// Wait records d and returns immediately. A cancelled context is honored
// the same way TimerDelay's select would honor it mid-wait.
func (f *FakeDelay) Wait(ctx context.Context, d time.Duration) error {
	if f.WaitError != nil {
		return f.WaitError
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Waits = append(f.Waits, d)
	return nil
}

// Reset clears recorded waits.
func (f *FakeDelay) Reset() {
	f.Waits = nil
	f.WaitError = nil
}
