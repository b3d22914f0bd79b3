// Package blink implements a stacked toggle scheduler for a single output pin.
// A Blinker layers timed blink patterns on a fixed-capacity stack: only the
// most recently pushed schedule drives the pin, and finite schedules pop
// themselves once exhausted, so a transient pattern (e.g. "blink fast 3
// times") automatically yields back to the baseline beneath it.
//
// The package has no hardware dependencies. The pin and the wait are
// capabilities supplied by the caller.
package blink

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Pin is the digital output the Blinker drives. Implementations report
// hardware failures through the returned error; the Blinker propagates
// them unchanged.
type Pin interface {
	// SetLow forces the output to the logical low (off) state.
	SetLow() error

	// Toggle inverts the current output state.
	Toggle() error
}

// ErrStackFull is returned by PushSchedule when the schedule stack is at
// capacity. The stack is left unchanged and the caller keeps its schedule.
var ErrStackFull = errors.New("blink: schedule stack full")

// Schedule describes one toggle pattern: toggle the pin every interval,
// either forever or a fixed number of times.
type Schedule struct {
	infinite bool
	count    uint32
	interval time.Duration
}

// Infinite returns a schedule that toggles forever at the given interval.
func Infinite(interval time.Duration) Schedule {
	return Schedule{infinite: true, interval: interval}
}

// Finite returns a schedule that toggles count times at the given interval,
// then retires itself. Finite(0, d) still performs a single toggle-and-wait
// before retiring: retirement is always checked after the toggle.
func Finite(count uint32, interval time.Duration) Schedule {
	return Schedule{count: count, interval: interval}
}

// IsFinite reports whether the schedule exhausts after a fixed number of
// toggles.
func (s Schedule) IsFinite() bool { return !s.infinite }

// Remaining returns the number of toggles left on a finite schedule.
// It is zero for infinite schedules.
func (s Schedule) Remaining() uint32 {
	if s.infinite {
		return 0
	}
	return s.count
}

// Interval returns the pause between toggles.
func (s Schedule) Interval() time.Duration { return s.interval }

func (s Schedule) String() string {
	if s.infinite {
		return fmt.Sprintf("infinite @ %v", s.interval)
	}
	return fmt.Sprintf("%d @ %v", s.count, s.interval)
}

// Blinker owns one output pin and a fixed-capacity stack of schedules.
//
// A Blinker is not safe for concurrent use — caller must synchronize.
// The intended discipline is a single goroutine owning the instance and
// other goroutines handing it commands over a channel.
type Blinker struct {
	pin      Pin
	delay    Delay
	stack    []Schedule
	capacity int
}

// New creates a Blinker bound to pin with an empty schedule stack.
// The pin's electrical state is not touched. Capacities below one are
// clamped to one.
func New(pin Pin, delay Delay, capacity int) *Blinker {
	if capacity < 1 {
		capacity = 1
	}
	return &Blinker{
		pin:      pin,
		delay:    delay,
		stack:    make([]Schedule, 0, capacity),
		capacity: capacity,
	}
}

// PushSchedule places s on top of the stack, making it the active pattern
// on the next Step. Returns ErrStackFull without mutating the stack when
// the stack already holds its capacity of schedules.
func (b *Blinker) PushSchedule(s Schedule) error {
	if len(b.stack) == b.capacity {
		return ErrStackFull
	}
	b.stack = append(b.stack, s)
	return nil
}

// Reset forces the pin low and clears the schedule stack. If the pin write
// fails the stack is left exactly as it was, so Reset can be retried.
// This is the recovery primitive: callers wanting a deterministic "off"
// state call Reset rather than stepping schedules to exhaustion.
func (b *Blinker) Reset() error {
	if err := b.pin.SetLow(); err != nil {
		return err
	}
	b.stack = b.stack[:0]
	return nil
}

// Step advances the active schedule by one toggle-and-wait cycle.
//
// On an empty stack Step returns nil without touching the pin. Otherwise it
// toggles the pin, waits the active schedule's interval (the sole suspension
// point — cancelling ctx during the wait returns ctx's error with the stack
// untouched, so a cancelled step can be cleanly abandoned), and then applies
// retirement: a finite schedule is decremented and popped on the step that
// consumes its last toggle. Infinite schedules are never popped by Step.
//
// Pin errors abort the step before the wait and retirement run.
func (b *Blinker) Step(ctx context.Context) error {
	if len(b.stack) == 0 {
		return nil
	}
	active := b.stack[len(b.stack)-1]
	if err := b.pin.Toggle(); err != nil {
		return err
	}
	if err := b.delay.Wait(ctx, active.interval); err != nil {
		return err
	}
	b.retire()
	return nil
}

// retire decrements the finite schedule on top of the stack, popping it when
// this step consumed its last toggle. A count already at zero (should not
// occur under normal sequencing) pops immediately.
func (b *Blinker) retire() {
	if len(b.stack) == 0 {
		return
	}
	top := &b.stack[len(b.stack)-1]
	if top.infinite {
		return
	}
	if top.count <= 1 {
		b.stack = b.stack[:len(b.stack)-1]
		return
	}
	top.count--
}

// Depth returns the number of schedules currently on the stack.
func (b *Blinker) Depth() int { return len(b.stack) }

// Capacity returns the fixed maximum number of schedules.
func (b *Blinker) Capacity() int { return b.capacity }

// Active returns the schedule currently driving the pin, if any.
func (b *Blinker) Active() (Schedule, bool) {
	if len(b.stack) == 0 {
		return Schedule{}, false
	}
	return b.stack[len(b.stack)-1], true
}

// Schedules returns a copy of the stack ordered active-first (top of stack
// at index 0).
func (b *Blinker) Schedules() []Schedule {
	if len(b.stack) == 0 {
		return nil
	}
	out := make([]Schedule, len(b.stack))
	for i, s := range b.stack {
		out[len(b.stack)-1-i] = s
	}
	return out
}
