package blink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/blinkd/internal/gpio"
)

func TestNewBlinker(t *testing.T) {
	pin := gpio.NewFakePin()
	b := New(pin, &FakeDelay{}, 4)

	if b.Depth() != 0 {
		t.Errorf("new blinker should have empty stack, got depth %d", b.Depth())
	}
	if b.Capacity() != 4 {
		t.Errorf("expected capacity 4, got %d", b.Capacity())
	}
	if len(pin.Ops) != 0 {
		t.Error("construction should not touch the pin")
	}
}

func TestNewBlinkerClampsCapacity(t *testing.T) {
	b := New(gpio.NewFakePin(), &FakeDelay{}, 0)
	if b.Capacity() != 1 {
		t.Errorf("expected capacity clamped to 1, got %d", b.Capacity())
	}
}

func TestFiniteScheduleExhausts(t *testing.T) {
	pin := gpio.NewFakePin()
	delay := &FakeDelay{}
	b := New(pin, delay, 2)

	if err := b.PushSchedule(Finite(5, 100*time.Millisecond)); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := b.Step(context.Background()); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}

	if b.Depth() != 0 {
		t.Errorf("expected empty stack after 5 steps, got depth %d", b.Depth())
	}
	if pin.Toggles() != 5 {
		t.Errorf("expected 5 toggles, got %d", pin.Toggles())
	}
	if len(delay.Waits) != 5 {
		t.Fatalf("expected 5 waits, got %d", len(delay.Waits))
	}
	for i, d := range delay.Waits {
		if d != 100*time.Millisecond {
			t.Errorf("wait %d: expected 100ms, got %v", i, d)
		}
	}
}

func TestInfiniteScheduleNeverPops(t *testing.T) {
	pin := gpio.NewFakePin()
	b := New(pin, &FakeDelay{}, 2)

	if err := b.PushSchedule(Infinite(50 * time.Millisecond)); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	for i := 0; i < 10; i++ {
		if err := b.Step(context.Background()); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}

	if b.Depth() != 1 {
		t.Errorf("infinite schedule should remain, got depth %d", b.Depth())
	}
	if pin.Toggles() != 10 {
		t.Errorf("expected 10 toggles, got %d", pin.Toggles())
	}
}

func TestStepEmptyStackIsNoOp(t *testing.T) {
	pin := gpio.NewFakePin()
	delay := &FakeDelay{}
	b := New(pin, delay, 2)

	for i := 0; i < 3; i++ {
		if err := b.Step(context.Background()); err != nil {
			t.Fatalf("step on empty stack should succeed, got %v", err)
		}
	}

	if len(pin.Ops) != 0 {
		t.Errorf("expected zero pin operations, got %d", len(pin.Ops))
	}
	if len(delay.Waits) != 0 {
		t.Errorf("expected zero waits, got %d", len(delay.Waits))
	}
	if b.Depth() != 0 {
		t.Errorf("stack should remain empty, got depth %d", b.Depth())
	}
}

func TestPushBeyondCapacityFails(t *testing.T) {
	b := New(gpio.NewFakePin(), &FakeDelay{}, 2)

	if err := b.PushSchedule(Infinite(time.Second)); err != nil {
		t.Fatalf("push 1 failed: %v", err)
	}
	if err := b.PushSchedule(Finite(3, time.Second)); err != nil {
		t.Fatalf("push 2 failed: %v", err)
	}

	err := b.PushSchedule(Finite(1, time.Second))
	if !errors.Is(err, ErrStackFull) {
		t.Fatalf("expected ErrStackFull, got %v", err)
	}
	if b.Depth() != 2 {
		t.Errorf("failed push should not mutate the stack, got depth %d", b.Depth())
	}

	// The rejected schedule's top is still the one pushed second.
	active, ok := b.Active()
	if !ok {
		t.Fatal("expected an active schedule")
	}
	if !active.IsFinite() || active.Remaining() != 3 {
		t.Errorf("unexpected active schedule: %v", active)
	}
}

func TestResetClearsStackAndForcesLow(t *testing.T) {
	pin := gpio.NewFakePin()
	pin.Level = true
	b := New(pin, &FakeDelay{}, 4)

	b.PushSchedule(Infinite(time.Second))
	b.PushSchedule(Finite(7, 10*time.Millisecond))

	if err := b.Reset(); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	if b.Depth() != 0 {
		t.Errorf("expected empty stack after reset, got depth %d", b.Depth())
	}
	if len(pin.Ops) != 1 || pin.Ops[0] != "set_low" {
		t.Errorf("expected a single set_low, got %v", pin.Ops)
	}
	if pin.Level {
		t.Error("pin should be low after reset")
	}
}

func TestResetPinFailureKeepsStack(t *testing.T) {
	pin := gpio.NewFakePin()
	pin.WriteError = errors.New("bus fault")
	b := New(pin, &FakeDelay{}, 2)

	b.PushSchedule(Infinite(time.Second))

	err := b.Reset()
	if err == nil {
		t.Fatal("expected pin error from reset")
	}
	if err.Error() != "bus fault" {
		t.Errorf("pin error should propagate unchanged, got %v", err)
	}
	if b.Depth() != 1 {
		t.Errorf("failed reset should leave the stack intact, got depth %d", b.Depth())
	}

	// Retry succeeds once the pin recovers.
	pin.WriteError = nil
	if err := b.Reset(); err != nil {
		t.Fatalf("retried reset failed: %v", err)
	}
	if b.Depth() != 0 {
		t.Error("retried reset should clear the stack")
	}
}

func TestStackLayering(t *testing.T) {
	pin := gpio.NewFakePin()
	delay := &FakeDelay{}
	b := New(pin, delay, 2)

	baseline := 500 * time.Millisecond
	transient := 50 * time.Millisecond

	b.PushSchedule(Infinite(baseline))
	b.PushSchedule(Finite(2, transient))

	// The next two steps run the transient schedule.
	for i := 0; i < 2; i++ {
		if err := b.Step(context.Background()); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if delay.Waits[i] != transient {
			t.Errorf("step %d: expected %v wait, got %v", i, transient, delay.Waits[i])
		}
	}

	// Transient exhausted; baseline untouched beneath it.
	if b.Depth() != 1 {
		t.Fatalf("expected baseline to remain, got depth %d", b.Depth())
	}
	active, _ := b.Active()
	if active.IsFinite() {
		t.Error("active schedule should be the infinite baseline")
	}

	// Control reverts to the baseline interval.
	if err := b.Step(context.Background()); err != nil {
		t.Fatalf("baseline step failed: %v", err)
	}
	if delay.Waits[2] != baseline {
		t.Errorf("expected baseline wait %v, got %v", baseline, delay.Waits[2])
	}
	if pin.Toggles() != 3 {
		t.Errorf("expected 3 toggles, got %d", pin.Toggles())
	}
}

// TestFiniteTwoStepByStep walks the documented two-toggle lifecycle:
// push finite(2, 100ms), step twice, stack empties, third step is a no-op.
func TestFiniteTwoStepByStep(t *testing.T) {
	pin := gpio.NewFakePin()
	delay := &FakeDelay{}
	b := New(pin, delay, 2)

	if err := b.PushSchedule(Finite(2, 100*time.Millisecond)); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	// First step: toggle, wait, count 2 -> 1.
	if err := b.Step(context.Background()); err != nil {
		t.Fatalf("step 1 failed: %v", err)
	}
	if pin.Toggles() != 1 {
		t.Errorf("after step 1: expected 1 toggle, got %d", pin.Toggles())
	}
	active, ok := b.Active()
	if !ok || active.Remaining() != 1 {
		t.Errorf("after step 1: expected remaining 1, got %+v ok=%v", active, ok)
	}

	// Second step: toggle, wait, count 1 -> 0, schedule popped.
	if err := b.Step(context.Background()); err != nil {
		t.Fatalf("step 2 failed: %v", err)
	}
	if pin.Toggles() != 2 {
		t.Errorf("after step 2: expected 2 toggles, got %d", pin.Toggles())
	}
	if b.Depth() != 0 {
		t.Errorf("after step 2: expected empty stack, got depth %d", b.Depth())
	}

	// Third step: no-op.
	if err := b.Step(context.Background()); err != nil {
		t.Fatalf("step 3 failed: %v", err)
	}
	if pin.Toggles() != 2 {
		t.Errorf("after step 3: toggle count should stay 2, got %d", pin.Toggles())
	}
	if len(delay.Waits) != 2 {
		t.Errorf("expected 2 waits total, got %d", len(delay.Waits))
	}
}

func TestToggleErrorAbortsStep(t *testing.T) {
	pin := gpio.NewFakePin()
	pin.ToggleError = errors.New("line stuck")
	delay := &FakeDelay{}
	b := New(pin, delay, 2)

	b.PushSchedule(Finite(3, 10*time.Millisecond))

	err := b.Step(context.Background())
	if err == nil {
		t.Fatal("expected toggle error")
	}
	if err.Error() != "line stuck" {
		t.Errorf("pin error should propagate unchanged, got %v", err)
	}
	if len(delay.Waits) != 0 {
		t.Error("failed toggle should abort before the wait")
	}
	active, _ := b.Active()
	if active.Remaining() != 3 {
		t.Errorf("failed step should not decrement, got remaining %d", active.Remaining())
	}
}

func TestCancelledWaitLeavesStackUntouched(t *testing.T) {
	pin := gpio.NewFakePin()
	b := New(pin, &FakeDelay{}, 2)

	b.PushSchedule(Finite(2, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Step(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The toggle happened, but retirement bookkeeping did not run.
	if pin.Toggles() != 1 {
		t.Errorf("expected 1 toggle before cancellation, got %d", pin.Toggles())
	}
	active, ok := b.Active()
	if !ok || active.Remaining() != 2 {
		t.Errorf("cancelled step must leave the schedule as it was, got %+v ok=%v", active, ok)
	}
}

func TestFiniteZeroTogglesOnceThenPops(t *testing.T) {
	pin := gpio.NewFakePin()
	delay := &FakeDelay{}
	b := New(pin, delay, 2)

	// Zero-count schedules are honored: one toggle-and-wait, retired on
	// the same step.
	if err := b.PushSchedule(Finite(0, 25*time.Millisecond)); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	if err := b.Step(context.Background()); err != nil {
		t.Fatalf("step failed: %v", err)
	}

	if pin.Toggles() != 1 {
		t.Errorf("expected 1 toggle, got %d", pin.Toggles())
	}
	if len(delay.Waits) != 1 {
		t.Errorf("expected 1 wait, got %d", len(delay.Waits))
	}
	if b.Depth() != 0 {
		t.Errorf("zero-count schedule should be popped, got depth %d", b.Depth())
	}
}

func TestScheduleAccessors(t *testing.T) {
	inf := Infinite(time.Second)
	if inf.IsFinite() {
		t.Error("Infinite should not be finite")
	}
	if inf.Remaining() != 0 {
		t.Errorf("infinite Remaining: got %d, want 0", inf.Remaining())
	}
	if inf.Interval() != time.Second {
		t.Errorf("infinite Interval: got %v", inf.Interval())
	}
	if inf.String() != "infinite @ 1s" {
		t.Errorf("infinite String: got %q", inf.String())
	}

	fin := Finite(3, 100*time.Millisecond)
	if !fin.IsFinite() {
		t.Error("Finite should be finite")
	}
	if fin.Remaining() != 3 {
		t.Errorf("finite Remaining: got %d, want 3", fin.Remaining())
	}
	if fin.String() != "3 @ 100ms" {
		t.Errorf("finite String: got %q", fin.String())
	}
}

func TestSchedulesReturnsActiveFirstCopy(t *testing.T) {
	b := New(gpio.NewFakePin(), &FakeDelay{}, 3)

	if b.Schedules() != nil {
		t.Error("empty stack should return nil")
	}

	b.PushSchedule(Infinite(time.Second))
	b.PushSchedule(Finite(2, 100*time.Millisecond))

	ss := b.Schedules()
	if len(ss) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(ss))
	}
	if !ss[0].IsFinite() {
		t.Error("index 0 should be the active (finite) schedule")
	}
	if ss[1].IsFinite() {
		t.Error("index 1 should be the baseline (infinite) schedule")
	}

	// Mutating the copy must not affect the blinker.
	ss[0] = Infinite(time.Minute)
	active, _ := b.Active()
	if !active.IsFinite() {
		t.Error("Schedules must return a copy")
	}
}
