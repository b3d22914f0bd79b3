package gpio

import (
	"errors"
	"testing"
)

func TestFakePinToggle(t *testing.T) {
	f := NewFakePin()

	if f.Level {
		t.Error("new pin should start low")
	}

	if err := f.Toggle(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Level {
		t.Error("level should be high after one toggle")
	}

	if err := f.Toggle(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Level {
		t.Error("level should be low after two toggles")
	}

	if f.Toggles() != 2 {
		t.Errorf("expected 2 toggles, got %d", f.Toggles())
	}
}

func TestFakePinSetLowSetHigh(t *testing.T) {
	f := NewFakePin()

	if err := f.SetHigh(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Level {
		t.Error("level should be high after SetHigh")
	}

	if err := f.SetLow(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Level {
		t.Error("level should be low after SetLow")
	}

	want := []string{"set_high", "set_low"}
	if len(f.Ops) != len(want) {
		t.Fatalf("expected %d ops, got %d", len(want), len(f.Ops))
	}
	for i, op := range want {
		if f.Ops[i] != op {
			t.Errorf("op %d: got %s, want %s", i, f.Ops[i], op)
		}
	}
}

func TestFakePinToggleError(t *testing.T) {
	f := NewFakePin()
	f.ToggleError = errors.New("simulated toggle failure")

	err := f.Toggle()
	if err == nil {
		t.Fatal("expected error to be returned")
	}
	if err.Error() != "simulated toggle failure" {
		t.Errorf("unexpected error: %v", err)
	}
	if len(f.Ops) != 0 {
		t.Error("failed toggle should not be recorded")
	}
	if f.Level {
		t.Error("failed toggle should not change level")
	}
}

func TestFakePinWriteError(t *testing.T) {
	f := NewFakePin()
	f.Level = true
	f.WriteError = errors.New("simulated write failure")

	if err := f.SetLow(); err == nil {
		t.Error("expected SetLow to return error")
	}
	if !f.Level {
		t.Error("failed write should not change level")
	}
	if err := f.SetHigh(); err == nil {
		t.Error("expected SetHigh to return error")
	}
}

func TestFakePinClose(t *testing.T) {
	f := NewFakePin()

	if f.Closed {
		t.Error("should not be closed initially")
	}

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakePinReset(t *testing.T) {
	f := NewFakePin()
	f.Toggle()
	f.SetHigh()
	f.Close()

	f.Reset()

	if len(f.Ops) != 0 || f.Level || f.Closed {
		t.Error("Reset should clear ops, level, and closed state")
	}
}
