package gpio

// FakePin is a test double that records pin operations in memory.
type FakePin struct {
	// Ops contains every operation performed, in order:
	// "toggle", "set_low", "set_high".
	Ops []string

	// Level is the current simulated output state (true = high).
	Level bool

	// ToggleError, if set, is returned by Toggle before any state change.
	ToggleError error

	// WriteError, if set, is returned by SetLow and SetHigh.
	WriteError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePin creates a FakePin driven low.
func NewFakePin() *FakePin {
	return &FakePin{}
}

// SetLow records the write and drives the simulated level low.
func (f *FakePin) SetLow() error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Level = false
	f.Ops = append(f.Ops, "set_low")
	return nil
}

// SetHigh records the write and drives the simulated level high.
func (f *FakePin) SetHigh() error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Level = true
	f.Ops = append(f.Ops, "set_high")
	return nil
}

// Toggle records the operation and inverts the simulated level.
func (f *FakePin) Toggle() error {
	if f.ToggleError != nil {
		return f.ToggleError
	}
	f.Level = !f.Level
	f.Ops = append(f.Ops, "toggle")
	return nil
}

// Toggles returns the number of Toggle calls recorded so far.
func (f *FakePin) Toggles() int {
	n := 0
	for _, op := range f.Ops {
		if op == "toggle" {
			n++
		}
	}
	return n
}

// Close marks the pin as closed.
func (f *FakePin) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded operations and errors.
func (f *FakePin) Reset() {
	f.Ops = nil
	f.Level = false
	f.ToggleError = nil
	f.WriteError = nil
	f.Closed = false
}
