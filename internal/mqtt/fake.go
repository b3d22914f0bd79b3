package mqtt

// FakeClient records published events and lets tests inject commands.
type FakeClient struct {
	// ScheduleEvents contains all schedule events that were published.
	ScheduleEvents []ScheduleEvent

	// Payloads contains the JSON payloads for schedule events.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishError, if set, will be returned by PublishSchedule.
	PublishError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	cmds chan Command
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient() *FakeClient {
	return &FakeClient{cmds: make(chan Command, commandQueueSize)}
}

// Commands returns the channel test-injected commands arrive on.
func (f *FakeClient) Commands() <-chan Command {
	return f.cmds
}

// Inject queues a command as if it had arrived from the broker.
func (f *FakeClient) Inject(cmd Command) {
	f.cmds <- cmd
}

// PublishSchedule records the schedule event.
func (f *FakeClient) PublishSchedule(event ScheduleEvent) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.ScheduleEvents = append(f.ScheduleEvents, event)

	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// PublishSystem records the system event.
func (f *FakeClient) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakeClient) Reset() {
	f.ScheduleEvents = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
