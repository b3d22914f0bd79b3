// Package mqtt provides the broker-facing surface of the daemon: remote
// schedule commands in, schedule and lifecycle events out. Abstractions
// allow testing without a broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/blinkd/internal/blink"
)

// TopicCommand is the MQTT topic the daemon subscribes to for commands.
const TopicCommand = "home/blinkd/command"

// TopicEvents is the MQTT topic for schedule lifecycle events.
const TopicEvents = "home/blinkd/events"

// TopicSystem is the MQTT topic for daemon lifecycle events.
const TopicSystem = "home/blinkd/system"

// Action identifies a remote command.
type Action string

const (
	// ActionPush pushes a blink pattern onto the schedule stack.
	ActionPush Action = "push"
	// ActionReset forces the pin low and clears the stack.
	ActionReset Action = "reset"
)

// Command is a parsed remote command, delivered over a channel into the
// goroutine that owns the Blinker. Schedule is meaningful for ActionPush
// only.
type Command struct {
	Action   Action
	Schedule blink.Schedule
}

// CommandSource delivers remote commands.
type CommandSource interface {
	// Commands returns the channel remote commands arrive on.
	Commands() <-chan Command
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishSchedule sends a schedule lifecycle event to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishSchedule(event ScheduleEvent) error

	// PublishSystem sends a daemon lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Schedule event actions.
const (
	EventPushed    = "PUSHED"
	EventRejected  = "REJECTED"
	EventExhausted = "EXHAUSTED"
	EventReset     = "RESET"
)

// ScheduleEvent describes a change to the schedule stack.
type ScheduleEvent struct {
	Timestamp time.Time
	Action    string          // e.g., "PUSHED", "REJECTED", "EXHAUSTED", "RESET"
	Schedule  *blink.Schedule // pattern involved; nil for RESET
	Depth     int             // stack depth after the action
}

// SystemEvent represents a daemon lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload is the MQTT message payload structure for schedule events.
type Payload struct {
	Blinker BlinkerPayload `json:"blinker"`
}

// BlinkerPayload contains the schedule event details.
type BlinkerPayload struct {
	Timestamp string       `json:"timestamp"`
	Action    string       `json:"action"`
	Pattern   *PatternJSON `json:"pattern,omitempty"`
	Depth     int          `json:"depth"`
}

// PatternJSON is the wire form of a blink pattern. A nil Count means the
// pattern repeats forever.
type PatternJSON struct {
	Count      *uint32 `json:"count,omitempty"`
	IntervalMs int64   `json:"interval_ms"`
}

// PatternFromSchedule converts a schedule to its wire form.
func PatternFromSchedule(s blink.Schedule) *PatternJSON {
	p := &PatternJSON{IntervalMs: s.Interval().Milliseconds()}
	if s.IsFinite() {
		count := s.Remaining()
		p.Count = &count
	}
	return p
}

// FormatPayload creates the JSON payload for a schedule event.
func FormatPayload(event ScheduleEvent) ([]byte, error) {
	payload := Payload{
		Blinker: BlinkerPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Action:    event.Action,
			Depth:     event.Depth,
		},
	}
	if event.Schedule != nil {
		payload.Blinker.Pattern = PatternFromSchedule(*event.Schedule)
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message payload for daemon lifecycle events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// commandJSON is the wire form of a remote command.
type commandJSON struct {
	Action  string       `json:"action"`
	Pattern *PatternJSON `json:"pattern,omitempty"`
}

// ParseCommand decodes a command payload. Push commands require a pattern
// with a non-negative interval; an omitted count means an infinite pattern.
func ParseCommand(data []byte) (Command, error) {
	var raw commandJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Command{}, fmt.Errorf("decode command: %w", err)
	}

	switch Action(raw.Action) {
	case ActionReset:
		return Command{Action: ActionReset}, nil

	case ActionPush:
		if raw.Pattern == nil {
			return Command{}, fmt.Errorf("push command missing pattern")
		}
		if raw.Pattern.IntervalMs < 0 {
			return Command{}, fmt.Errorf("negative interval_ms %d", raw.Pattern.IntervalMs)
		}
		interval := time.Duration(raw.Pattern.IntervalMs) * time.Millisecond
		var schedule blink.Schedule
		if raw.Pattern.Count == nil {
			schedule = blink.Infinite(interval)
		} else {
			schedule = blink.Finite(*raw.Pattern.Count, interval)
		}
		return Command{Action: ActionPush, Schedule: schedule}, nil

	default:
		return Command{}, fmt.Errorf("unknown action %q", raw.Action)
	}
}
