// Package status provides a thread-safe status tracker for the blinkd
// daemon. It is read by HTTP handlers and snapshotted into MQTT system
// events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/blinkd/internal/blink"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip     string
	Line     int
	Capacity int
	Baseline string // baseline pattern interval ("" = disabled)
	Broker   string
	HTTPAddr string
}

// ScheduleInfo describes one schedule on the stack for display.
type ScheduleInfo struct {
	Infinite   bool
	Remaining  uint32 // meaningful for finite schedules only
	IntervalMs int64
}

// ScheduleInfos converts a Blinker stack (active-first) for display.
func ScheduleInfos(schedules []blink.Schedule) []ScheduleInfo {
	if len(schedules) == 0 {
		return nil
	}
	out := make([]ScheduleInfo, len(schedules))
	for i, s := range schedules {
		out[i] = ScheduleInfo{
			Infinite:   !s.IsFinite(),
			Remaining:  s.Remaining(),
			IntervalMs: s.Interval().Milliseconds(),
		}
	}
	return out
}

// Counts tracks the number of each operation since startup.
type Counts struct {
	Steps     int
	Toggles   int
	Pushed    int
	Rejected  int
	Exhausted int
	Resets    int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Depth         int
	Schedules     []ScheduleInfo // active-first
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the schedule stack view and operation counts.
// Called from the run loop after every step or command.
func (t *Tracker) Update(depth int, schedules []ScheduleInfo, counts Counts) {
	t.mu.Lock()
	t.snap.Depth = depth
	t.snap.Schedules = schedules
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
