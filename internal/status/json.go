package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Depth         int            `json:"depth"`
	Schedules     []ScheduleJSON `json:"schedules"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Counts        CountsJSON     `json:"op_counts"`
	Config        ConfigJSON     `json:"config"`
}

// ScheduleJSON is the JSON representation of one stacked schedule,
// active-first. A nil Count means the pattern repeats forever.
type ScheduleJSON struct {
	Count      *uint32 `json:"count,omitempty"`
	IntervalMs int64   `json:"interval_ms"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of operation counts.
type CountsJSON struct {
	Steps     int `json:"steps"`
	Toggles   int `json:"toggles"`
	Pushed    int `json:"pushed"`
	Rejected  int `json:"rejected"`
	Exhausted int `json:"exhausted"`
	Resets    int `json:"resets"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip     string `json:"chip"`
	Line     int    `json:"line"`
	Capacity int    `json:"capacity"`
	Baseline string `json:"baseline,omitempty"`
	Broker   string `json:"broker"`
	HTTPAddr string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	schedules := make([]ScheduleJSON, 0, len(snap.Schedules))
	for _, s := range snap.Schedules {
		sj := ScheduleJSON{IntervalMs: s.IntervalMs}
		if !s.Infinite {
			count := s.Remaining
			sj.Count = &count
		}
		schedules = append(schedules, sj)
	}

	return StatusInner{
		Depth:         snap.Depth,
		Schedules:     schedules,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Steps:     snap.Counts.Steps,
			Toggles:   snap.Counts.Toggles,
			Pushed:    snap.Counts.Pushed,
			Rejected:  snap.Counts.Rejected,
			Exhausted: snap.Counts.Exhausted,
			Resets:    snap.Counts.Resets,
		},
		Config: ConfigJSON{
			Chip:     snap.Config.Chip,
			Line:     snap.Config.Line,
			Capacity: snap.Config.Capacity,
			Baseline: snap.Config.Baseline,
			Broker:   snap.Config.Broker,
			HTTPAddr: snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
