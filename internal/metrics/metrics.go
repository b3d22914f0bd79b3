// Package metrics provides Prometheus metrics for the blinkd daemon.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blinkd",
		Name:      "steps_total",
		Help:      "Completed toggle-and-wait cycles",
	})

	togglesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blinkd",
		Name:      "pin_toggles_total",
		Help:      "Successful pin toggles",
	})

	pushedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blinkd",
		Name:      "schedules_pushed_total",
		Help:      "Schedules accepted onto the stack",
	})

	rejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blinkd",
		Name:      "schedules_rejected_total",
		Help:      "Schedules rejected because the stack was full",
	})

	exhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blinkd",
		Name:      "schedules_exhausted_total",
		Help:      "Finite schedules retired after their last toggle",
	})

	resetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blinkd",
		Name:      "resets_total",
		Help:      "Reset commands applied",
	})

	pinErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "blinkd",
		Name:      "pin_errors_total",
		Help:      "Pin operations that returned an error",
	})

	stackDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "blinkd",
		Name:      "stack_depth",
		Help:      "Current schedule stack depth",
	})
)

// StepCompleted records one successful toggle-and-wait cycle.
func StepCompleted() {
	stepsTotal.Inc()
	togglesTotal.Inc()
}

// SchedulePushed records an accepted push.
func SchedulePushed() { pushedTotal.Inc() }

// ScheduleRejected records a push rejected at capacity.
func ScheduleRejected() { rejectedTotal.Inc() }

// ScheduleExhausted records a finite schedule retiring.
func ScheduleExhausted() { exhaustedTotal.Inc() }

// ResetApplied records a reset command.
func ResetApplied() { resetsTotal.Inc() }

// PinError records a failed pin operation.
func PinError() { pinErrorsTotal.Inc() }

// SetStackDepth updates the stack depth gauge.
func SetStackDepth(depth int) { stackDepth.Set(float64(depth)) }
