// Package gpio provides GPIO output pin control with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Pin drives a single digital output line.
type Pin interface {
	// SetLow forces the line to logical low (LED off).
	SetLow() error

	// SetHigh forces the line to logical high (LED on).
	SetHigh() error

	// Toggle inverts the current output state.
	Toggle() error

	// Close releases GPIO resources.
	Close() error
}

// Default pin wiring (BCM numbering).
const (
	DefaultChip = "gpiochip0"
	DefaultLine = 17 // status LED
)
