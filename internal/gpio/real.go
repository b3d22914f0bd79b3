//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealPin drives an output line on actual hardware using the Linux GPIO
// character device. It tracks the last written level so Toggle works on
// lines whose value cannot be read back.
type RealPin struct {
	chip  *gpiocdev.Chip
	line  *gpiocdev.Line
	level int
}

// NewRealPin requests the given line as an output, driven low.
func NewRealPin(chipName string, offset int) (*RealPin, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request output line %d: %w", offset, err)
	}

	return &RealPin{
		chip:  chip,
		line:  line,
		level: 0,
	}, nil
}

// SetLow drives the line low.
func (p *RealPin) SetLow() error {
	if err := p.line.SetValue(0); err != nil {
		return fmt.Errorf("set line low: %w", err)
	}
	p.level = 0
	return nil
}

// SetHigh drives the line high.
func (p *RealPin) SetHigh() error {
	if err := p.line.SetValue(1); err != nil {
		return fmt.Errorf("set line high: %w", err)
	}
	p.level = 1
	return nil
}

// Toggle inverts the last written level.
func (p *RealPin) Toggle() error {
	next := 1 - p.level
	if err := p.line.SetValue(next); err != nil {
		return fmt.Errorf("toggle line: %w", err)
	}
	p.level = next
	return nil
}

// Close drives the line low and releases GPIO resources.
// Reconfigures the line to input (matching Pi boot defaults) before closing
// so the LED is not left lit across a daemon restart.
func (p *RealPin) Close() error {
	var errs []error

	if p.line != nil {
		if err := p.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("set line low: %w", err))
		}
		if err := p.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure line: %w", err))
		}
		if err := p.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line: %w", err))
		}
	}
	if p.chip != nil {
		if err := p.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
