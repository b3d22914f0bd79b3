//go:build !linux

package gpio

import "errors"

// RealPin is not available on non-Linux platforms.
type RealPin struct{}

// NewRealPin returns an error on non-Linux platforms.
func NewRealPin(chipName string, offset int) (*RealPin, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetLow is not implemented on non-Linux platforms.
func (p *RealPin) SetLow() error {
	return errors.New("gpio: not supported")
}

// SetHigh is not implemented on non-Linux platforms.
func (p *RealPin) SetHigh() error {
	return errors.New("gpio: not supported")
}

// Toggle is not implemented on non-Linux platforms.
func (p *RealPin) Toggle() error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *RealPin) Close() error {
	return nil
}
