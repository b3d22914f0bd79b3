// Package config loads daemon configuration from an optional TOML file.
// Flags parsed in main take precedence over file values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the daemon configuration.
type Config struct {
	Pin   PinConfig   `toml:"pin"`
	MQTT  MQTTConfig  `toml:"mqtt"`
	HTTP  HTTPConfig  `toml:"http"`
	Blink BlinkConfig `toml:"blink"`
}

// PinConfig selects the GPIO output line.
type PinConfig struct {
	Chip string `toml:"chip"`
	Line int    `toml:"line"`
}

// MQTTConfig configures the broker connection.
type MQTTConfig struct {
	Broker   string `toml:"broker"`
	ClientID string `toml:"client_id"`
}

// HTTPConfig configures the status server.
type HTTPConfig struct {
	Addr string `toml:"addr"` // empty disables the server
}

// BlinkConfig configures the scheduler.
type BlinkConfig struct {
	// Capacity is the fixed maximum number of stacked schedules.
	Capacity int `toml:"capacity"`

	// Baseline is the interval of an infinite pattern pushed at startup
	// (e.g. "1s"). Empty disables the baseline.
	Baseline string `toml:"baseline"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Pin:   PinConfig{Chip: "gpiochip0", Line: 17},
		MQTT:  MQTTConfig{Broker: "tcp://192.168.1.200:1883", ClientID: "blinkd"},
		HTTP:  HTTPConfig{Addr: ":8080"},
		Blink: BlinkConfig{Capacity: 4, Baseline: "1s"},
	}
}

// Load reads path over the defaults. Values absent from the file keep
// their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Pin.Chip == "" {
		return fmt.Errorf("pin.chip must not be empty")
	}
	if c.Pin.Line < 0 {
		return fmt.Errorf("pin.line %d must not be negative", c.Pin.Line)
	}
	if c.Blink.Capacity < 1 {
		return fmt.Errorf("blink.capacity %d must be at least 1", c.Blink.Capacity)
	}
	if c.Blink.Baseline != "" {
		d, err := time.ParseDuration(c.Blink.Baseline)
		if err != nil {
			return fmt.Errorf("blink.baseline: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("blink.baseline %q must be positive", c.Blink.Baseline)
		}
	}
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker must not be empty")
	}
	return nil
}

// BaselineInterval returns the parsed baseline interval and whether a
// baseline is configured. Call Validate first.
func (c Config) BaselineInterval() (time.Duration, bool) {
	if c.Blink.Baseline == "" {
		return 0, false
	}
	d, err := time.ParseDuration(c.Blink.Baseline)
	if err != nil {
		return 0, false
	}
	return d, true
}
