// Command blinkd drives a GPIO output pin from a stack of blink schedules,
// accepting pattern commands over MQTT and HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/blinkd/internal/blink"
	"github.com/sweeney/blinkd/internal/config"
	"github.com/sweeney/blinkd/internal/gpio"
	"github.com/sweeney/blinkd/internal/metrics"
	"github.com/sweeney/blinkd/internal/mqtt"
	"github.com/sweeney/blinkd/internal/status"
	"github.com/sweeney/blinkd/internal/web"
)

func main() {
	defaults := config.Default()

	configPath := flag.String("config", "", "TOML config file (optional)")
	chip := flag.String("chip", defaults.Pin.Chip, "GPIO chip device name")
	line := flag.Int("line", defaults.Pin.Line, "GPIO line offset for the output pin")
	capacity := flag.Int("capacity", defaults.Blink.Capacity, "Maximum number of stacked schedules")
	broker := flag.String("broker", defaults.MQTT.Broker, "MQTT broker address")
	clientID := flag.String("client-id", defaults.MQTT.ClientID, "MQTT client ID")
	httpAddr := flag.String("http", defaults.HTTP.Addr, "HTTP status address (empty to disable)")
	baseline := flag.String("baseline", defaults.Blink.Baseline, `Baseline infinite pattern interval, e.g. "1s" (empty to disable)`)
	off := flag.Bool("off", false, "Force the pin low and exit")

	flag.Parse()

	cfg := defaults
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		cfg = loaded
	}

	// Flags given explicitly on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "chip":
			cfg.Pin.Chip = *chip
		case "line":
			cfg.Pin.Line = *line
		case "capacity":
			cfg.Blink.Capacity = *capacity
		case "broker":
			cfg.MQTT.Broker = *broker
		case "client-id":
			cfg.MQTT.ClientID = *clientID
		case "http":
			cfg.HTTP.Addr = *httpAddr
		case "baseline":
			cfg.Blink.Baseline = *baseline
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: invalid configuration: %v", err)
	}

	if err := run(cfg, *off); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, off bool) error {
	// Initialize GPIO
	pin, err := gpio.NewRealPin(cfg.Pin.Chip, cfg.Pin.Line)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer pin.Close()

	// Off mode: force the pin low and exit
	if off {
		if err := pin.SetLow(); err != nil {
			return fmt.Errorf("set pin low: %w", err)
		}
		fmt.Printf("pin %s:%d forced low\n", cfg.Pin.Chip, cfg.Pin.Line)
		return nil
	}

	blinker := blink.New(pin, blink.TimerDelay{}, cfg.Blink.Capacity)

	// Initialize MQTT
	client, err := mqtt.NewClient(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer client.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Chip:     cfg.Pin.Chip,
		Line:     cfg.Pin.Line,
		Capacity: cfg.Blink.Capacity,
		Baseline: cfg.Blink.Baseline,
		Broker:   cfg.MQTT.Broker,
		HTTPAddr: cfg.HTTP.Addr,
	})
	tracker.SetMQTTConnected(client.IsConnected())

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := client.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Single command queue feeding the goroutine that owns the Blinker.
	// MQTT commands are forwarded into it; HTTP commands land on it directly.
	cmds := make(chan mqtt.Command, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		for {
			select {
			case cmd, ok := <-client.Commands():
				if !ok {
					return
				}
				select {
				case cmds <- cmd:
				default:
					log.Printf("command queue full, dropping %s", cmd.Action)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, cmds)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	// Baseline is just a push command the daemon issues to itself.
	if d, ok := cfg.BaselineInterval(); ok {
		cmds <- mqtt.Command{Action: mqtt.ActionPush, Schedule: blink.Infinite(d)}
	}

	log.Printf("started: pin=%s:%d capacity=%d broker=%s baseline=%q",
		cfg.Pin.Chip, cfg.Pin.Line, cfg.Blink.Capacity, cfg.MQTT.Broker, cfg.Blink.Baseline)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	lastSig := make(chan os.Signal, 1)
	go func() {
		s := <-sigCh
		log.Printf("received %v, shutting down", s)
		lastSig <- s
		cancel()
	}()

	return runLoop(ctx, blinker, cmds, client, client, tracker, lastSig)
}

// runLoop is the goroutine that owns the Blinker. It applies pending
// commands, keeps the status tracker and metrics current, and steps the
// active schedule until the context is cancelled.
func runLoop(ctx context.Context, blinker *blink.Blinker, cmds <-chan mqtt.Command, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, lastSig <-chan os.Signal) error {
	var counts status.Counts

	for {
		// Apply every pending command before the next step.
	drain:
		for {
			select {
			case cmd := <-cmds:
				applyCommand(blinker, cmd, publisher, &counts)
			default:
				break drain
			}
		}

		syncStatus(blinker, tracker, mqttStatus, counts)

		select {
		case <-ctx.Done():
			return publishShutdown(publisher, mqttStatus, tracker, lastSig)
		default:
		}

		if blinker.Depth() == 0 {
			// Idle: block until a command arrives or we shut down.
			select {
			case <-ctx.Done():
			case cmd := <-cmds:
				applyCommand(blinker, cmd, publisher, &counts)
			}
			continue
		}

		active, _ := blinker.Active()
		depthBefore := blinker.Depth()

		err := blinker.Step(ctx)
		switch {
		case err == nil:
			counts.Steps++
			counts.Toggles++
			metrics.StepCompleted()
			if blinker.Depth() < depthBefore {
				counts.Exhausted++
				metrics.ScheduleExhausted()
				publishScheduleEvent(publisher, mqtt.EventExhausted, &active, blinker.Depth())
				log.Printf("schedule exhausted: %v (depth %d)", active, blinker.Depth())
			}

		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Cancelled mid-wait; the top of the loop handles shutdown.

		default:
			log.Printf("step error: %v", err)
			metrics.PinError()
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
	}
}

// applyCommand mutates the Blinker for one remote command and publishes the
// resulting schedule event.
func applyCommand(blinker *blink.Blinker, cmd mqtt.Command, publisher mqtt.Publisher, counts *status.Counts) {
	switch cmd.Action {
	case mqtt.ActionPush:
		if err := blinker.PushSchedule(cmd.Schedule); err != nil {
			counts.Rejected++
			metrics.ScheduleRejected()
			publishScheduleEvent(publisher, mqtt.EventRejected, &cmd.Schedule, blinker.Depth())
			log.Printf("push rejected: %v (depth %d/%d)", cmd.Schedule, blinker.Depth(), blinker.Capacity())
			return
		}
		counts.Pushed++
		metrics.SchedulePushed()
		publishScheduleEvent(publisher, mqtt.EventPushed, &cmd.Schedule, blinker.Depth())
		log.Printf("schedule pushed: %v (depth %d)", cmd.Schedule, blinker.Depth())

	case mqtt.ActionReset:
		if err := blinker.Reset(); err != nil {
			log.Printf("reset failed: %v", err)
			metrics.PinError()
			return
		}
		counts.Resets++
		metrics.ResetApplied()
		publishScheduleEvent(publisher, mqtt.EventReset, nil, blinker.Depth())
		log.Printf("reset applied")

	default:
		log.Printf("ignoring unknown command action %q", cmd.Action)
	}
}

func publishScheduleEvent(publisher mqtt.Publisher, action string, schedule *blink.Schedule, depth int) {
	event := mqtt.ScheduleEvent{
		Timestamp: time.Now(),
		Action:    action,
		Schedule:  schedule,
		Depth:     depth,
	}
	if err := publisher.PublishSchedule(event); err != nil {
		log.Printf("publish %s error: %v", action, err)
		// Don't crash on publish failure
	}
}

// syncStatus pushes the Blinker's current view into the tracker and metrics.
func syncStatus(blinker *blink.Blinker, tracker *status.Tracker, mqttStatus mqtt.ConnectionStatus, counts status.Counts) {
	tracker.Update(blinker.Depth(), status.ScheduleInfos(blinker.Schedules()), counts)
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
	metrics.SetStackDepth(blinker.Depth())
}

// publishShutdown emits the retained SHUTDOWN event with a final status
// snapshot. The reason is the signal that triggered shutdown, when known.
func publishShutdown(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, lastSig <-chan os.Signal) error {
	signalName := "UNKNOWN"
	select {
	case s := <-lastSig:
		if s == syscall.SIGINT {
			signalName = "SIGINT"
		} else if s == syscall.SIGTERM {
			signalName = "SIGTERM"
		}
	default:
	}

	event := mqtt.SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    signalName,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		snap := tracker.Snapshot()
		event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
	return nil
}
