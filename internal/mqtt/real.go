package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// commandQueueSize bounds how many unapplied remote commands are held
// before new ones are dropped.
const commandQueueSize = 16

// outboxSize bounds how many undelivered events are held across a broker
// outage.
const outboxSize = 64

// Client talks to an actual MQTT broker: it subscribes to the command
// topic and publishes schedule and system events. Events that cannot be
// delivered are queued and replayed on reconnect.
type Client struct {
	client paho.Client
	cmds   chan Command

	mu      sync.Mutex
	pending *outbox
}

// NewClient connects to the given broker and subscribes to the command topic.
func NewClient(broker, clientID string) (*Client, error) {
	c := &Client{
		cmds:    make(chan Command, commandQueueSize),
		pending: newOutbox(outboxSize),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(c.onConnect)

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return c, nil
}

// onConnect runs on every (re)connect: renew the command subscription and
// replay events queued while disconnected.
func (c *Client) onConnect(client paho.Client) {
	token := client.Subscribe(TopicCommand, 1, c.handleCommand)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("mqtt: subscribe to %s timed out", TopicCommand)
	} else if err := token.Error(); err != nil {
		log.Printf("mqtt: subscribe to %s: %v", TopicCommand, err)
	}

	c.mu.Lock()
	queued := c.pending.flush()
	c.mu.Unlock()

	for _, msg := range queued {
		client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	}
	if len(queued) > 0 {
		log.Printf("mqtt: replayed %d queued events after reconnect", len(queued))
	}
}

// handleCommand parses an incoming command and hands it to the owning
// goroutine. Commands are dropped (with a log line) when the queue is full
// rather than blocking the paho callback.
func (c *Client) handleCommand(_ paho.Client, msg paho.Message) {
	cmd, err := ParseCommand(msg.Payload())
	if err != nil {
		log.Printf("mqtt: ignoring bad command: %v", err)
		return
	}

	select {
	case c.cmds <- cmd:
	default:
		log.Printf("mqtt: command queue full, dropping %s", cmd.Action)
	}
}

// Commands returns the channel remote commands arrive on.
func (c *Client) Commands() <-chan Command {
	return c.cmds
}

// PublishSchedule sends a schedule event to the broker.
// QoS 0 (at-most-once), not retained. Undeliverable events are queued.
func (c *Client) PublishSchedule(event ScheduleEvent) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return c.publish(pendingMsg{topic: TopicEvents, payload: payload})
}

// PublishSystem sends a daemon lifecycle event to the broker.
// QoS 1 (at-least-once) — shutdown events in particular should arrive.
func (c *Client) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return c.publish(pendingMsg{
		topic:    TopicSystem,
		payload:  payload,
		qos:      1,
		retained: event.Retained,
	})
}

func (c *Client) publish(msg pendingMsg) error {
	if !c.client.IsConnected() {
		c.queue(msg)
		return fmt.Errorf("not connected, queued for replay")
	}

	token := c.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		c.queue(msg)
		return fmt.Errorf("publish timeout, queued for replay")
	}
	if err := token.Error(); err != nil {
		c.queue(msg)
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (c *Client) queue(msg pendingMsg) {
	c.mu.Lock()
	c.pending.add(msg)
	c.mu.Unlock()
}

// IsConnected reports whether the broker connection is active.
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Close disconnects from the broker.
func (c *Client) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
