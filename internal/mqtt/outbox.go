package mqtt

import "log"

// pendingMsg is a serialized MQTT message held for replay after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO holding messages that could not be
// delivered while the broker connection was down. When full, the oldest
// message is dropped in favor of the newest.
// Not safe for concurrent use — caller must synchronize.
type outbox struct {
	msgs    []pendingMsg
	max     int
	dropped int // messages discarded since the last flush
}

func newOutbox(max int) *outbox {
	return &outbox{max: max}
}

// add queues msg, evicting the oldest entry when at capacity.
func (o *outbox) add(msg pendingMsg) {
	if len(o.msgs) == o.max {
		if o.dropped == 0 {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", o.max)
		}
		o.dropped++
		copy(o.msgs, o.msgs[1:])
		o.msgs[len(o.msgs)-1] = msg
		return
	}
	o.msgs = append(o.msgs, msg)
}

// flush returns all queued messages in arrival order and empties the outbox.
func (o *outbox) flush() []pendingMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	out := o.msgs
	o.msgs = nil
	o.dropped = 0
	return out
}

func (o *outbox) size() int {
	return len(o.msgs)
}
