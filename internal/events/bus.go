package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Topics published by the session core.
const (
	// TopicTokenNearingExpiry carries best-effort "session about to expire"
	// notices with the remaining lifetime in seconds.
	TopicTokenNearingExpiry = "session.token_nearing_expiry"
	// TopicInactivityWarning fires once per arming when the inactivity
	// countdown enters its warning window.
	TopicInactivityWarning = "session.inactivity_warning"
	// TopicLoggedOut fires on every session teardown, explicit or forced.
	// The Reason field distinguishes the trigger.
	TopicLoggedOut = "session.logged_out"
)

// Event is the canonical session notification model.
type Event struct {
	Timestamp        time.Time `json:"timestamp"`
	Reason           string    `json:"reason,omitempty"`
	Role             string    `json:"role,omitempty"`
	RemainingSeconds int       `json:"remaining_seconds,omitempty"`
}

// Bus wraps an in-process Watermill gochannel pub/sub.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger watermill.LoggerAdapter
}

// NewBus creates a bus whose subscriber channels buffer up to buffer events.
func NewBus(buffer int64, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: buffer,
		}, logger),
		logger: logger,
	}
}

// Publish emits an event on the given topic. Failures are logged, never
// surfaced: notification delivery must not disturb the session state machine.
func (b *Bus) Publish(topic string, ev Event) {
	if b == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.logger.Error("marshal session event", err, watermill.LogFields{"topic": topic})
		return
	}
	msg := message.NewMessage(uuid.NewString(), payload)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		b.logger.Error("publish session event", err, watermill.LogFields{"topic": topic})
	}
}

// Subscribe returns a channel of decoded events for one topic. The channel
// closes when ctx is canceled or the bus is closed.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan Event, error) {
	if b == nil {
		return nil, context.Canceled
	}
	msgs, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		for msg := range msgs {
			var ev Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				b.logger.Error("decode session event", err, watermill.LogFields{"message_id": msg.UUID})
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close shuts the pub/sub down and closes all subscriber channels.
func (b *Bus) Close() error {
	if b == nil {
		return nil
	}
	return b.pubsub.Close()
}
