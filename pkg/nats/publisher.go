package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/shopease/pkg/messaging"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// streamPublisher is the part of jetstream.JetStream the publisher needs.
type streamPublisher interface {
	PublishMsg(ctx context.Context, msg *nats.Msg, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NatsPublisher writes events to JetStream. The event key is the message id,
// so the stream drops a redelivered event inside its duplicate window.
type NatsPublisher struct {
	js streamPublisher
}

func NewNatsPublisher(js streamPublisher) *NatsPublisher {
	return &NatsPublisher{js: js}
}

func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	msg := nats.NewMsg(event.Subject())
	msg.Header.Set("Content-Type", "application/json")
	msg.Data = data
	if _, err := p.js.PublishMsg(ctx, msg, jetstream.WithMsgID(event.Key())); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}
