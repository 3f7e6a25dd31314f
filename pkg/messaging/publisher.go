package messaging

import (
	"context"
)

// OrdersHandedOffSubject is the subject (topic key) of checkout handoff events.
const OrdersHandedOffSubject = "orders.handedoff"

type Event interface {
	Subject() string
	Key() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
