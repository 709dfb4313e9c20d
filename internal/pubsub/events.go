// Package pubsub provides the channel-based broker relay uses to surface
// side-band notices: log entries for the interactive form and multiplexer
// state changes for the driver.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	CreatedEvent      EventType = "created"
	StateChangedEvent EventType = "state_changed"
	DroppedEvent      EventType = "dropped"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T) int
}
