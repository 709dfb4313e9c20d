package mux

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zjrosen/relay/internal/event"
)

// Sentinel errors for the multiplexer.
var (
	// ErrSubscriberNotFound is returned by Disconnect for a subscriber that is
	// not registered on the channel.
	ErrSubscriberNotFound = errors.New("subscriber not found")

	// ErrNilSubscriber is returned when Connect is given a nil subscriber.
	ErrNilSubscriber = errors.New("subscriber cannot be nil")

	// ErrIncomparableSubscriber is returned when a subscriber's dynamic type
	// cannot be compared, which would make Disconnect impossible.
	ErrIncomparableSubscriber = errors.New("subscriber type is not comparable")

	// ErrInvalidEvent is returned when Dispatch is given the zero Event.
	ErrInvalidEvent = errors.New("invalid event")
)

// SubscriberError is one subscriber's failure during a fan-out.
type SubscriberError struct {
	// Index is the subscriber's position on the channel at dispatch time.
	Index int

	// Err is what the subscriber returned.
	Err error
}

// Error implements the error interface.
func (e *SubscriberError) Error() string {
	return fmt.Sprintf("subscriber %d: %v", e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *SubscriberError) Unwrap() error {
	return e.Err
}

// DeliveryError reports the subscribers that failed while an event was
// delivered. Every other subscriber still received the event.
type DeliveryError struct {
	Channel string
	Event   event.Event
	Errs    []error
}

// Error implements the error interface.
func (e *DeliveryError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("dispatch %s on %q: %d subscriber(s) failed: %s",
		e.Event, e.Channel, len(e.Errs), strings.Join(msgs, "; "))
}

// Unwrap exposes each subscriber failure to errors.Is and errors.As.
func (e *DeliveryError) Unwrap() []error {
	return e.Errs
}
