package mux

import (
	"context"

	"github.com/zjrosen/relay/internal/event"
)

// Subscriber receives events dispatched on the channels it is connected to.
// Implementations are compared by identity when disconnecting, so use
// pointer types.
type Subscriber interface {
	Receive(ctx context.Context, e event.Event) error
}

// FuncSubscriber adapts a function to Subscriber. Create it with Func and keep
// the pointer to disconnect it later.
type FuncSubscriber struct {
	name string
	fn   func(context.Context, event.Event) error
}

// Func wraps fn as a Subscriber.
func Func(name string, fn func(context.Context, event.Event) error) *FuncSubscriber {
	return &FuncSubscriber{name: name, fn: fn}
}

// Receive calls the wrapped function.
func (f *FuncSubscriber) Receive(ctx context.Context, e event.Event) error {
	if f.fn == nil {
		return nil
	}
	return f.fn(ctx, e)
}

func (f *FuncSubscriber) String() string { return f.name }
