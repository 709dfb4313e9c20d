// Package chain implements chain-of-responsibility routing.
//
// A Chain is a fixed sequence of links. Each link wraps the rest of the chain
// the same way middleware wraps a handler: a matcher link consumes the values
// it recognizes and forwards everything else, a tap link observes every value
// and always forwards. The first matcher that accepts a value wins; values no
// link accepts fall off the end and are dropped.
package chain

import (
	"context"
	"slices"
)

// Handler processes a value and reports whether it was handled.
type Handler[T any] interface {
	Handle(ctx context.Context, v T) bool
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc[T any] func(ctx context.Context, v T) bool

// Handle calls f.
func (f HandlerFunc[T]) Handle(ctx context.Context, v T) bool {
	return f(ctx, v)
}

// Link is one node of a chain. Wrap receives the handler for the remainder of
// the chain and returns the handler for this node.
type Link[T any] struct {
	Name string
	Wrap func(next Handler[T]) Handler[T]
}

// Chain is an immutable, ordered composition of links. Safe for concurrent
// use when its links are.
type Chain[T any] struct {
	links []Link[T]
	head  Handler[T]
}

// New composes links in order; the first link sees each value first.
func New[T any](links ...Link[T]) *Chain[T] {
	c := &Chain[T]{links: slices.Clone(links)}
	c.head = compose(c.links)
	return c
}

func compose[T any](links []Link[T]) Handler[T] {
	var h Handler[T] = HandlerFunc[T](func(context.Context, T) bool { return false })
	for i := len(links) - 1; i >= 0; i-- {
		if links[i].Wrap == nil {
			continue
		}
		h = links[i].Wrap(h)
	}
	return h
}

// Process runs v through the chain and reports whether a link handled it.
func (c *Chain[T]) Process(ctx context.Context, v T) bool {
	if c == nil || c.head == nil {
		return false
	}
	return c.head.Handle(ctx, v)
}

// Handle makes a Chain usable as the tail of another chain.
func (c *Chain[T]) Handle(ctx context.Context, v T) bool {
	return c.Process(ctx, v)
}

// Prepend returns a new chain with links placed in front of c's links.
// c itself is unchanged.
func (c *Chain[T]) Prepend(links ...Link[T]) *Chain[T] {
	return New(append(slices.Clone(links), c.links...)...)
}

// Append returns a new chain with links placed after c's links.
func (c *Chain[T]) Append(links ...Link[T]) *Chain[T] {
	return New(append(slices.Clone(c.links), links...)...)
}

// Observe returns a new chain headed by a tap that calls fn for every value
// before the existing chain runs.
func (c *Chain[T]) Observe(name string, fn func(context.Context, T)) *Chain[T] {
	return c.Prepend(Tap(name, fn))
}

// Len returns the number of links.
func (c *Chain[T]) Len() int {
	return len(c.links)
}

// Names returns the link names, head first.
func (c *Chain[T]) Names() []string {
	names := make([]string, len(c.links))
	for i, l := range c.links {
		names[i] = l.Name
	}
	return names
}

// Match returns a terminal link: when pred accepts a value, action runs and
// the value is reported handled; otherwise it is forwarded.
func Match[T any](name string, pred func(T) bool, action func(context.Context, T)) Link[T] {
	return Link[T]{
		Name: name,
		Wrap: func(next Handler[T]) Handler[T] {
			return HandlerFunc[T](func(ctx context.Context, v T) bool {
				if pred != nil && pred(v) {
					if action != nil {
						action(ctx, v)
					}
					return true
				}
				return next.Handle(ctx, v)
			})
		},
	}
}

// Tap returns a pass-through link. observe runs for every value, then the
// value is forwarded; the tap reports whatever the rest of the chain reports.
func Tap[T any](name string, observe func(context.Context, T)) Link[T] {
	return Link[T]{
		Name: name,
		Wrap: func(next Handler[T]) Handler[T] {
			return HandlerFunc[T](func(ctx context.Context, v T) bool {
				if observe != nil {
					observe(ctx, v)
				}
				return next.Handle(ctx, v)
			})
		},
	}
}

// Middleware turns a handler decorator into a named link.
func Middleware[T any](name string, wrap func(next Handler[T]) Handler[T]) Link[T] {
	return Link[T]{Name: name, Wrap: wrap}
}
