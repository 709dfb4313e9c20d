// Package counter tallies named events. A Counter is a multiplexer
// subscriber: connect it to one or more channels and it accumulates the
// count carried by every event delivered to it.
package counter

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/zjrosen/relay/internal/event"
)

// ErrUnknownName is returned when a named counter receives an event whose
// name it was not built with.
var ErrUnknownName = errors.New("counter: name not registered")

// Counter is either anonymous, keeping one running total, or named, keeping
// one total per name fixed at construction. Totals only grow.
type Counter struct {
	mu     sync.Mutex
	total  int
	totals map[string]int
	names  []string
}

// New creates a counter. With no names it is anonymous. Names must be valid
// identifiers; repeats are collapsed.
func New(names ...string) (*Counter, error) {
	c := &Counter{}
	if len(names) == 0 {
		return c, nil
	}

	c.totals = make(map[string]int, len(names))
	for _, name := range names {
		if err := event.CheckIdentifier(name); err != nil {
			return nil, fmt.Errorf("counter: %w", err)
		}
		if _, dup := c.totals[name]; dup {
			continue
		}
		c.totals[name] = 0
		c.names = append(c.names, name)
	}
	return c, nil
}

// Anonymous reports whether the counter keeps a single total.
func (c *Counter) Anonymous() bool {
	return c.totals == nil
}

// Count adds e's count. A named counter fails with ErrUnknownName for a name
// it does not track and is left unchanged.
func (c *Counter) Count(e event.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.totals == nil {
		c.total += e.Count()
		return nil
	}

	cur, ok := c.totals[e.Name()]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownName, e.Name())
	}
	c.totals[e.Name()] = cur + e.Count()
	return nil
}

// Receive implements mux.Subscriber.
func (c *Counter) Receive(_ context.Context, e event.Event) error {
	return c.Count(e)
}

// Total returns the anonymous total, or the sum of every named total.
func (c *Counter) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.totals == nil {
		return c.total
	}
	sum := 0
	for _, n := range c.totals {
		sum += n
	}
	return sum
}

// Get returns the total for name and whether the counter tracks it.
func (c *Counter) Get(name string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.totals[name]
	return n, ok
}

// Names returns the registered names in construction order.
func (c *Counter) Names() []string {
	return slices.Clone(c.names)
}

// Snapshot returns a copy of the named totals; nil for an anonymous counter.
func (c *Counter) Snapshot() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.totals == nil {
		return nil
	}
	return maps.Clone(c.totals)
}

func (c *Counter) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.totals == nil {
		return fmt.Sprintf("count=%d", c.total)
	}
	parts := make([]string, 0, len(c.names))
	for _, name := range c.names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, c.totals[name]))
	}
	return strings.Join(parts, " ")
}
