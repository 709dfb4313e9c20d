package event

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// Vehicle channel names used by the traffic demo.
const (
	Cars   = "cars"
	Vans   = "vans"
	Trucks = "trucks"
)

// DefaultTrafficWeights returns the default vehicle mix.
func DefaultTrafficWeights() map[string]int {
	return map[string]int{Cars: 11, Vans: 3, Trucks: 1}
}

// DefaultMaxCount is the largest count a TrafficSource puts on one event.
const DefaultMaxCount = 3

// TrafficSource generates named vehicle events with a random count between
// one and its max count.
type TrafficSource struct {
	mu       sync.Mutex
	rng      *rand.Rand
	names    picker[string]
	maxCount int
}

type trafficConfig struct {
	weights  map[string]int
	rng      *rand.Rand
	maxCount int
}

// TrafficOption configures a TrafficSource.
type TrafficOption func(*trafficConfig)

// WithTrafficWeights replaces the default vehicle weights.
func WithTrafficWeights(w map[string]int) TrafficOption {
	return func(c *trafficConfig) {
		c.weights = w
	}
}

// WithTrafficSeed makes generation deterministic.
func WithTrafficSeed(seed uint64) TrafficOption {
	return func(c *trafficConfig) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithTrafficRand supplies the random generator.
func WithTrafficRand(r *rand.Rand) TrafficOption {
	return func(c *trafficConfig) {
		c.rng = r
	}
}

// WithMaxCount sets the largest per-event count.
func WithMaxCount(n int) TrafficOption {
	return func(c *trafficConfig) {
		c.maxCount = n
	}
}

// NewTrafficSource creates a TrafficSource. Names must be identifiers and at
// least one weight must be positive.
func NewTrafficSource(opts ...TrafficOption) (*TrafficSource, error) {
	cfg := trafficConfig{weights: DefaultTrafficWeights(), maxCount: DefaultMaxCount}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.maxCount < 1 {
		return nil, fmt.Errorf("%w: max count %d", ErrInvalidCount, cfg.maxCount)
	}
	total := 0
	for name, w := range cfg.weights {
		if err := CheckIdentifier(name); err != nil {
			return nil, err
		}
		if w < 0 {
			return nil, fmt.Errorf("%w: negative weight %d for %s", ErrInvalidWeights, w, name)
		}
		total += w
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no positive weight", ErrInvalidWeights)
	}
	if cfg.rng == nil {
		seed := uint64(time.Now().UnixNano())
		cfg.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	// Sorted so a seeded source is reproducible regardless of map order.
	names := make([]string, 0, len(cfg.weights))
	for name := range cfg.weights {
		names = append(names, name)
	}
	slices.Sort(names)

	return &TrafficSource{
		rng:      cfg.rng,
		names:    newPicker(names, func(n string) int { return cfg.weights[n] }),
		maxCount: cfg.maxCount,
	}, nil
}

// Next returns one named event.
func (s *TrafficSource) Next() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := s.names.pick(s.rng)
	return Event{kind: KindNamed, name: name, count: 1 + s.rng.IntN(s.maxCount)}
}

// Events yields n events, or an unbounded sequence when n is negative.
func (s *TrafficSource) Events(n int) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for i := 0; n < 0 || i < n; i++ {
			if !yield(s.Next()) {
				return
			}
		}
	}
}
