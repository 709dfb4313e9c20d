package event

import (
	"iter"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/zjrosen/relay/internal/log"
)

// Source generates input events by weighted random choice of kind.
// TIMER ids come from a counter owned by the source: strictly increasing and
// never reused until Reset is called.
type Source struct {
	mu        sync.Mutex
	rng       *rand.Rand
	kinds     picker[Kind]
	startID   uint64
	nextTimer uint64
	issued    uint64
}

type sourceConfig struct {
	weights Weights
	rng     *rand.Rand
	startID uint64
}

// SourceOption configures a Source.
type SourceOption func(*sourceConfig)

// WithWeights replaces the default kind weights.
func WithWeights(w Weights) SourceOption {
	return func(c *sourceConfig) {
		c.weights = w
	}
}

// WithSeed makes generation deterministic.
func WithSeed(seed uint64) SourceOption {
	return func(c *sourceConfig) {
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand supplies the random generator. The source serializes access to it.
func WithRand(r *rand.Rand) SourceOption {
	return func(c *sourceConfig) {
		c.rng = r
	}
}

// WithStartTimerID sets the first TIMER id handed out (default 0).
func WithStartTimerID(id uint64) SourceOption {
	return func(c *sourceConfig) {
		c.startID = id
	}
}

// NewSource creates a Source. It fails only when the weights are invalid.
func NewSource(opts ...SourceOption) (*Source, error) {
	cfg := sourceConfig{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.rng == nil {
		seed := uint64(time.Now().UnixNano())
		cfg.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	return &Source{
		rng:       cfg.rng,
		kinds:     newPicker(InputKinds, func(k Kind) int { return cfg.weights[k] }),
		startID:   cfg.startID,
		nextTimer: cfg.startID,
	}, nil
}

// Next returns one event.
func (s *Source) Next() Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.kinds.pick(s.rng) {
	case KindMouse:
		return Mouse(1+s.rng.IntN(3), s.rng.IntN(641), s.rng.IntN(481))
	case KindKeypress:
		return Keypress(s.rng.IntN(7) == 0, s.rng.IntN(5) == 0, rune('a'+s.rng.IntN(26)))
	case KindTimer:
		return s.timerLocked()
	default:
		return Terminate()
	}
}

// NextTimer returns a TIMER event without drawing a kind.
func (s *Source) NextTimer() Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timerLocked()
}

func (s *Source) timerLocked() Event {
	id := s.nextTimer
	s.nextTimer++
	s.issued++
	return Timer(id)
}

// Events returns the lazy, unbounded sequence of Next results. Stop ranging
// to stop generating.
func (s *Source) Events() iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			if !yield(s.Next()) {
				return
			}
		}
	}
}

// Reset restarts TIMER ids from the configured start id.
func (s *Source) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Debug(log.CatEvent, "timer counter reset", "issued", s.issued, "start_id", s.startID)
	s.nextTimer = s.startID
	s.issued = 0
}

// LastTimerID returns the most recently issued TIMER id, and false when none
// has been issued since construction or the last Reset.
func (s *Source) LastTimerID() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.issued == 0 {
		return 0, false
	}
	return s.nextTimer - 1, true
}

// TimersIssued returns how many TIMER events were issued since construction
// or the last Reset.
func (s *Source) TimersIssued() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued
}
