package mux

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/relay/internal/event"
	"github.com/zjrosen/relay/internal/log"
	"github.com/zjrosen/relay/internal/pubsub"
	"github.com/zjrosen/relay/internal/tracing"
)

// Notice is published on the notice broker when the state changes or an
// event is dropped.
type Notice struct {
	State   State
	Channel string
	Event   event.Event
}

// Stats is a point-in-time view of a Multiplexer.
type Stats struct {
	State State

	// Dispatched counts every Dispatch call with a valid event.
	Dispatched uint64
	// Dropped counts dispatches that arrived while DORMANT.
	Dropped uint64
	// Deliveries counts individual subscriber invocations.
	Deliveries uint64
	// Failures counts subscriber invocations that returned an error.
	Failures uint64

	// Subscribers maps each channel to its subscriber count.
	Subscribers map[string]int
}

// Option configures a Multiplexer.
type Option func(*Multiplexer)

// WithState sets the initial state (default Active).
func WithState(s State) Option {
	return func(m *Multiplexer) {
		m.state = s
	}
}

// WithNotices publishes state changes and drops to broker.
func WithNotices(broker *pubsub.Broker[Notice]) Option {
	return func(m *Multiplexer) {
		m.notices = broker
	}
}

// WithTracer records a span per dispatch. A nil tracer records nothing.
func WithTracer(tracer trace.Tracer) Option {
	return func(m *Multiplexer) {
		m.tracer = tracer
	}
}

// Multiplexer routes named events to the subscribers of their channel.
type Multiplexer struct {
	// dispatchMu serializes fan-outs; mu guards the table and state.
	dispatchMu sync.Mutex
	mu         sync.RWMutex
	channels   map[string][]Subscriber
	state      State
	notices    *pubsub.Broker[Notice]
	tracer     trace.Tracer

	dispatched atomic.Uint64
	dropped    atomic.Uint64
	deliveries atomic.Uint64
	failures   atomic.Uint64
}

// New creates an ACTIVE multiplexer with no channels.
func New(opts ...Option) *Multiplexer {
	m := &Multiplexer{
		channels: make(map[string][]Subscriber),
		state:    Active,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect appends sub to channel. Duplicates are kept and each receives the
// event. While DORMANT nothing changes and nil is returned.
func (m *Multiplexer) Connect(channel string, sub Subscriber) error {
	if err := event.CheckIdentifier(channel); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if sub == nil {
		return ErrNilSubscriber
	}
	if !reflect.TypeOf(sub).Comparable() {
		return fmt.Errorf("connect %q: %w: %T", channel, ErrIncomparableSubscriber, sub)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active {
		log.Debug(log.CatMux, "connect ignored while dormant", "channel", channel)
		return nil
	}
	m.channels[channel] = append(m.channels[channel], sub)
	log.Debug(log.CatMux, "connected", "channel", channel, "subscribers", len(m.channels[channel]))
	return nil
}

// Disconnect removes the first occurrence of sub from channel, or clears the
// channel when sub is nil. Removing a subscriber that is not connected fails
// with ErrSubscriberNotFound. While DORMANT nothing changes and nil is
// returned.
func (m *Multiplexer) Disconnect(channel string, sub Subscriber) error {
	if err := event.CheckIdentifier(channel); err != nil {
		return fmt.Errorf("disconnect: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active {
		log.Debug(log.CatMux, "disconnect ignored while dormant", "channel", channel)
		return nil
	}

	if sub == nil {
		delete(m.channels, channel)
		log.Debug(log.CatMux, "channel cleared", "channel", channel)
		return nil
	}

	subs := m.channels[channel]
	i := slices.IndexFunc(subs, func(s Subscriber) bool { return sameSubscriber(s, sub) })
	if i < 0 {
		return fmt.Errorf("disconnect %q: %w", channel, ErrSubscriberNotFound)
	}

	subs = slices.Delete(slices.Clone(subs), i, i+1)
	if len(subs) == 0 {
		delete(m.channels, channel)
	} else {
		m.channels[channel] = subs
	}
	log.Debug(log.CatMux, "disconnected", "channel", channel, "subscribers", len(subs))
	return nil
}

// sameSubscriber compares by identity without panicking on incomparable
// dynamic types.
func sameSubscriber(a, b Subscriber) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Dispatch delivers e to every subscriber of e.Channel() when ACTIVE, in
// registration order, and drops it when DORMANT. The state is read once per
// call. A channel with no subscribers is not an error. Subscriber failures do
// not stop the fan-out; they are returned together as a *DeliveryError.
func (m *Multiplexer) Dispatch(ctx context.Context, e event.Event) error {
	if e.IsZero() {
		return ErrInvalidEvent
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.dispatchMu.Lock()
	defer m.dispatchMu.Unlock()

	channel := e.Channel()

	m.mu.RLock()
	state := m.state
	subs := slices.Clone(m.channels[channel])
	m.mu.RUnlock()

	m.dispatched.Add(1)

	var span trace.Span
	if m.tracer != nil {
		ctx, span = m.tracer.Start(ctx, tracing.SpanPrefixMux+channel,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String(tracing.AttrEventChannel, channel),
				attribute.String(tracing.AttrEventText, e.String()),
				attribute.String(tracing.AttrMuxState, string(state)),
				attribute.Int(tracing.AttrSubscribers, len(subs)),
			),
		)
		defer span.End()
	}

	if state != Active {
		m.dropped.Add(1)
		m.notify(pubsub.DroppedEvent, Notice{State: state, Channel: channel, Event: e})
		if span != nil {
			span.AddEvent(tracing.EventDropped)
		}
		return nil
	}

	var errs []error
	for i, sub := range subs {
		m.deliveries.Add(1)
		if err := sub.Receive(ctx, e); err != nil {
			m.failures.Add(1)
			errs = append(errs, &SubscriberError{Index: i, Err: err})
		}
	}
	if len(errs) > 0 {
		derr := &DeliveryError{Channel: channel, Event: e, Errs: errs}
		log.Warn(log.CatMux, "delivery failed", "channel", channel, "event", e.String(), "failures", len(errs))
		if span != nil {
			span.RecordError(derr)
			span.SetStatus(codes.Error, derr.Error())
		}
		return derr
	}
	return nil
}

// SetState changes the dispatch state. It takes effect for the next dispatch;
// a fan-out already running completes under the state it sampled.
func (m *Multiplexer) SetState(s State) {
	m.mu.Lock()
	prev := m.state
	m.state = s
	m.mu.Unlock()

	if prev != s {
		log.Info(log.CatMux, "state changed", "from", prev, "to", s)
		m.notify(pubsub.StateChangedEvent, Notice{State: s})
	}
}

// Activate sets the state to Active.
func (m *Multiplexer) Activate() { m.SetState(Active) }

// Suspend sets the state to Dormant.
func (m *Multiplexer) Suspend() { m.SetState(Dormant) }

// State returns the current dispatch state.
func (m *Multiplexer) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Subscribers returns a copy of channel's subscribers in registration order.
func (m *Multiplexer) Subscribers(channel string) []Subscriber {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.channels[channel])
}

// Channels returns the channels that have at least one subscriber, sorted.
func (m *Multiplexer) Channels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.channels))
}

// Stats returns counters and subscriber counts.
func (m *Multiplexer) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subs := make(map[string]int, len(m.channels))
	for ch, list := range m.channels {
		subs[ch] = len(list)
	}
	return Stats{
		State:       m.state,
		Dispatched:  m.dispatched.Load(),
		Dropped:     m.dropped.Load(),
		Deliveries:  m.deliveries.Load(),
		Failures:    m.failures.Load(),
		Subscribers: subs,
	}
}

func (m *Multiplexer) notify(t pubsub.EventType, n Notice) {
	if m.notices != nil {
		m.notices.Publish(t, n)
	}
}
