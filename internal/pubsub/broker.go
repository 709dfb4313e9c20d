package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const defaultBufferSize = 64

// Broker fans published events out to every live subscription channel.
// Publishing never blocks: a subscriber whose buffer is full misses the event
// and the miss is counted.
type Broker[T any] struct {
	mu sync.RWMutex
	// subs maps each channel to the func that detaches its context watcher.
	subs       map[chan Event[T]]func() bool
	closed     bool
	bufferSize int
	missed     atomic.Uint64
}

// NewBroker creates a broker whose subscriptions buffer 64 events.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscriptions buffer size
// events. A negative size is treated as zero.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:       make(map[chan Event[T]]func() bool),
		bufferSize: max(size, 0),
	}
}

// Subscribe returns a channel receiving every event published from now on.
// It is closed when ctx ends or the broker is closed; subscribing to a closed
// broker yields an already closed channel.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], b.bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = context.AfterFunc(ctx, func() { b.unsubscribe(ch) })
	return ch
}

func (b *Broker[T]) unsubscribe(ch chan Event[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish offers the event to every subscriber and returns how many took it.
func (b *Broker[T]) Publish(eventType EventType, payload T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}

	ev := Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}
	delivered := 0
	for ch := range b.subs {
		if b.offer(ch, ev) {
			delivered++
		}
	}
	return delivered
}

func (b *Broker[T]) offer(ch chan Event[T], ev Event[T]) bool {
	select {
	case ch <- ev:
		return true
	default:
		b.missed.Add(1)
		return false
	}
}

// Close closes every subscription. Later calls do nothing.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch, stop := range b.subs {
		stop()
		close(ch)
	}
	b.subs = nil
}

// SubscriberCount returns the number of live subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Missed returns how many deliveries were skipped on full buffers.
func (b *Broker[T]) Missed() uint64 {
	return b.missed.Load()
}
