// Package pubsub fans values out to channel subscribers.
// Publishing never blocks: a subscriber whose buffer is full misses the
// value and the broker counts the miss.
package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Event is one published value.
type Event[T any] struct {
	Payload   T
	Timestamp time.Time
}

// Broker delivers every published value to all current subscribers.
type Broker[T any] struct {
	mu      sync.RWMutex
	subs    map[chan Event[T]]struct{}
	closed  chan struct{}
	size    int
	dropped atomic.Uint64
}

// NewBroker creates a broker whose subscriptions buffer size events each.
func NewBroker[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:   make(map[chan Event[T]]struct{}),
		closed: make(chan struct{}),
		size:   max(size, 0),
	}
}

func (b *Broker[T]) isClosed() bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}

// Subscribe returns a channel that receives events until ctx is done or
// the broker is closed, whichever comes first. Either way it is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], b.size)
	if b.isClosed() {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(ch)
		case <-b.closed:
		}
	}()
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

// Publish stamps payload and offers it to every subscriber.
func (b *Broker[T]) Publish(payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.isClosed() {
		return
	}

	event := Event[T]{Payload: payload, Timestamp: time.Now()}
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
		}
	}
}

// Dropped returns how many deliveries were skipped on full buffers.
func (b *Broker[T]) Dropped() uint64 {
	return b.dropped.Load()
}

// Close ends every subscription. Later calls do nothing.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.isClosed() {
		return
	}
	close(b.closed)
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *Broker[T]) subscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Listener reads one subscription an event at a time.
type Listener[T any] struct {
	ctx context.Context
	ch  <-chan Event[T]
}

// NewListener subscribes to broker for the lifetime of ctx.
func NewListener[T any](ctx context.Context, broker *Broker[T]) *Listener[T] {
	return &Listener[T]{ctx: ctx, ch: broker.Subscribe(ctx)}
}

// Next waits for the next event. It reports false once the subscription
// is closed or either context is done.
func (l *Listener[T]) Next(ctx context.Context) (Event[T], bool) {
	select {
	case <-ctx.Done():
		return Event[T]{}, false
	case <-l.ctx.Done():
		return Event[T]{}, false
	case event, ok := <-l.ch:
		return event, ok
	}
}
