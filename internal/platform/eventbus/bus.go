package eventbus

import (
	"sync"
	"sync/atomic"
)

// Bus is an in-process typed pub/sub. Publish never blocks: a subscriber whose
// buffer is full misses the message and its Dropped counter grows.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   map[*Subscription[T]]struct{}
	closed bool
}

// Subscription receives published messages on C until it is cancelled or the
// bus is closed, at which point C is closed.
type Subscription[T any] struct {
	C <-chan T

	ch      chan T
	bus     *Bus[T]
	dropped atomic.Int64
	once    sync.Once
}

func New[T any]() *Bus[T] {
	return &Bus[T]{
		subs: make(map[*Subscription[T]]struct{}),
	}
}

// Subscribe registers a subscriber with the given buffer size (minimum 1).
// Subscribing to a closed bus returns an already-closed subscription.
func (b *Bus[T]) Subscribe(buffer int) *Subscription[T] {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan T, buffer)
	sub := &Subscription[T]{C: ch, ch: ch, bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.once.Do(func() { close(ch) })
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Publish delivers msg to every subscriber with room in its buffer and
// returns how many received it.
func (b *Bus[T]) Publish(msg T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for sub := range b.subs {
		select {
		case sub.ch <- msg:
			delivered++
		default:
			sub.dropped.Add(1)
		}
	}
	return delivered
}

// Len reports the number of active subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close cancels every subscription. Later publishes are no-ops.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		sub.closeChannel()
	}
}

// Cancel unsubscribes and closes C. Safe to call more than once.
func (s *Subscription[T]) Cancel() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()
	s.closeChannel()
}

// Dropped reports how many messages were skipped because the buffer was full.
func (s *Subscription[T]) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Subscription[T]) closeChannel() {
	s.once.Do(func() { close(s.ch) })
}
