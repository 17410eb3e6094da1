package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Broadcaster fans events out to subscribers. Each subscriber owns a bounded
// queue; when a slow subscriber's queue fills, the oldest queued event is
// dropped so publishers and other subscribers never block on it.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[*Subscription]struct{}
	buffer      int
	closed      bool
	onDrop      func()
}

// Subscription is one listener's view of the stream.
type Subscription struct {
	broadcaster *Broadcaster

	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
// onDrop, if non-nil, is invoked once per dropped event.
func NewBroadcaster(buffer int, onDrop func()) *Broadcaster {
	if buffer <= 0 {
		buffer = 1
	}
	return &Broadcaster{
		subscribers: make(map[*Subscription]struct{}),
		buffer:      buffer,
		onDrop:      onDrop,
	}
}

// Subscribe registers a new listener. Returns nil after Close.
func (b *Broadcaster) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	sub := &Subscription{
		broadcaster: b,
		ch:          make(chan Event, b.buffer),
	}
	b.subscribers[sub] = struct{}{}
	return sub
}

// Publish delivers the event to every subscriber without blocking. Missing
// IDs and timestamps are filled in.
func (b *Broadcaster) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	subs := make([]*Subscription, 0, len(b.subscribers))
	for sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		if sub.offer(event) {
			continue
		}
		if b.onDrop != nil {
			b.onDrop()
		}
	}
}

// Close shuts down the broadcaster and all subscriptions. Events already
// queued remain readable until each channel drains.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := make([]*Subscription, 0, len(b.subscribers))
	for sub := range b.subscribers {
		subs = append(subs, sub)
	}
	b.subscribers = make(map[*Subscription]struct{})
	b.mu.Unlock()

	for _, sub := range subs {
		sub.markClosed()
	}
}

// Events returns the receive channel. It is closed when the subscription or
// the broadcaster shuts down.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close detaches the subscription from the broadcaster.
func (s *Subscription) Close() {
	s.broadcaster.mu.Lock()
	delete(s.broadcaster.subscribers, s)
	s.broadcaster.mu.Unlock()
	s.markClosed()
}

// offer enqueues the event, evicting the oldest entry when the queue is
// full. Reports false when an eviction happened.
func (s *Subscription) offer(event Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- event:
		return true
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	select {
	case s.ch <- event:
	default:
	}
	return false
}

func (s *Subscription) markClosed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
}
