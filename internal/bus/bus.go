package bus

import (
	"strings"
	"sync"
	"time"
)

// Bus is an in-process publish/subscribe signal bus with namespace filtering.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]*subscription
	next int
}

type subscription struct {
	namespace string
	match     func(Event) bool
	ch        chan Event
}

// New creates a new signal bus.
func New() *Bus {
	return &Bus{
		subs: make(map[int]*subscription),
	}
}

// Publish sends an event to all subscribers whose namespace is a prefix of event.Kind.
// A nil Bus discards the event.
func (b *Bus) Publish(evt Event) {
	if b == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !strings.HasPrefix(evt.Kind, sub.namespace) {
			continue
		}
		if sub.match != nil && !sub.match(evt) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			// A matching signal is already pending; the receiver re-reads once for both.
		}
	}
}

// Signal publishes a local event of the given kind for key.
func (b *Bus) Signal(kind, key string) {
	b.Publish(Event{Kind: kind, Key: key, Timestamp: time.Now()})
}

// Subscribe returns a channel that receives events matching the given namespace prefix.
// bufSize controls the channel buffer. Returns the channel and an unsubscribe function;
// calling the unsubscribe function more than once is safe.
func (b *Bus) Subscribe(namespace string, bufSize int) (<-chan Event, func()) {
	return b.SubscribeMatch(namespace, bufSize, nil)
}

// SubscribeMatch is Subscribe with an extra filter applied before an event is
// queued, so events the subscriber ignores never take buffer space. A nil
// match accepts every event in namespace.
func (b *Bus) SubscribeMatch(namespace string, bufSize int, match func(Event) bool) (<-chan Event, func()) {
	ch := make(chan Event, bufSize)
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = &subscription{namespace: namespace, match: match, ch: ch}
	b.mu.Unlock()

	return ch, func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
