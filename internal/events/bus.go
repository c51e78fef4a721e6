package events

import (
	"sync"

	"github.com/kahvecikaan/catalog-browser/internal/metrics"
)

// subscriberBuffer is the capacity of every subscriber channel
const subscriberBuffer = 100

// Subscriber is a buffered channel that carries events of type T
type Subscriber[T any] chan T

// Filter reports whether a subscriber wants an event. A nil Filter keeps
// everything.
type Filter[T any] func(event T) bool

// EventBus fans events out to its subscribers without blocking the
// publisher. A subscriber that falls behind misses events.
type EventBus[T any] struct {
	mu          sync.RWMutex
	subscribers map[Subscriber[T]]Filter[T]
}

func NewEventBus[T any]() *EventBus[T] {
	return &EventBus[T]{
		subscribers: make(map[Subscriber[T]]Filter[T]),
	}
}

// Subscribe registers a subscriber for every event
func (bus *EventBus[T]) Subscribe() Subscriber[T] {
	return bus.SubscribeWhere(nil)
}

// SubscribeWhere registers a subscriber for the events keep accepts
func (bus *EventBus[T]) SubscribeWhere(keep Filter[T]) Subscriber[T] {
	ch := make(Subscriber[T], subscriberBuffer)
	bus.mu.Lock()
	bus.subscribers[ch] = keep
	bus.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes the channel. Unsubscribing twice is a no-op.
func (bus *EventBus[T]) Unsubscribe(ch Subscriber[T]) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	if _, ok := bus.subscribers[ch]; !ok {
		return
	}
	delete(bus.subscribers, ch)
	close(ch)
}

func (bus *EventBus[T]) Publish(event T) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	for subscriber, keep := range bus.subscribers {
		if keep != nil && !keep(event) {
			continue
		}
		select {
		case subscriber <- event:
		default:
			metrics.EventsDroppedTotal.Inc()
		}
	}
}

// Len returns the number of active subscribers
func (bus *EventBus[T]) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscribers)
}

// ForSession keeps the events produced by one browser session
func ForSession(sessionID string) Filter[any] {
	return func(event any) bool {
		e, ok := event.(Sessioned)
		return ok && e.Session() == sessionID
	}
}
