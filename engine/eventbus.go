package engine

import (
	"sync"
	"time"
)

type EventType int

type SubscriberID int

type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any
}

type subscriber struct {
	id SubscriberID
	fn func(Event)
}

// EventBus fans events out synchronously, in subscription order, to
// handlers registered for every type or for specific types.
type EventBus struct {
	mu     sync.RWMutex
	all    []subscriber
	byType map[EventType][]subscriber
	nextID SubscriberID
}

func NewEventBus() *EventBus {
	return &EventBus{byType: make(map[EventType][]subscriber)}
}

// Subscribe registers a handler for all event types.
func (eb *EventBus) Subscribe(fn func(Event)) SubscriberID {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.nextID++
	eb.all = append(eb.all, subscriber{id: eb.nextID, fn: fn})
	return eb.nextID
}

// SubscribeTypes registers a handler for specific event types.
func (eb *EventBus) SubscribeTypes(fn func(Event), types ...EventType) SubscriberID {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.nextID++
	s := subscriber{id: eb.nextID, fn: fn}
	for _, t := range types {
		eb.byType[t] = append(eb.byType[t], s)
	}
	return eb.nextID
}

// Unsubscribe removes a subscriber by ID.
func (eb *EventBus) Unsubscribe(id SubscriberID) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.all = without(eb.all, id)
	for t, subs := range eb.byType {
		eb.byType[t] = without(subs, id)
	}
}

func without(subs []subscriber, id SubscriberID) []subscriber {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// Emit sends an event to all matching subscribers, typed subscribers first.
func (eb *EventBus) Emit(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	eb.mu.RLock()
	subs := make([]subscriber, 0, len(eb.byType[evt.Type])+len(eb.all))
	subs = append(subs, eb.byType[evt.Type]...)
	subs = append(subs, eb.all...)
	eb.mu.RUnlock()

	for _, s := range subs {
		s.fn(evt)
	}
}
