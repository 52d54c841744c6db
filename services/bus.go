package services

import (
	"sync"

	"github.com/rs/zerolog"
)

// Event kinds emitted by the store after successful mutations.
const (
	EventCustomerSaved   = "customer_saved"
	EventCustomerDeleted = "customer_deleted"
	EventDataCleared     = "data_cleared"
)

// Event is one store notification.
type Event struct {
	Kind    string
	Payload interface{}
}

// Listener receives store events.
type Listener func(Event)

// Bus broadcasts store mutations to listeners. Delivery is synchronous and
// in registration order; a panicking listener is logged and never blocks
// the remaining listeners or the mutating caller.
type Bus struct {
	log zerolog.Logger

	mu        sync.Mutex
	nextID    int
	listeners []busEntry
}

type busEntry struct {
	id int
	fn Listener
}

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe registers a listener and returns its unsubscribe func.
func (b *Bus) Subscribe(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.listeners = append(b.listeners, busEntry{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, e := range b.listeners {
			if e.id == id {
				b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
				return
			}
		}
	}
}

// Notify delivers the event to every listener in registration order.
func (b *Bus) Notify(kind string, payload interface{}) {
	b.mu.Lock()
	entries := make([]busEntry, len(b.listeners))
	copy(entries, b.listeners)
	b.mu.Unlock()

	for _, e := range entries {
		b.deliver(e, Event{Kind: kind, Payload: payload})
	}
}

func (b *Bus) deliver(e busEntry, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("event", ev.Kind).
				Int("listener", e.id).
				Interface("panic", r).
				Msg("listener failed")
		}
	}()
	e.fn(ev)
}
