package guard

import (
	"time"

	"github.com/google/uuid"
)

// Event describes a single state transition.
type Event struct {
	// Breaker is the name of the breaker that transitioned.
	Breaker string
	// From is the previous state.
	From State
	// To is the new state.
	To State
	// At is when the transition happened.
	At time.Time
}

// Listener receives transition events.
type Listener func(Event)

// Subscribe registers a listener for transition events and returns its
// subscription id. Every transition is delivered exactly once to each
// registered listener, synchronously; do not call back into the breaker
// from a listener.
func (b *Breaker) Subscribe(fn Listener) string {
	id := uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[id] = fn
	return id
}

// Unsubscribe removes the listener with the given subscription id.
func (b *Breaker) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, id)
}

// notify delivers an event to all listeners. Caller must hold b.mu.
func (b *Breaker) notify(ev Event) {
	for _, fn := range b.listeners {
		fn(ev)
	}
}
