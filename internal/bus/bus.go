// Package bus implements the process-wide change-notification registry.
// A single Bus instance is owned by the composition root and injected into
// everything that publishes or subscribes; there is no ambient global set.
package bus

import "sync"

// Observer is invoked after any mutation completes. It carries no payload;
// observers re-fetch whatever they need.
type Observer func()

// Bus fans out "data changed" notifications to registered observers.
// The zero value is not usable; call New.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	observers map[int]Observer
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{observers: make(map[int]Observer)}
}

// Subscribe registers fn and returns its unsubscribe function. Unsubscribing
// is idempotent and safe to call from inside a notification.
func (b *Bus) Subscribe(fn Observer) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.observers[id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.observers, id)
	}
}

// Notify invokes every registered observer. Observers run outside the lock
// over a stable copy of the set, so subscribing or unsubscribing from inside
// an observer does not affect the current round.
func (b *Bus) Notify() {
	b.mu.Lock()
	fns := make([]Observer, 0, len(b.observers))
	for _, fn := range b.observers {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len reports the number of registered observers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.observers)
}
