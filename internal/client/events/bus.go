// Package events provides an in-process notification bus for client-wide
// signals such as authentication failures.
package events

import (
	"sync"
)

// Имена событий и причины
const (
	AuthFailure = "auth:failure"

	ReasonTokenRefreshFailed = "token_refresh_failed"
)

// Event is a broadcast notification.
type Event struct {
	Name   string
	Reason string
}

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	handler Handler
	id      uint64
}

// Bus delivers events to subscribers synchronously, in subscription order.
// The zero value is ready to use.
type Bus struct {
	subs   map[string][]subscription
	nextID uint64
	mu     sync.RWMutex
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler for events named name.
// The returned function removes the subscription; calling it twice is safe.
func (b *Bus) Subscribe(name string, handler Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[string][]subscription)
	}
	b.nextID++
	id := b.nextID
	b.subs[name] = append(b.subs[name], subscription{id: id, handler: handler})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(name, id) })
	}
}

func (b *Bus) unsubscribe(name string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[name]
	for i, s := range subs {
		if s.id == id {
			b.subs[name] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish delivers ev to all current subscribers of ev.Name.
// Handlers run outside the lock so they may subscribe or unsubscribe.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[ev.Name]))
	copy(subs, b.subs[ev.Name])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(ev)
	}
}
