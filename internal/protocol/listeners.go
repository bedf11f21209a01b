package protocol

import (
	"sync"
)

type listener struct {
	id int
	fn func(Inbound)
}

// Listeners fans inbound messages out to subscribers by kind. Subscribers of one kind are
// called in the order they subscribed.
type Listeners struct {
	mu     sync.RWMutex
	nextID int
	byKind map[Kind][]listener
}

func NewListeners() *Listeners {
	return &Listeners{byKind: make(map[Kind][]listener)}
}

// Subscribe registers fn for every message of kind until the returned func is called.
// Calling it more than once is harmless.
func (l *Listeners) Subscribe(kind Kind, fn func(Inbound)) (unsubscribe func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.byKind[kind] = append(l.byKind[kind], listener{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(kind, id) })
	}
}

func (l *Listeners) remove(kind Kind, id int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	subs := l.byKind[kind]
	for i, s := range subs {
		if s.id != id {
			continue
		}

		// copy so a concurrent Emit keeps iterating its own snapshot
		next := make([]listener, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		l.byKind[kind] = next
		return
	}
}

// Emit delivers msg to the subscribers of its kind. Unknown messages go nowhere.
func (l *Listeners) Emit(msg Inbound) {
	kind := msg.Kind()
	if kind == KindUnknown {
		return
	}

	l.mu.RLock()
	subs := l.byKind[kind]
	l.mu.RUnlock()

	for _, s := range subs {
		s.fn(msg)
	}
}

// Count returns the number of subscribers for kind.
func (l *Listeners) Count(kind Kind) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byKind[kind])
}
