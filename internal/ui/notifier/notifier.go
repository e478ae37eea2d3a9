// Package notifier broadcasts change events to live-update listeners.
package notifier

import "sync"

// Kinds of change events.
const (
	KindModelSaved   = "model-saved"
	KindModelDeleted = "model-deleted"
	KindSettings     = "settings"
	KindReloaded     = "reloaded"
)

// Event describes what changed. ModelID is empty for store-wide changes.
type Event struct {
	Kind    string
	ModelID string
}

// ChangesModels reports whether the event can change the model set.
// Settings saves do not.
func (e Event) ChangesModels() bool {
	return e.Kind != KindSettings
}

// Subscription receives events until it is closed.
type Subscription struct {
	C <-chan Event

	ch chan Event
	n  *Notifier
}

// Close unsubscribes and closes the channel.
func (s *Subscription) Close() {
	s.n.mu.Lock()
	defer s.n.mu.Unlock()
	if _, ok := s.n.listeners[s.ch]; ok {
		delete(s.n.listeners, s.ch)
		close(s.ch)
	}
}

// Notifier fans events out to every subscriber. Listeners re-query the
// store on each event, so only the latest pending event matters.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[chan Event]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a listener. The caller must Close the subscription.
func (n *Notifier) Subscribe() *Subscription {
	ch := make(chan Event, 1)
	n.mu.Lock()
	n.listeners[ch] = struct{}{}
	n.mu.Unlock()
	return &Subscription{C: ch, ch: ch, n: n}
}

// Len returns the number of active subscribers.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.listeners)
}

// Broadcast sends ev to all listeners without blocking. A listener whose
// buffer is full already has a refresh pending and is skipped.
func (n *Notifier) Broadcast(ev Event) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for ch := range n.listeners {
		select {
		case ch <- ev:
		default:
		}
	}
}
