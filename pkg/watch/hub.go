package watch

import (
	"sync"
	"time"
)

// Collection names a watched record set.
type Collection string

const (
	CollectionInventory  Collection = "inventory"
	CollectionReceipts   Collection = "receipts"
	CollectionPrincipals Collection = "principals"
)

// Event signals that a collection changed. Consumers re-query and recompute
// their projection on every event; no diff is carried.
type Event struct {
	Collection Collection
	At         time.Time
}

// Subscription delivers change events for one collection until canceled.
type Subscription struct {
	C <-chan Event

	hub        *Hub
	collection Collection
	id         uint64
	once       sync.Once
}

// Hub fans out change notifications to snapshot subscribers. Writers call
// Publish after every mutation; a slow consumer coalesces to the latest event
// rather than blocking the writer.
type Hub struct {
	mu     sync.Mutex
	subs   map[Collection]map[uint64]chan Event
	nextID uint64
}

func NewHub() *Hub {
	return &Hub{subs: make(map[Collection]map[uint64]chan Event)}
}

// Subscribe registers a listener for the collection. The returned cancel func
// tears the subscription down and closes the channel; it is safe to call twice.
func (h *Hub) Subscribe(collection Collection) (*Subscription, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[collection] == nil {
		h.subs[collection] = make(map[uint64]chan Event)
	}
	h.nextID++
	id := h.nextID

	ch := make(chan Event, 1)
	h.subs[collection][id] = ch

	sub := &Subscription{C: ch, hub: h, collection: collection, id: id}
	return sub, sub.cancel
}

func (s *Subscription) cancel() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		if listeners, ok := s.hub.subs[s.collection]; ok {
			if ch, ok := listeners[s.id]; ok {
				delete(listeners, s.id)
				close(ch)
			}
		}
	})
}

// Publish notifies every subscriber of the collection. Never blocks: when a
// subscriber's buffer already holds a pending event the new one is dropped,
// which is equivalent because events only mean "recompute from a fresh query".
func (h *Hub) Publish(collection Collection) {
	event := Event{Collection: collection, At: time.Now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[collection] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports active listeners, used by tests and health output.
func (h *Hub) SubscriberCount(collection Collection) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}
