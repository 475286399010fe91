package sse

import (
	"sync"
)

// Event is a duty-status event pushed to a caregiver's subscribers.
type Event struct {
	CaregiverID string
	Event       string
	Data        interface{}
}

// Hub manages SSE subscribers and event broadcasting, keyed by
// caregiver.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber for a caregiver and returns the
// event channel and cleanup function.
func (h *Hub) Subscribe(caregiverID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[caregiverID] == nil {
		h.subscribers[caregiverID] = make(map[chan Event]struct{})
	}
	h.subscribers[caregiverID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[caregiverID], ch)
		close(ch)
		if len(h.subscribers[caregiverID]) == 0 {
			delete(h.subscribers, caregiverID)
		}
	}

	return ch, cleanup
}

// Publish sends an event to all subscribers of a specific caregiver.
// Slow subscribers are skipped rather than blocking the publisher.
func (h *Hub) Publish(caregiverID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[caregiverID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of open channels for a caregiver.
func (h *Hub) SubscriberCount(caregiverID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[caregiverID])
}
