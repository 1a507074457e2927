package services

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Subscription is one live stream client.
type Subscription struct {
	UserID int64
	Role   string
	Events chan DomainEvent
}

// RealtimeHub delivers events to subscribers whose role the event targets.
// Sends never block: a subscriber with a full buffer misses the event.
type RealtimeHub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
}

// NewRealtimeHub creates a hub with the given per-subscriber buffer.
func NewRealtimeHub(buffer int) *RealtimeHub {
	if buffer <= 0 {
		buffer = 16
	}
	return &RealtimeHub{subs: make(map[*Subscription]struct{}), buffer: buffer}
}

// Subscribe registers a subscriber. After Close the returned channel is already closed.
func (h *RealtimeHub) Subscribe(userID int64, role string) *Subscription {
	s := &Subscription{UserID: userID, Role: role, Events: make(chan DomainEvent, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.Events)
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// Unsubscribe removes s and closes its channel.
func (h *RealtimeHub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.Events)
	}
	h.mu.Unlock()
}

// Close ends every open stream and refuses new ones.
func (h *RealtimeHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.Events)
	}
}

// Broadcast implements Broadcaster.
func (h *RealtimeHub) Broadcast(event DomainEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if !event.TargetsRole(s.Role) {
			continue
		}
		select {
		case s.Events <- event:
		default:
			log.Debug().Int64("user_id", s.UserID).Str("event_id", event.ID).Msg("Subscriber buffer full, event skipped")
		}
	}
}

// SubscriberCount returns the number of live subscribers.
func (h *RealtimeHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
