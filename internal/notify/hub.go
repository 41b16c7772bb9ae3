// Package notify implements the in-process notification channel of the
// crowd-encryption protocol. Job advertisements go to individual users,
// abort notices go to everyone; delivery is best-effort with no
// acknowledgment, and peers that miss a notice catch up through the
// pending-job replay endpoint.
package notify

import (
	"sync"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/models"
)

// defaultQueueSize bounds each subscriber queue. A full queue drops the
// notice rather than blocking the sender: no mutation or fulfillment
// path ever waits on delivery.
const defaultQueueSize = 32

// Hub fans notices out to per-user subscriber queues. One user may hold
// several subscriptions (several devices); every subscription of the
// target user receives user-directed notices, every subscription of any
// user receives broadcasts.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int64]map[*Subscription]struct{}
	logger *logger.Logger
}

// Subscription is one subscriber queue attached to the hub. Consume from
// C; call Close exactly once when done.
type Subscription struct {
	// C delivers notices in arrival order. Closed by [Subscription.Close].
	C chan models.Notice

	hub    *Hub
	userID int64
	once   sync.Once
}

// NewHub constructs an empty hub.
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		subs:   make(map[int64]map[*Subscription]struct{}),
		logger: logger,
	}
}

// Subscribe attaches a new queue for userID.
func (h *Hub) Subscribe(userID int64) *Subscription {
	sub := &Subscription{
		C:      make(chan models.Notice, defaultQueueSize),
		hub:    h,
		userID: userID,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}

	return sub
}

// Close detaches the subscription from the hub and closes its channel.
// Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs[s.userID], s)
		if len(s.hub.subs[s.userID]) == 0 {
			delete(s.hub.subs, s.userID)
		}
		s.hub.mu.Unlock()

		close(s.C)
	})
}

// Subscribers reports how many subscriptions userID currently holds.
func (h *Hub) Subscribers(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// SendToUser delivers the notice to every subscription of userID.
// Fire-and-forget: a user with no subscriptions, or a subscription with
// a full queue, silently misses the notice.
func (h *Hub) SendToUser(userID int64, topic string, payload any) {
	notice := models.Notice{Topic: topic, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[userID] {
		h.deliver(sub, notice)
	}
}

// Broadcast delivers the notice to every subscription of every user.
func (h *Hub) Broadcast(topic string, payload any) {
	notice := models.Notice{Topic: topic, Payload: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, subs := range h.subs {
		for sub := range subs {
			h.deliver(sub, notice)
		}
	}
}

func (h *Hub) deliver(sub *Subscription, notice models.Notice) {
	select {
	case sub.C <- notice:
	default:
		h.logger.Warn().
			Int64("user_id", sub.userID).
			Str("topic", notice.Topic).
			Msg("subscriber queue full, dropping notice")
	}
}
