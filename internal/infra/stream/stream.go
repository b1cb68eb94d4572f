// Package stream delivers the indexer's push feed: incremental new-block and
// new-transaction events arriving over a persistent connection. Two
// transports implement the Source interface, the indexer's websocket
// endpoint and its Redis Pub/Sub channel. Both feed the same fan-out hub.
//
// Delivery is at-most-once with no replay: a subscriber that falls behind
// loses messages rather than stalling the hub, and the transport makes no
// ordering promise relative to concurrent page fetches. Final ordering is the
// reconciler's job, not the transport's.
package stream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Message types carried on the push feed.
const (
	TypeNewBlock       = "new_block"
	TypeNewTransaction = "new_transaction"
)

// Message is one push-feed event. The payload stays raw until a consumer
// that knows the type decodes it.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Source is a push-feed transport. Run blocks, delivering decoded messages
// through emit until the context ends; it handles its own reconnection.
type Source interface {
	Run(ctx context.Context, emit func(Message)) error
}

// Hub fans one push feed out to independent subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[string]chan Message
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan Message)}
}

// Subscribe registers a consumer. The returned cancel must be called when the
// consumer goes away, otherwise its channel leaks. Past messages are not
// replayed.
func (h *Hub) Subscribe(buffer int) (<-chan Message, func()) {
	if buffer <= 0 {
		buffer = 64
	}
	ch := make(chan Message, buffer)
	id := uuid.New().String()

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the message to every subscriber. A subscriber with a full
// buffer is skipped: one slow consumer must not stall the feed.
func (h *Hub) Publish(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close drops all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
