package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/md2004sameer/Wire/internal/models"
	"github.com/md2004sameer/Wire/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// FeedEvent is the wire format pushed to feed subscribers.
type FeedEvent struct {
	Type string       `json:"type"`
	Post *models.Post `json:"post"`
}

// EventNewPost tags the only event the feed currently carries.
const EventNewPost = "new_post"

// FeedHub is the single global broadcast group for newly created
// posts. Subscribers need no username; unauthenticated observers may
// receive but not post. There is no backlog: a subscriber connecting
// after a publish never sees the missed event.
type FeedHub struct {
	mu          sync.RWMutex
	subscribers map[*Client]struct{}
}

// NewFeedHub creates an empty feed subscriber set.
func NewFeedHub() *FeedHub {
	return &FeedHub{subscribers: make(map[*Client]struct{})}
}

// Name returns a human-readable identifier for this hub.
func (h *FeedHub) Name() string { return "feed hub" }

// Subscribe adds the connection to the feed set.
func (h *FeedHub) Subscribe(c *Client) {
	h.mu.Lock()
	h.subscribers[c] = struct{}{}
	h.mu.Unlock()
	observability.WebSocketConnectionsTotal.Inc()
}

// Unsubscribe removes the connection. Idempotent.
func (h *FeedHub) Unsubscribe(c *Client) {
	h.mu.Lock()
	_, present := h.subscribers[c]
	delete(h.subscribers, c)
	h.mu.Unlock()
	if present {
		observability.WebSocketConnectionsTotal.Dec()
	}
}

// UnregisterClient removes a disconnected client from the feed set.
func (h *FeedHub) UnregisterClient(c *Client) {
	h.Unsubscribe(c)
}

// SubscriberCount reports the current number of feed subscribers.
func (h *FeedHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// PublishNewPost delivers a new_post event to every current
// subscriber. Best-effort: it never fails the post creation that
// triggered it, and publishing to zero subscribers is a no-op.
func (h *FeedHub) PublishNewPost(post *models.Post) {
	payload, err := json.Marshal(FeedEvent{Type: EventNewPost, Post: post})
	if err != nil {
		log.Printf("feed hub: failed to marshal new_post event: %v", err)
		return
	}
	h.PublishRaw(payload)
}

// PublishRaw fans an already-encoded event out to all subscribers.
// Used by the Redis bridge for events originating on other instances.
func (h *FeedHub) PublishRaw(payload []byte) {
	h.mu.RLock()
	subs := make([]*Client, 0, len(h.subscribers))
	for c := range h.subscribers {
		subs = append(subs, c)
	}
	h.mu.RUnlock()

	for _, c := range subs {
		c.TrySend(payload)
	}
	observability.FeedEventsPublished.Inc()
	observability.MessageThroughput.WithLabelValues(h.Name(), EventNewPost).Inc()
}

// Shutdown gracefully closes all feed connections.
func (h *FeedHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.subscribers {
		if c.Conn != nil {
			_ = c.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"))
		}
		c.Close()
		delete(h.subscribers, c)
		observability.WebSocketConnectionsTotal.Dec()
	}
	return nil
}
