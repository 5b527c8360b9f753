package realtime

import (
	"context"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// UserHub maps usernames to their active notification connections so
// durable notifications can also be pushed live. A user may hold
// several connections (multiple tabs or devices).
type UserHub struct {
	mu    sync.RWMutex
	conns map[string]map[*Client]struct{}
}

// NewUserHub creates an empty per-user connection registry.
func NewUserHub() *UserHub {
	return &UserHub{conns: make(map[string]map[*Client]struct{})}
}

// Name returns a human-readable identifier for this hub.
func (h *UserHub) Name() string { return "user hub" }

// Register adds a connection for the given username.
func (h *UserHub) Register(username string, conn *websocket.Conn) *Client {
	client := NewClient(h, conn, username)

	h.mu.Lock()
	m, ok := h.conns[username]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[username] = m
	}
	m[client] = struct{}{}
	h.mu.Unlock()

	return client
}

// UnregisterClient removes a connection, dropping the user's entry
// when its last connection goes away.
func (h *UserHub) UnregisterClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.conns[c.Username]; ok {
		delete(m, c)
		if len(m) == 0 {
			delete(h.conns, c.Username)
		}
	}
}

// Broadcast sends the message to every connection of one user.
func (h *UserHub) Broadcast(username string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[username] {
		c.TrySend(message)
	}
}

// IsOnline reports whether the user has at least one live connection.
func (h *UserHub) IsOnline(username string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.conns[username]
	return ok && len(clients) > 0
}

// Shutdown gracefully closes all registered connections.
func (h *UserHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for username, clients := range h.conns {
		for c := range clients {
			if c.Conn != nil {
				_ = c.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"))
			}
			c.Close()
		}
		delete(h.conns, username)
	}
	return nil
}
