package realtime

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/md2004sameer/Wire/internal/models"
	"github.com/md2004sameer/Wire/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// SystemNoticePrefix marks server-originated lines on the chat wire so
// clients can render them differently from user messages. This is a
// wire-format literal; changing it breaks existing clients.
const SystemNoticePrefix = "[system] "

// member is one (username, connection) pair inside a room. A username
// may appear more than once (multiple devices) but at most once per
// connection.
type member struct {
	username string
	client   *Client
}

// RoomHub groups connections into short-lived named rooms and delivers
// point-to-multipoint text messages. Rooms are created on demand and
// garbage collected the moment the last member leaves.
type RoomHub struct {
	mu sync.RWMutex

	// rooms maps room id -> insertion-ordered member list.
	rooms map[string][]member

	// clientRooms tracks which room a connection joined, so abnormal
	// disconnects can be cleaned up without the handler's help.
	clientRooms map[*Client]string
}

// NewRoomHub creates an empty room registry.
func NewRoomHub() *RoomHub {
	return &RoomHub{
		rooms:       make(map[string][]member),
		clientRooms: make(map[*Client]string),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *RoomHub) Name() string { return "room hub" }

// CreateRoom generates a fresh short numeric room id. Rooms are
// short-lived, so collisions are retried rather than hardened against.
func (h *RoomHub) CreateRoom() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	for {
		id := fmt.Sprintf("%04d", rand.IntN(10000))
		if _, taken := h.rooms[id]; !taken {
			return id
		}
	}
}

// Join adds the (username, client) pair to the room, creating the room
// if the id is unknown (joining an id that was never explicitly
// created is tolerated). Other current members receive a system
// notice. Returns MissingUsernameError when no username was supplied.
func (h *RoomHub) Join(roomID, username string, c *Client) error {
	if username == "" {
		return models.NewMissingUsernameError()
	}

	h.mu.Lock()
	others := append([]member(nil), h.rooms[roomID]...)
	h.rooms[roomID] = append(h.rooms[roomID], member{username: username, client: c})
	h.clientRooms[c] = roomID
	size := len(h.rooms[roomID])
	h.mu.Unlock()

	observability.WebSocketRoomConnections.WithLabelValues(roomID).Set(float64(size))
	h.notify(others, username+" joined the room")
	return nil
}

// Leave removes exactly the (username, client) pair. It must not fail
// when the room or member is already gone; disconnect paths race with
// explicit leaves. An emptied room is removed immediately.
func (h *RoomHub) Leave(roomID, username string, c *Client) {
	h.mu.Lock()
	members, ok := h.rooms[roomID]
	if !ok {
		h.mu.Unlock()
		return
	}

	removed := false
	remaining := members[:0]
	for _, m := range members {
		if !removed && m.username == username && m.client == c {
			removed = true
			continue
		}
		remaining = append(remaining, m)
	}

	if !removed {
		h.mu.Unlock()
		return
	}

	delete(h.clientRooms, c)
	if len(remaining) == 0 {
		delete(h.rooms, roomID)
	} else {
		h.rooms[roomID] = remaining
	}
	size := len(remaining)
	rest := append([]member(nil), remaining...)
	h.mu.Unlock()

	observability.WebSocketRoomConnections.WithLabelValues(roomID).Set(float64(size))
	h.notify(rest, username+" left the room")
}

// Broadcast delivers message to every member of the room except the
// sender. Delivery failures to individual recipients are swallowed;
// one dead peer never blocks the rest.
func (h *RoomHub) Broadcast(roomID string, message []byte, sender *Client) {
	h.mu.RLock()
	members := append([]member(nil), h.rooms[roomID]...)
	h.mu.RUnlock()

	for _, m := range members {
		if m.client == sender {
			continue
		}
		m.client.TrySend(message)
	}
	observability.MessageThroughput.WithLabelValues(h.Name(), "chat").Inc()
}

// UnregisterClient removes a disconnected client from its room, if
// any. This runs before the connection handle is discarded so a later
// broadcast can never write to a dead connection.
func (h *RoomHub) UnregisterClient(c *Client) {
	h.mu.RLock()
	roomID, ok := h.clientRooms[c]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.Leave(roomID, c.Username, c)
}

// RoomSize reports the current member count; zero means the room does
// not exist.
func (h *RoomHub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// notify sends a system notice to the given members.
func (h *RoomHub) notify(members []member, text string) {
	if len(members) == 0 {
		return
	}
	notice := []byte(SystemNoticePrefix + text)
	for _, m := range members {
		m.client.TrySend(notice)
	}
	observability.MessageThroughput.WithLabelValues(h.Name(), "system").Inc()
}

// Shutdown gracefully closes every room connection.
func (h *RoomHub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, members := range h.rooms {
		for _, m := range members {
			if m.client.Conn != nil {
				_ = m.client.Conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down"))
			}
			m.client.Close()
		}
		delete(h.rooms, id)
		observability.WebSocketRoomConnections.WithLabelValues(id).Set(0)
	}
	h.clientRooms = make(map[*Client]string)
	return nil
}
