// Package realtime manages live websocket connections: the global feed
// hub, ad-hoc chat rooms, and per-user notification push.
package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/md2004sameer/Wire/internal/observability"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16384
)

// Hub is implemented by every registry a client can belong to. A hub
// must remove the client from everything it joined when the connection
// goes away.
type Hub interface {
	UnregisterClient(c *Client)
	Name() string
}

// Client is a middleman between one websocket connection and a hub.
// It is owned by its hub from registration until disconnect; other
// components only hold a transient reference during a broadcast.
type Client struct {
	// ID is the opaque connection identity.
	ID string

	// Username may be empty for unauthenticated feed subscribers.
	Username string

	Hub Hub

	// Conn is nil in tests that exercise hub bookkeeping only.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	// IncomingHandler handles messages read from the peer.
	IncomingHandler func(*Client, []byte)

	closeOnce sync.Once
}

// NewClient creates a new Client instance.
func NewClient(hub Hub, conn *websocket.Conn, username string) *Client {
	return &Client{
		ID:       uuid.NewString(),
		Username: username,
		Hub:      hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
	}
}

// Close closes the underlying connection. Safe to call multiple times
// and after the peer already disconnected.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
	})
}

// ReadPump pumps messages from the websocket connection to the hub.
// On any read error it unregisters the client, which removes it from
// every room or subscriber set before the handle is discarded.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ReadPump error (conn %s): %v", c.ID, err)
			}
			break
		}

		if c.IncomingHandler != nil {
			c.IncomingHandler(c, message)
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend attempts to send a message to the client without blocking.
// A dead or slow peer must never stall delivery to the rest of a room,
// so a full buffer drops the message and records the drop.
func (c *Client) TrySend(message []byte) {
	defer func() {
		if r := recover(); r != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "closed").Inc()
		}
	}()

	select {
	case c.Send <- message:
	default:
		observability.WebSocketBackpressureDrops.WithLabelValues(c.Hub.Name(), "full").Inc()
		log.Printf("client %s (%s): buffer full, dropped message", c.ID, c.Hub.Name())
	}
}
