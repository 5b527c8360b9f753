package server

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/md2004sameer/Wire/internal/middleware"
	"github.com/md2004sameer/Wire/internal/realtime"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// CreateRoom handles POST /api/rooms. Joining happens over the
// websocket at /api/ws/rooms/:roomID.
func (s *Server) CreateRoom(c *fiber.Ctx) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"room_id": s.roomHub.CreateRoom(),
	})
}

// FeedWebsocketHandler streams new_post events to subscribers. No
// username is required; anonymous observers may watch the feed. The
// connection is receive-only: anything the peer sends is ignored.
func (s *Server) FeedWebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		username, _ := conn.Locals("username").(string)

		client := realtime.NewClient(s.feedHub, conn, username)
		s.feedHub.Subscribe(client)

		go client.WritePump()
		client.ReadPump()
	})
}

// RoomWebsocketHandler connects a member to a chat room. The username
// travels as a query parameter, matching browser clients that cannot
// set headers during the upgrade. A connection without a username is
// rejected before it ever joins.
func (s *Server) RoomWebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		roomID := conn.Params("roomID")
		username := strings.ToLower(strings.TrimSpace(conn.Query("username")))

		client := realtime.NewClient(s.roomHub, conn, username)
		if err := s.roomHub.Join(roomID, username, client); err != nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		client.IncomingHandler = func(c *realtime.Client, message []byte) {
			if len(message) == 0 {
				return
			}

			allowed, err := middleware.CheckRateLimit(context.Background(),
				s.redis, "room_message", "user:"+username, 30, time.Minute)
			if err != nil {
				// Fail open; chat should survive a Redis outage.
				allowed = true
			}
			if !allowed {
				c.TrySend([]byte(realtime.SystemNoticePrefix + "You are sending messages too quickly"))
				return
			}

			s.roomHub.Broadcast(roomID, message, c)
		}

		log.Printf("WebSocket: %s joined room %s", username, roomID)

		go client.WritePump()
		client.ReadPump()
	})
}

// NotificationWebsocketHandler pushes the caller's notifications as
// they are emitted. Requires authentication; the username comes from
// the verified token, never from the client.
func (s *Server) NotificationWebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		username, _ := conn.Locals("username").(string)
		if username == "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"unauthorized"}`))
			_ = conn.Close()
			return
		}

		client := s.userHub.Register(username, conn)

		go client.WritePump()
		client.ReadPump()
	})
}
