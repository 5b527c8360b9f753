// Package observability provides metrics and tracing for the service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wire_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// WebSocketConnectionsTotal is the gauge of active WebSocket connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wire_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketRoomConnections is the gauge of connections per chat room.
	WebSocketRoomConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "wire_websocket_room_connections",
		Help: "Number of WebSocket connections per room",
	}, []string{"room_id"})

	// MessageThroughput counts messages delivered per hub and type.
	MessageThroughput = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wire_message_throughput_total",
		Help: "Total number of realtime messages delivered",
	}, []string{"hub", "message_type"})

	// WebSocketBackpressureDrops counts messages dropped because a
	// client's send buffer was full or its channel already closed.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wire_websocket_backpressure_drops_total",
		Help: "Messages dropped due to client backpressure",
	}, []string{"hub", "reason"})

	// NotificationsEmitted counts durable notifications by type.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wire_notifications_emitted_total",
		Help: "Total notifications written, by type",
	}, []string{"type"})

	// FeedEventsPublished counts new_post events pushed to the feed hub.
	FeedEventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wire_feed_events_published_total",
		Help: "Total new_post events published to feed subscribers",
	})
)
