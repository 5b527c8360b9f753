package realtime

import (
	"context"
	"log"
	"runtime/debug"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notifications:user:"
	feedChannel       = "feed:new_post"
)

// Notifier bridges realtime events across instances through Redis
// pub/sub. Every method is a no-op when Redis is not configured, in
// which case fan-out stays local to this process.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, username, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, userChannelPrefix+username, payload).Err()
}

// PublishFeed sends a new_post payload to the global feed channel.
func (n *Notifier) PublishFeed(ctx context.Context, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, feedChannel, payload).Err()
}

// StartSubscriber subscribes to the user pattern and the feed channel,
// forwarding each message to onUser or onFeed. It returns immediately;
// delivery runs until ctx is cancelled.
func (n *Notifier) StartSubscriber(
	ctx context.Context,
	onUser func(username, payload string),
	onFeed func(payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", feedChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in notifier subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					switch {
					case msg.Channel == feedChannel:
						onFeed(msg.Payload)
					case strings.HasPrefix(msg.Channel, userChannelPrefix):
						onUser(strings.TrimPrefix(msg.Channel, userChannelPrefix), msg.Payload)
					default:
						log.Printf("notifier: unexpected channel %s", msg.Channel)
					}
				}()
			}
		}
	}()

	return nil
}
