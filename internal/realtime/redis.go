package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openkanban/board-api/internal/domain"
)

// RedisBroadcaster publishes events through Redis pub/sub so that rooms
// span every server instance subscribed to the same channel prefix. Local
// delivery happens when the published message arrives back through the
// subscription, exactly like delivery on any other instance.
//
// The exclude parameter cannot cross process boundaries, so
// BroadcastExclude falls back to broadcasting to all — acceptable because
// the mutation paths broadcast to all anyway.
type RedisBroadcaster struct {
	client *redis.Client
	prefix string
	local  *Hub
	logger *slog.Logger
}

// Ensure RedisBroadcaster implements Broadcaster.
var _ Broadcaster = (*RedisBroadcaster)(nil)

// NewRedisBroadcaster creates a broadcaster that publishes to
// prefix+boardID channels and delivers inbound messages through the given
// local hub.
func NewRedisBroadcaster(client *redis.Client, prefix string, local *Hub, log *slog.Logger) *RedisBroadcaster {
	if log == nil {
		log = slog.Default()
	}
	return &RedisBroadcaster{
		client: client,
		prefix: prefix,
		local:  local,
		logger: log.With(slog.String("component", "redis_broadcaster")),
	}
}

// Broadcast implements Broadcaster.Broadcast. Publish failures are logged
// and swallowed: event delivery is best-effort and must never fail the
// mutation that produced the event.
func (b *RedisBroadcaster) Broadcast(ctx context.Context, event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("failed to serialize event for publish",
			"event_type", event.Type,
			"board_id", event.BoardID,
			"error", err)
		return
	}

	channel := b.prefix + event.BoardID.String()
	if err := b.client.Publish(ctx, channel, payload).Err(); err != nil {
		b.logger.Error("failed to publish event",
			"channel", channel,
			"event_type", event.Type,
			"error", err)
	}
}

// BroadcastExclude implements Broadcaster.BroadcastExclude.
func (b *RedisBroadcaster) BroadcastExclude(ctx context.Context, event domain.Event, _ *Client) {
	b.Broadcast(ctx, event)
}

// Run subscribes to the broadcaster's channel pattern and fans inbound
// events out through the local hub until the context is canceled. The
// subscription reconnects with a short backoff if the channel closes.
func (b *RedisBroadcaster) Run(ctx context.Context) {
	pattern := b.prefix + "*"
	for {
		sub := b.client.PSubscribe(ctx, pattern)
		ch := sub.Channel()

	receive:
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					break receive
				}
				var event domain.Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Error("unable to parse published event",
						"channel", msg.Channel,
						"error", err)
					continue
				}
				b.local.Broadcast(ctx, event)
			}
		}

		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}
		b.logger.Error("pubsub channel closed, reconnecting")
		time.Sleep(time.Second)
	}
}
