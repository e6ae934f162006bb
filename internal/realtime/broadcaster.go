package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/platform/logger"
)

// Broadcaster delivers a domain event to every live connection in the
// event's board room. Implementations are best-effort and fire-and-forget:
// no acknowledgment, no retry, no persistence of missed events.
type Broadcaster interface {
	// Broadcast fans the event out to the board's room.
	Broadcast(ctx context.Context, event domain.Event)

	// BroadcastExclude fans the event out while skipping one connection,
	// used to avoid echoing an action back to its originator. Mutation
	// paths pass no exclusion: the acting user's own connections receive
	// their events and clients apply them idempotently.
	BroadcastExclude(ctx context.Context, event domain.Event, exclude *Client)
}

// Hub is the in-process Broadcaster. It serializes an event once and
// enqueues it on every room member; a full send buffer drops the message
// for that connection rather than blocking the caller.
type Hub struct {
	registry *Registry
	logger   *slog.Logger
}

// Ensure Hub implements Broadcaster.
var _ Broadcaster = (*Hub)(nil)

// NewHub creates a hub broadcaster over the given registry.
func NewHub(registry *Registry, log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		registry: registry,
		logger:   log.With(slog.String("component", "realtime_hub")),
	}
}

// Broadcast implements Broadcaster.Broadcast.
func (h *Hub) Broadcast(ctx context.Context, event domain.Event) {
	h.BroadcastExclude(ctx, event, nil)
}

// BroadcastExclude implements Broadcaster.BroadcastExclude.
func (h *Hub) BroadcastExclude(ctx context.Context, event domain.Event, exclude *Client) {
	log := logger.FromContextOrDefault(ctx, h.logger)

	message, err := json.Marshal(event)
	if err != nil {
		log.Error("failed to serialize event",
			"event_type", event.Type,
			"board_id", event.BoardID,
			"error", err)
		return
	}

	members := h.registry.Members(event.BoardID)
	if len(members) == 0 {
		return
	}

	delivered := 0
	for _, client := range members {
		if client == exclude {
			continue
		}
		// A failed enqueue is a per-connection condition; delivery to the
		// remaining members continues.
		if client.enqueue(message) {
			delivered++
		} else {
			log.Debug("dropped event for slow or closed connection",
				"event_type", event.Type,
				"board_id", event.BoardID,
				"user_id", client.UserID)
		}
	}

	log.Debug("broadcast event",
		"event_type", event.Type,
		"board_id", event.BoardID,
		"room_size", len(members),
		"delivered", delivered)
}
