package service

import (
	"context"

	"github.com/openkanban/board-api/internal/domain"
)

// Broadcaster is the service layer's view of event fan-out. Satisfied by
// realtime.Hub and realtime.RedisBroadcaster. Delivery is fire-and-forget:
// implementations must not block the mutation path or surface errors.
type Broadcaster interface {
	Broadcast(ctx context.Context, event domain.Event)
}
