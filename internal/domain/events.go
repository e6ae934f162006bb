package domain

import (
	"github.com/google/uuid"
)

// EventType enumerates the realtime events fanned out to board rooms.
type EventType string

// Realtime event types.
const (
	EventTaskCreated    EventType = "TASK_CREATED"
	EventTaskUpdated    EventType = "TASK_UPDATED"
	EventTaskDeleted    EventType = "TASK_DELETED"
	EventTaskMoved      EventType = "TASK_MOVED"
	EventTaskAssigned   EventType = "TASK_ASSIGNED"
	EventTaskUnassigned EventType = "TASK_UNASSIGNED"
	EventListCreated    EventType = "LIST_CREATED"
	EventListUpdated    EventType = "LIST_UPDATED"
	EventListDeleted    EventType = "LIST_DELETED"
	EventListReordered  EventType = "LIST_REORDERED"
	EventBoardUpdated   EventType = "BOARD_UPDATED"
)

// Event is the envelope delivered to every live connection subscribed to a
// board. Delivery is best-effort and fire-and-forget: there is no ack,
// retry, or replay. A client that misses events resynchronizes by
// re-fetching board state.
type Event struct {
	Type    EventType `json:"type"`
	BoardID uuid.UUID `json:"boardId"`
	ActorID uuid.UUID `json:"actorId"`
	Payload any       `json:"payload"`
}

// NewEvent builds an event envelope for the given board and actor.
func NewEvent(eventType EventType, boardID, actorID uuid.UUID, payload any) Event {
	return Event{
		Type:    eventType,
		BoardID: boardID,
		ActorID: actorID,
		Payload: payload,
	}
}

// TaskDeletedPayload is the payload of a TASK_DELETED event.
type TaskDeletedPayload struct {
	ID     uuid.UUID `json:"id"`
	ListID uuid.UUID `json:"listId"`
}

// TaskMovedPayload is the payload of a TASK_MOVED event.
type TaskMovedPayload struct {
	ID         uuid.UUID `json:"id"`
	FromListID uuid.UUID `json:"fromListId"`
	ToListID   uuid.UUID `json:"toListId"`
	Position   int       `json:"position"`
}

// TaskAssignmentPayload is the payload of TASK_ASSIGNED and TASK_UNASSIGNED
// events.
type TaskAssignmentPayload struct {
	TaskID uuid.UUID `json:"taskId"`
	UserID uuid.UUID `json:"userId"`
}

// ListDeletedPayload is the payload of a LIST_DELETED event.
type ListDeletedPayload struct {
	ID      uuid.UUID `json:"id"`
	BoardID uuid.UUID `json:"boardId"`
}

// ListReorderedPayload is the payload of a LIST_REORDERED event.
type ListReorderedPayload struct {
	ID       uuid.UUID `json:"id"`
	Position int       `json:"position"`
}
