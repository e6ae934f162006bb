package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind identifies what happened in an activity record.
type ActionKind string

// EntityKind identifies which entity an activity record refers to.
type EntityKind string

// Activity action kinds.
const (
	ActionCreated ActionKind = "CREATED"
	ActionUpdated ActionKind = "UPDATED"
	ActionDeleted ActionKind = "DELETED"
	ActionMoved   ActionKind = "MOVED"
)

// Activity entity kinds.
const (
	EntityBoard EntityKind = "BOARD"
	EntityList  EntityKind = "LIST"
	EntityTask  EntityKind = "TASK"
)

// ActivityMetadata is the denormalized snapshot stored alongside an
// activity record. Fields are populated per (action, entity) combination;
// title fields left empty at write time are resolved by ID on the read
// path (see ActivityService.ListByBoard).
type ActivityMetadata struct {
	Title            string     `json:"title,omitempty"`
	TaskTitle        string     `json:"taskTitle,omitempty"`
	ListTitle        string     `json:"listTitle,omitempty"`
	Position         *int       `json:"position,omitempty"`
	From             *int       `json:"from,omitempty"`
	To               *int       `json:"to,omitempty"`
	FromListID       *uuid.UUID `json:"fromListId,omitempty"`
	ToListID         *uuid.UUID `json:"toListId,omitempty"`
	FromListTitle    string     `json:"fromListTitle,omitempty"`
	ToListTitle      string     `json:"toListTitle,omitempty"`
	AssignedUserID   *uuid.UUID `json:"assignedUserId,omitempty"`
	UnassignedUserID *uuid.UUID `json:"unassignedUserId,omitempty"`
}

// ActivityRecord is an immutable append-only log entry describing one
// committed mutation on a board. Records are created synchronously with the
// mutation and never modified or deleted afterward.
type ActivityRecord struct {
	ID         uuid.UUID        `json:"id"`
	BoardID    uuid.UUID        `json:"boardId"`
	UserID     uuid.UUID        `json:"userId"`
	ActionKind ActionKind       `json:"actionType"`
	EntityKind EntityKind       `json:"entityType"`
	EntityID   uuid.UUID        `json:"entityId"`
	Metadata   ActivityMetadata `json:"metadata"`
	CreatedAt  time.Time        `json:"createdAt"`

	// Actor is the read-time join of the acting user's public fields.
	// Populated by the read path only; never stored.
	Actor *UserSummary `json:"user,omitempty"`
}

// UserSummary is the public subset of User embedded in read responses.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// NewActivityRecord creates a new activity record for a committed mutation.
func NewActivityRecord(
	boardID, userID uuid.UUID,
	action ActionKind,
	entity EntityKind,
	entityID uuid.UUID,
	metadata ActivityMetadata,
) (*ActivityRecord, error) {
	if boardID == uuid.Nil {
		return nil, NewValidationError("boardId", "cannot be empty", ErrInvalidID)
	}
	if userID == uuid.Nil {
		return nil, NewValidationError("userId", "cannot be empty", ErrInvalidID)
	}
	if entityID == uuid.Nil {
		return nil, NewValidationError("entityId", "cannot be empty", ErrInvalidID)
	}
	return &ActivityRecord{
		ID:         uuid.New(),
		BoardID:    boardID,
		UserID:     userID,
		ActionKind: action,
		EntityKind: entity,
		EntityID:   entityID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
