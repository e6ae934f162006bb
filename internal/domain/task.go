package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task is a card within a list. Position follows the same dense zero-based
// invariant as List positions, scoped per list.
type Task struct {
	ID          uuid.UUID `json:"id"`
	ListID      uuid.UUID `json:"listId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Position    int       `json:"position"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TaskAssignment links a task to a user. At most one assignment may exist
// per (task, user) pair; the store enforces this with a unique constraint.
type TaskAssignment struct {
	TaskID     uuid.UUID `json:"taskId"`
	UserID     uuid.UUID `json:"userId"`
	AssignedAt time.Time `json:"assignedAt"`
}

// NewTask creates a new Task at the given position within a list.
// Returns an error if validation fails.
func NewTask(listID uuid.UUID, title, description string, position int, createdBy uuid.UUID) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		ListID:      listID,
		Title:       strings.TrimSpace(title),
		Description: description,
		Position:    position,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if t.ListID == uuid.Nil {
		return NewValidationError("listId", "cannot be empty", ErrInvalidID)
	}
	if t.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyTitle)
	}
	if t.Position < 0 {
		return NewValidationError("position", "cannot be negative", ErrInvalidPosition)
	}
	if t.CreatedBy == uuid.Nil {
		return NewValidationError("createdBy", "cannot be empty", ErrInvalidID)
	}
	return nil
}

// NewTaskAssignment creates a new assignment of a task to a user.
func NewTaskAssignment(taskID, userID uuid.UUID) (*TaskAssignment, error) {
	if taskID == uuid.Nil {
		return nil, NewValidationError("taskId", "cannot be empty", ErrInvalidID)
	}
	if userID == uuid.Nil {
		return nil, NewValidationError("userId", "cannot be empty", ErrInvalidID)
	}
	return &TaskAssignment{
		TaskID:     taskID,
		UserID:     userID,
		AssignedAt: time.Now().UTC(),
	}, nil
}
