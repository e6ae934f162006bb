package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
)

// TaskStore defines the persistence operations for tasks. The shift
// primitives mirror ListStore's, scoped to a list, with OpenGap added for
// cross-list transfers.
type TaskStore interface {
	// Create saves a new task at its assigned position.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListByList returns a list's tasks ordered by ascending position.
	// A non-empty query filters by case-insensitive substring match on
	// title or description.
	ListByList(ctx context.Context, listID uuid.UUID, query string) ([]domain.Task, error)

	// ListByBoard returns every task on the board ordered by ascending
	// position, with the same optional query filter.
	ListByBoard(ctx context.Context, boardID uuid.UUID, query string) ([]domain.Task, error)

	// Update persists the task's mutable fields (title, description,
	// list reference, position).
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task. Gap closing is the caller's responsibility
	// (CloseGap in the same transaction).
	Delete(ctx context.Context, id uuid.UUID) error

	// MaxPosition returns the highest position within the list, or -1
	// when the list has no tasks.
	MaxPosition(ctx context.Context, listID uuid.UUID) (int, error)

	// Count returns the number of tasks within the list.
	Count(ctx context.Context, listID uuid.UUID) (int, error)

	// ShiftRange adds delta to the position of every task in the list
	// whose position lies in [lo, hi].
	ShiftRange(ctx context.Context, listID uuid.UUID, lo, hi, delta int) error

	// CloseGap decrements the position of every task in the list whose
	// position is greater than above.
	CloseGap(ctx context.Context, listID uuid.UUID, above int) error

	// OpenGap increments the position of every task in the list whose
	// position is greater than or equal to from.
	OpenGap(ctx context.Context, listID uuid.UUID, from int) error

	// TitlesByIDs returns the titles of the given tasks, keyed by ID.
	TitlesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	// WithTx returns a store instance bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}

// AssignmentStore defines the persistence operations for task assignments.
type AssignmentStore interface {
	// Create saves a new assignment. Returns ErrAlreadyAssigned when the
	// (task, user) pair already exists.
	Create(ctx context.Context, assignment *domain.TaskAssignment) error

	// Delete removes the assignment for the given pair.
	// Returns ErrAssignmentNotFound if it does not exist.
	Delete(ctx context.Context, taskID, userID uuid.UUID) error

	// ListByTask returns all assignments for the given task.
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.TaskAssignment, error)

	// WithTx returns a store instance bound to the given transaction.
	WithTx(tx *sql.Tx) AssignmentStore
}
