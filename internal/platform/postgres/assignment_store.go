package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/store"
)

// AssignmentStore implements the store.AssignmentStore interface using
// PostgreSQL. The (task_id, user_id) primary key enforces the at-most-one
// assignment invariant.
type AssignmentStore struct {
	db store.DBTX
}

// NewAssignmentStore creates a new PostgreSQL-backed assignment store.
func NewAssignmentStore(db store.DBTX) *AssignmentStore {
	return &AssignmentStore{db: db}
}

// Ensure AssignmentStore implements store.AssignmentStore.
var _ store.AssignmentStore = (*AssignmentStore)(nil)

// WithTx returns an assignment store bound to the given transaction.
func (s *AssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore {
	return &AssignmentStore{db: tx}
}

// Create implements store.AssignmentStore.Create.
func (s *AssignmentStore) Create(ctx context.Context, assignment *domain.TaskAssignment) error {
	query := `
		INSERT INTO task_assignments (task_id, user_id, assigned_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query,
		assignment.TaskID,
		assignment.UserID,
		assignment.AssignedAt,
	)
	if err != nil {
		return MapUniqueViolation(err, store.ErrAlreadyAssigned)
	}
	return nil
}

// Delete implements store.AssignmentStore.Delete.
func (s *AssignmentStore) Delete(ctx context.Context, taskID, userID uuid.UUID) error {
	query := `DELETE FROM task_assignments WHERE task_id = $1 AND user_id = $2`
	result, err := s.db.ExecContext(ctx, query, taskID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrAssignmentNotFound)
}

// ListByTask implements store.AssignmentStore.ListByTask.
func (s *AssignmentStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]domain.TaskAssignment, error) {
	query := `
		SELECT task_id, user_id, assigned_at
		FROM task_assignments
		WHERE task_id = $1
		ORDER BY assigned_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var assignments []domain.TaskAssignment
	for rows.Next() {
		var assignment domain.TaskAssignment
		if err := rows.Scan(
			&assignment.TaskID,
			&assignment.UserID,
			&assignment.AssignedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignment rows: %w", err)
	}
	return assignments, nil
}
