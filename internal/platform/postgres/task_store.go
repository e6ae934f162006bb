package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/store"
)

// TaskStore implements the store.TaskStore interface using PostgreSQL.
type TaskStore struct {
	db store.DBTX
}

// NewTaskStore creates a new PostgreSQL-backed task store.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

// Ensure TaskStore implements store.TaskStore.
var _ store.TaskStore = (*TaskStore)(nil)

// WithTx returns a task store bound to the given transaction.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx}
}

// Create implements store.TaskStore.Create.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, list_id, title, description, position, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.ListID,
		task.Title,
		nullableString(task.Description),
		task.Position,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", MapError(err))
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *TaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, list_id, title, description, position, created_by, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`
	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", MapError(err))
	}
	return task, nil
}

// ListByList implements store.TaskStore.ListByList.
func (s *TaskStore) ListByList(ctx context.Context, listID uuid.UUID, query string) ([]domain.Task, error) {
	sqlQuery := `
		SELECT id, list_id, title, description, position, created_by, created_at, updated_at
		FROM tasks
		WHERE list_id = $1
		  AND ($2 = '' OR title ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY position ASC
	`
	return s.queryTasks(ctx, sqlQuery, listID, query)
}

// ListByBoard implements store.TaskStore.ListByBoard.
func (s *TaskStore) ListByBoard(ctx context.Context, boardID uuid.UUID, query string) ([]domain.Task, error) {
	sqlQuery := `
		SELECT t.id, t.list_id, t.title, t.description, t.position, t.created_by, t.created_at, t.updated_at
		FROM tasks t
		JOIN lists l ON l.id = t.list_id
		WHERE l.board_id = $1
		  AND ($2 = '' OR t.title ILIKE '%' || $2 || '%' OR t.description ILIKE '%' || $2 || '%')
		ORDER BY t.position ASC
	`
	return s.queryTasks(ctx, sqlQuery, boardID, query)
}

// Update implements store.TaskStore.Update.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET list_id = $1, title = $2, description = $3, position = $4, updated_at = $5
		WHERE id = $6
	`
	result, err := s.db.ExecContext(ctx, query,
		task.ListID,
		task.Title,
		nullableString(task.Description),
		task.Position,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Delete implements store.TaskStore.Delete.
func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// MaxPosition implements store.TaskStore.MaxPosition.
func (s *TaskStore) MaxPosition(ctx context.Context, listID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(position), -1) FROM tasks WHERE list_id = $1`
	var max int
	if err := s.db.QueryRowContext(ctx, query, listID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max task position: %w", MapError(err))
	}
	return max, nil
}

// Count implements store.TaskStore.Count.
func (s *TaskStore) Count(ctx context.Context, listID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE list_id = $1`, listID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", MapError(err))
	}
	return count, nil
}

// ShiftRange implements store.TaskStore.ShiftRange.
func (s *TaskStore) ShiftRange(ctx context.Context, listID uuid.UUID, lo, hi, delta int) error {
	query := `
		UPDATE tasks
		SET position = position + $1, updated_at = NOW()
		WHERE list_id = $2 AND position >= $3 AND position <= $4
	`
	if _, err := s.db.ExecContext(ctx, query, delta, listID, lo, hi); err != nil {
		return fmt.Errorf("failed to shift task positions: %w", MapError(err))
	}
	return nil
}

// CloseGap implements store.TaskStore.CloseGap.
func (s *TaskStore) CloseGap(ctx context.Context, listID uuid.UUID, above int) error {
	query := `
		UPDATE tasks
		SET position = position - 1, updated_at = NOW()
		WHERE list_id = $1 AND position > $2
	`
	if _, err := s.db.ExecContext(ctx, query, listID, above); err != nil {
		return fmt.Errorf("failed to close task position gap: %w", MapError(err))
	}
	return nil
}

// OpenGap implements store.TaskStore.OpenGap.
func (s *TaskStore) OpenGap(ctx context.Context, listID uuid.UUID, from int) error {
	query := `
		UPDATE tasks
		SET position = position + 1, updated_at = NOW()
		WHERE list_id = $1 AND position >= $2
	`
	if _, err := s.db.ExecContext(ctx, query, listID, from); err != nil {
		return fmt.Errorf("failed to open task position gap: %w", MapError(err))
	}
	return nil
}

// TitlesByIDs implements store.TaskStore.TitlesByIDs.
func (s *TaskStore) TitlesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	titles := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	query := `SELECT id, title FROM tasks WHERE id = ANY($1::uuid[])`
	rows, err := s.db.QueryContext(ctx, query, idStrings)
	if err != nil {
		return nil, fmt.Errorf("failed to query task titles: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id uuid.UUID
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan task title row: %w", err)
		}
		titles[id] = title
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task title rows: %w", err)
	}
	return titles, nil
}

// queryTasks runs a task query and scans the resulting rows.
func (s *TaskStore) queryTasks(ctx context.Context, query string, args ...any) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var description sql.NullString
	if err := row.Scan(
		&task.ID,
		&task.ListID,
		&task.Title,
		&description,
		&task.Position,
		&task.CreatedBy,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	task.Description = description.String
	return &task, nil
}

// nullableString converts an empty string to NULL for storage.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
