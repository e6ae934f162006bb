package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/store"
)

// ListStore implements the store.ListStore interface using PostgreSQL.
// The shift operations issue range UPDATEs; callers run them inside a
// transaction together with the row mutation so the dense-position
// invariant holds after every commit.
type ListStore struct {
	db store.DBTX
}

// NewListStore creates a new PostgreSQL-backed list store.
func NewListStore(db store.DBTX) *ListStore {
	return &ListStore{db: db}
}

// Ensure ListStore implements store.ListStore.
var _ store.ListStore = (*ListStore)(nil)

// WithTx returns a list store bound to the given transaction.
func (s *ListStore) WithTx(tx *sql.Tx) store.ListStore {
	return &ListStore{db: tx}
}

// Create implements store.ListStore.Create.
func (s *ListStore) Create(ctx context.Context, list *domain.List) error {
	query := `
		INSERT INTO lists (id, board_id, title, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		list.ID,
		list.BoardID,
		list.Title,
		list.Position,
		list.CreatedAt,
		list.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create list: %w", MapError(err))
	}
	return nil
}

// GetByID implements store.ListStore.GetByID.
func (s *ListStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	query := `
		SELECT id, board_id, title, position, created_at, updated_at
		FROM lists
		WHERE id = $1
	`
	var list domain.List
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&list.ID,
		&list.BoardID,
		&list.Title,
		&list.Position,
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrListNotFound
		}
		return nil, fmt.Errorf("failed to get list: %w", MapError(err))
	}
	return &list, nil
}

// GetForUpdate implements store.ListStore.GetForUpdate.
func (s *ListStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.List, error) {
	query := `
		SELECT id, board_id, title, position, created_at, updated_at
		FROM lists
		WHERE id = $1
		FOR UPDATE
	`
	var list domain.List
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&list.ID,
		&list.BoardID,
		&list.Title,
		&list.Position,
		&list.CreatedAt,
		&list.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrListNotFound
		}
		return nil, fmt.Errorf("failed to lock list: %w", MapError(err))
	}
	return &list, nil
}

// ListByBoard implements store.ListStore.ListByBoard.
func (s *ListStore) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]domain.List, error) {
	query := `
		SELECT id, board_id, title, position, created_at, updated_at
		FROM lists
		WHERE board_id = $1
		ORDER BY position ASC
	`
	rows, err := s.db.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var lists []domain.List
	for rows.Next() {
		var list domain.List
		if err := rows.Scan(
			&list.ID,
			&list.BoardID,
			&list.Title,
			&list.Position,
			&list.CreatedAt,
			&list.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan list row: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list rows: %w", err)
	}
	return lists, nil
}

// Update implements store.ListStore.Update.
func (s *ListStore) Update(ctx context.Context, list *domain.List) error {
	query := `
		UPDATE lists
		SET title = $1, position = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query,
		list.Title,
		list.Position,
		list.UpdatedAt,
		list.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update list: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrListNotFound)
}

// Delete implements store.ListStore.Delete. Tasks within the list are
// removed by the ON DELETE CASCADE constraint.
func (s *ListStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete list: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrListNotFound)
}

// MaxPosition implements store.ListStore.MaxPosition.
func (s *ListStore) MaxPosition(ctx context.Context, boardID uuid.UUID) (int, error) {
	query := `SELECT COALESCE(MAX(position), -1) FROM lists WHERE board_id = $1`
	var max int
	if err := s.db.QueryRowContext(ctx, query, boardID).Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max list position: %w", MapError(err))
	}
	return max, nil
}

// Count implements store.ListStore.Count.
func (s *ListStore) Count(ctx context.Context, boardID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lists WHERE board_id = $1`, boardID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lists: %w", MapError(err))
	}
	return count, nil
}

// ShiftRange implements store.ListStore.ShiftRange.
func (s *ListStore) ShiftRange(ctx context.Context, boardID uuid.UUID, lo, hi, delta int) error {
	query := `
		UPDATE lists
		SET position = position + $1, updated_at = NOW()
		WHERE board_id = $2 AND position >= $3 AND position <= $4
	`
	if _, err := s.db.ExecContext(ctx, query, delta, boardID, lo, hi); err != nil {
		return fmt.Errorf("failed to shift list positions: %w", MapError(err))
	}
	return nil
}

// CloseGap implements store.ListStore.CloseGap.
func (s *ListStore) CloseGap(ctx context.Context, boardID uuid.UUID, above int) error {
	query := `
		UPDATE lists
		SET position = position - 1, updated_at = NOW()
		WHERE board_id = $1 AND position > $2
	`
	if _, err := s.db.ExecContext(ctx, query, boardID, above); err != nil {
		return fmt.Errorf("failed to close list position gap: %w", MapError(err))
	}
	return nil
}

// TitlesByIDs implements store.ListStore.TitlesByIDs.
func (s *ListStore) TitlesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	titles := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}

	query := `SELECT id, title FROM lists WHERE id = ANY($1::uuid[])`
	rows, err := s.db.QueryContext(ctx, query, idStrings)
	if err != nil {
		return nil, fmt.Errorf("failed to query list titles: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id uuid.UUID
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("failed to scan list title row: %w", err)
		}
		titles[id] = title
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating list title rows: %w", err)
	}
	return titles, nil
}
