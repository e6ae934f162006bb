package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/store"
)

// BoardStore implements the store.BoardStore interface using PostgreSQL.
type BoardStore struct {
	db store.DBTX
}

// NewBoardStore creates a new PostgreSQL-backed board store.
func NewBoardStore(db store.DBTX) *BoardStore {
	return &BoardStore{db: db}
}

// Ensure BoardStore implements store.BoardStore.
var _ store.BoardStore = (*BoardStore)(nil)

// WithTx returns a board store bound to the given transaction.
func (s *BoardStore) WithTx(tx *sql.Tx) store.BoardStore {
	return &BoardStore{db: tx}
}

// Create implements store.BoardStore.Create.
func (s *BoardStore) Create(ctx context.Context, board *domain.Board) error {
	query := `
		INSERT INTO boards (id, title, is_public, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		board.ID,
		board.Title,
		board.IsPublic,
		board.OwnerID,
		board.CreatedAt,
		board.UpdatedAt,
	)
	if err != nil {
		return MapUniqueViolation(err, store.ErrBoardTitleExists)
	}
	return nil
}

// GetByID implements store.BoardStore.GetByID.
func (s *BoardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	query := `
		SELECT id, title, is_public, owner_id, created_at, updated_at
		FROM boards
		WHERE id = $1
	`
	var board domain.Board
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&board.ID,
		&board.Title,
		&board.IsPublic,
		&board.OwnerID,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to get board: %w", MapError(err))
	}
	return &board, nil
}

// GetForUpdate implements store.BoardStore.GetForUpdate.
func (s *BoardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Board, error) {
	query := `
		SELECT id, title, is_public, owner_id, created_at, updated_at
		FROM boards
		WHERE id = $1
		FOR UPDATE
	`
	var board domain.Board
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&board.ID,
		&board.Title,
		&board.IsPublic,
		&board.OwnerID,
		&board.CreatedAt,
		&board.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrBoardNotFound
		}
		return nil, fmt.Errorf("failed to lock board: %w", MapError(err))
	}
	return &board, nil
}

// ListVisible implements store.BoardStore.ListVisible.
func (s *BoardStore) ListVisible(ctx context.Context, viewerID uuid.UUID) ([]domain.Board, error) {
	query := `
		SELECT id, title, is_public, owner_id, created_at, updated_at
		FROM boards
		WHERE is_public OR owner_id = $1
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list boards: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var boards []domain.Board
	for rows.Next() {
		var board domain.Board
		if err := rows.Scan(
			&board.ID,
			&board.Title,
			&board.IsPublic,
			&board.OwnerID,
			&board.CreatedAt,
			&board.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan board row: %w", err)
		}
		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating board rows: %w", err)
	}
	return boards, nil
}

// Update implements store.BoardStore.Update.
func (s *BoardStore) Update(ctx context.Context, board *domain.Board) error {
	query := `
		UPDATE boards
		SET title = $1, is_public = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := s.db.ExecContext(ctx, query,
		board.Title,
		board.IsPublic,
		board.UpdatedAt,
		board.ID,
	)
	if err != nil {
		return MapUniqueViolation(err, store.ErrBoardTitleExists)
	}
	return CheckRowsAffected(result, store.ErrBoardNotFound)
}
