package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
)

// BoardStore defines the persistence operations for boards.
type BoardStore interface {
	// Create saves a new board. Returns ErrBoardTitleExists when the owner
	// already has a board with the same title.
	Create(ctx context.Context, board *domain.Board) error

	// GetByID retrieves a board by its unique ID.
	// Returns ErrBoardNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Board, error)

	// GetForUpdate retrieves a board and locks its row for the duration
	// of the surrounding transaction. Every transaction that shifts list
	// positions takes this lock first, so concurrent shifts on one board
	// serialize instead of interleaving. Must be called through WithTx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Board, error)

	// ListVisible returns all boards readable by the given viewer: public
	// boards plus the viewer's own.
	ListVisible(ctx context.Context, viewerID uuid.UUID) ([]domain.Board, error)

	// Update persists the board's mutable fields (title, visibility).
	// Returns ErrBoardNotFound if it does not exist.
	Update(ctx context.Context, board *domain.Board) error

	// WithTx returns a store instance bound to the given transaction.
	WithTx(tx *sql.Tx) BoardStore
}
