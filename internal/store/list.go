package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
)

// ListStore defines the persistence operations for lists, including the
// position shift primitives the ordered collection manager relies on.
// Shift operations must be called inside a transaction together with the
// row mutation that motivated them.
type ListStore interface {
	// Create saves a new list at its assigned position.
	Create(ctx context.Context, list *domain.List) error

	// GetByID retrieves a list by its unique ID.
	// Returns ErrListNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.List, error)

	// GetForUpdate retrieves a list and locks its row for the duration of
	// the surrounding transaction. Every transaction that shifts task
	// positions takes this lock on the affected list (both lists for a
	// transfer), so concurrent shifts on one list serialize instead of
	// interleaving. Must be called through WithTx.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.List, error)

	// ListByBoard returns a board's lists ordered by ascending position.
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]domain.List, error)

	// Update persists the list's mutable fields (title, position).
	Update(ctx context.Context, list *domain.List) error

	// Delete removes the list. Gap closing is the caller's responsibility
	// (CloseGap in the same transaction).
	Delete(ctx context.Context, id uuid.UUID) error

	// MaxPosition returns the highest position within the board, or -1
	// when the board has no lists.
	MaxPosition(ctx context.Context, boardID uuid.UUID) (int, error)

	// Count returns the number of lists within the board.
	Count(ctx context.Context, boardID uuid.UUID) (int, error)

	// ShiftRange adds delta to the position of every list in the board
	// whose position lies in [lo, hi].
	ShiftRange(ctx context.Context, boardID uuid.UUID, lo, hi, delta int) error

	// CloseGap decrements the position of every list in the board whose
	// position is greater than above.
	CloseGap(ctx context.Context, boardID uuid.UUID, above int) error

	// TitlesByIDs returns the titles of the given lists, keyed by ID.
	// Missing IDs are simply absent from the result.
	TitlesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	// WithTx returns a store instance bound to the given transaction.
	WithTx(tx *sql.Tx) ListStore
}
