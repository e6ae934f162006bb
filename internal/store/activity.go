package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
)

// ActivityStore defines the persistence operations for the append-only
// activity log. Records are immutable: there is no update or delete.
type ActivityStore interface {
	// Create appends a new activity record.
	Create(ctx context.Context, record *domain.ActivityRecord) error

	// ListByBoard returns a page of the board's activity records in
	// descending creation order, with the acting user's summary joined in.
	ListByBoard(ctx context.Context, boardID uuid.UUID, offset, limit int) ([]domain.ActivityRecord, error)

	// WithTx returns a store instance bound to the given transaction.
	WithTx(tx *sql.Tx) ActivityStore
}
