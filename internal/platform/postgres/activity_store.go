package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
	"github.com/openkanban/board-api/internal/store"
)

// ActivityStore implements the store.ActivityStore interface using
// PostgreSQL. Metadata is stored as JSONB; the table is append-only.
type ActivityStore struct {
	db store.DBTX
}

// NewActivityStore creates a new PostgreSQL-backed activity store.
func NewActivityStore(db store.DBTX) *ActivityStore {
	return &ActivityStore{db: db}
}

// Ensure ActivityStore implements store.ActivityStore.
var _ store.ActivityStore = (*ActivityStore)(nil)

// WithTx returns an activity store bound to the given transaction.
func (s *ActivityStore) WithTx(tx *sql.Tx) store.ActivityStore {
	return &ActivityStore{db: tx}
}

// Create implements store.ActivityStore.Create.
func (s *ActivityStore) Create(ctx context.Context, record *domain.ActivityRecord) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal activity metadata: %w", err)
	}

	query := `
		INSERT INTO activity_logs (id, board_id, user_id, action_type, entity_type, entity_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.BoardID,
		record.UserID,
		string(record.ActionKind),
		string(record.EntityKind),
		record.EntityID,
		metadata,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create activity record: %w", MapError(err))
	}
	return nil
}

// ListByBoard implements store.ActivityStore.ListByBoard.
func (s *ActivityStore) ListByBoard(ctx context.Context, boardID uuid.UUID, offset, limit int) ([]domain.ActivityRecord, error) {
	query := `
		SELECT a.id, a.board_id, a.user_id, a.action_type, a.entity_type, a.entity_id,
		       a.metadata, a.created_at, u.id, u.name, u.email
		FROM activity_logs a
		JOIN users u ON u.id = a.user_id
		WHERE a.board_id = $1
		ORDER BY a.created_at DESC
		OFFSET $2 LIMIT $3
	`
	rows, err := s.db.QueryContext(ctx, query, boardID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity records: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var records []domain.ActivityRecord
	for rows.Next() {
		var record domain.ActivityRecord
		var actor domain.UserSummary
		var action, entity string
		var metadata []byte
		if err := rows.Scan(
			&record.ID,
			&record.BoardID,
			&record.UserID,
			&action,
			&entity,
			&record.EntityID,
			&metadata,
			&record.CreatedAt,
			&actor.ID,
			&actor.Name,
			&actor.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		record.ActionKind = domain.ActionKind(action)
		record.EntityKind = domain.EntityKind(entity)
		if err := json.Unmarshal(metadata, &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal activity metadata: %w", err)
		}
		record.Actor = &actor
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}
	return records, nil
}
