package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
)

// UserStore defines the persistence operations for user accounts.
type UserStore interface {
	// Create saves a new user. Returns ErrEmailExists when the email is
	// already registered.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	// Returns ErrUserNotFound if it does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List returns the public summaries of all users, for assignment
	// pickers.
	List(ctx context.Context) ([]domain.UserSummary, error)

	// WithTx returns a store instance bound to the given transaction.
	WithTx(tx *sql.Tx) UserStore
}
