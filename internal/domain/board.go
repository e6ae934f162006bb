package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Board is the top-level grouping. It exclusively owns its Lists and is the
// scope within which list positions must stay dense. Mutations are restricted
// to the owner; public boards are readable by any authenticated user.
type Board struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	IsPublic  bool      `json:"isPublic"`
	OwnerID   uuid.UUID `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewBoard creates a new Board owned by the given user.
// Returns an error if validation fails.
func NewBoard(ownerID uuid.UUID, title string, isPublic bool) (*Board, error) {
	now := time.Now().UTC()
	board := &Board{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		IsPublic:  isPublic,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := board.Validate(); err != nil {
		return nil, err
	}

	return board, nil
}

// Validate checks if the Board has valid data.
func (b *Board) Validate() error {
	if b.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if b.OwnerID == uuid.Nil {
		return NewValidationError("ownerId", "cannot be empty", ErrInvalidID)
	}
	if b.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyTitle)
	}
	return nil
}

// ReadableBy reports whether the given user may read the board.
func (b *Board) ReadableBy(userID uuid.UUID) bool {
	return b.IsPublic || b.OwnerID == userID
}

// OwnedBy reports whether the given user may mutate the board.
func (b *Board) OwnedBy(userID uuid.UUID) bool {
	return b.OwnerID == userID
}
