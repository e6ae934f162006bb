package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// List is an ordered column within a board. Position is a dense zero-based
// integer: for a board with N lists the committed positions are always
// exactly 0..N-1.
type List struct {
	ID        uuid.UUID `json:"id"`
	BoardID   uuid.UUID `json:"boardId"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewList creates a new List at the given position within a board.
// Returns an error if validation fails.
func NewList(boardID uuid.UUID, title string, position int) (*List, error) {
	now := time.Now().UTC()
	list := &List{
		ID:        uuid.New(),
		BoardID:   boardID,
		Title:     strings.TrimSpace(title),
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := list.Validate(); err != nil {
		return nil, err
	}

	return list, nil
}

// Validate checks if the List has valid data.
func (l *List) Validate() error {
	if l.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if l.BoardID == uuid.Nil {
		return NewValidationError("boardId", "cannot be empty", ErrInvalidID)
	}
	if l.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyTitle)
	}
	if l.Position < 0 {
		return NewValidationError("position", "cannot be negative", ErrInvalidPosition)
	}
	return nil
}
