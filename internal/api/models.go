package api

import (
	"github.com/google/uuid"

	"github.com/openkanban/board-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,min=1,max=100"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// CreateBoardRequest defines the payload for creating a board.
type CreateBoardRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	IsPublic bool   `json:"isPublic"`
}

// UpdateBoardRequest defines the payload for updating a board. Absent
// fields are left unchanged.
type UpdateBoardRequest struct {
	Title    *string `json:"title,omitempty"    validate:"omitempty,min=1,max=200"`
	IsPublic *bool   `json:"isPublic,omitempty"`
}

// CreateListRequest defines the payload for creating a list.
type CreateListRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// RenameListRequest defines the payload for renaming a list.
type RenameListRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// ReorderListRequest defines the payload for repositioning a list. The
// position may point past the end of the board; it is clamped, not
// rejected.
type ReorderListRequest struct {
	Position *int `json:"position" validate:"required"`
}

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=5000"`
}

// UpdateTaskRequest defines the payload for updating a task. Absent
// fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"       validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
}

// MoveTaskRequest defines the payload for moving a task within or across
// lists.
type MoveTaskRequest struct {
	ToListID uuid.UUID `json:"toListId" validate:"required"`
	Position *int      `json:"position" validate:"required"`
}

// AssignTaskRequest defines the payload for assigning a user to a task.
type AssignTaskRequest struct {
	UserID uuid.UUID `json:"userId" validate:"required"`
}
