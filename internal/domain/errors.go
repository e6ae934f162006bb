// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPassword is returned when a password doesn't meet requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrEmptyTitle is returned when a required title is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrInvalidPosition is returned when a position value is negative.
	ErrInvalidPosition = errors.New("position cannot be negative")

	// ErrUnauthorized is returned when no valid actor is present.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrForbidden is returned when the actor is not permitted to perform
	// the operation, typically because they do not own the board.
	ErrForbidden = errors.New("forbidden operation")
)

// ValidationError carries the field that failed validation alongside the
// underlying sentinel error, so callers can both present a useful message
// and match with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Field + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Message
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
