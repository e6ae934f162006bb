package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. The HashedPassword field is never
// serialized; credential verification happens in the auth service.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewUser creates a new User with the given name and email. The password
// hash is set separately by the caller after hashing.
// Returns an error if validation fails.
func NewUser(name, email string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(strings.ToLower(email)),
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrInvalidID)
	}
	if u.Name == "" {
		return NewValidationError("name", "cannot be empty", ErrValidation)
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return NewValidationError("email", "must be a valid address", ErrInvalidEmail)
	}
	return nil
}
