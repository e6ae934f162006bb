package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/openkanban/board-api/internal/domain"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 8

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	// Hash returns the bcrypt hash of a password.
	Hash(password string) (string, error)

	// Verify compares a password against its stored hash.
	// Returns ErrInvalidCredentials on mismatch.
	Verify(password, hash string) error
}

// bcryptHasher implements PasswordHasher using golang.org/x/crypto/bcrypt.
type bcryptHasher struct {
	cost int
}

// Ensure bcryptHasher implements PasswordHasher.
var _ PasswordHasher = (*bcryptHasher)(nil)

// NewPasswordHasher creates a bcrypt-backed password hasher. A cost of 0
// selects the bcrypt default.
func NewPasswordHasher(cost int) PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

// Hash implements PasswordHasher.Hash.
func (h *bcryptHasher) Hash(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", domain.NewValidationError(
			"password",
			fmt.Sprintf("must be at least %d characters", minPasswordLength),
			domain.ErrInvalidPassword,
		)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify implements PasswordHasher.Verify.
func (h *bcryptHasher) Verify(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
