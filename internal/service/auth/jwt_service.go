package auth

import (
	"context"

	"github.com/google/uuid"
)

// Claims holds the identity extracted from a validated token.
type Claims struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// JWTService issues and validates the signed tokens that authenticate both
// HTTP requests and realtime connection handshakes. The core never trusts
// a connection before ValidateToken succeeds.
type JWTService interface {
	// GenerateToken creates a signed token carrying the user's identity.
	GenerateToken(ctx context.Context, userID uuid.UUID, email, name string) (string, error)

	// ValidateToken verifies a token's signature and expiry and returns
	// its claims. Returns ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}
