// Package auth provides credential verification for HTTP requests and
// realtime connections: JWT issuance/validation and password hashing.
package auth

import "errors"

// Authentication errors.
var (
	// ErrInvalidToken is returned when a token fails signature or claims
	// validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token is past its expiry.
	ErrExpiredToken = errors.New("expired token")

	// ErrMissingToken is returned when no credential is present on the
	// request or connection handshake.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidCredentials is returned when an email/password pair does
	// not match a registered user.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
