// Package auth provides token issuance/verification and password hashing
// for the caption service.
package auth

import (
	"context"
	"errors"
)

// Common errors returned by the JWT service.
var (
	// ErrInvalidToken is returned when a token is malformed, has a bad
	// signature, or otherwise fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token expired")
)

// Claims holds the validated identity carried by a token.
type Claims struct {
	// UserToken is the opaque identifier of the authenticated user.
	UserToken string
}

// JWTService issues and verifies the bearer tokens used to authenticate
// API calls. VerifyUserToken is the boolean form consulted by the enqueue
// path before a request ever reaches the queue.
type JWTService interface {
	// GenerateToken creates a signed token embedding the user token.
	GenerateToken(ctx context.Context, userToken string) (string, error)

	// ValidateToken verifies a token and returns its claims.
	// Returns ErrExpiredToken or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, token string) (*Claims, error)

	// VerifyUserToken reports whether the token identifies a valid user.
	VerifyUserToken(ctx context.Context, token string) bool
}
