package store

import (
	"context"

	"github.com/imageforge/caption-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user must already carry a
	// hashed password; plaintext passwords never reach the store.
	// Returns ErrUsernameExists if the username is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByUsername retrieves a user by their unique username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// GetByToken retrieves a user by their user token.
	// Returns ErrUserNotFound if the user does not exist.
	GetByToken(ctx context.Context, userToken string) (*domain.User, error)

	// UpdateUsername changes the display name of the user with the given
	// token. Returns ErrUserNotFound if the user does not exist and
	// ErrUsernameExists if the new name is already taken.
	UpdateUsername(ctx context.Context, userToken, username string) error

	// UpdatePassword replaces the stored password hash for the user with the
	// given token. Returns ErrUserNotFound if the user does not exist.
	UpdatePassword(ctx context.Context, userToken, hashedPassword string) error
}
