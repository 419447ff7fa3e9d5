package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/imageforge/caption-api/internal/domain"
	"github.com/imageforge/caption-api/internal/platform/logger"
	"github.com/imageforge/caption-api/internal/store"
)

// UserStore implements the store.UserStore interface using PostgreSQL.
type UserStore struct {
	db store.DBTX
}

// NewUserStore creates a new PostgreSQL implementation of store.UserStore.
// The database handle is initialized and managed by the caller.
func NewUserStore(db store.DBTX) *UserStore {
	return &UserStore{db: db}
}

// Ensure UserStore implements store.UserStore.
var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if user.HashedPassword == "" {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyHashedPassword)
	}

	query := `
		INSERT INTO users (user_token, username, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.UserToken,
		user.Username,
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrUsernameExists
		}
		log.Error("failed to create user", "username", user.Username, "error", err)
		return fmt.Errorf("failed to create user: %w", MapError(err))
	}

	return nil
}

// GetByUsername implements store.UserStore.GetByUsername.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT user_token, username, hashed_password, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	return s.getUser(ctx, query, username)
}

// GetByToken implements store.UserStore.GetByToken.
func (s *UserStore) GetByToken(ctx context.Context, userToken string) (*domain.User, error) {
	query := `
		SELECT user_token, username, hashed_password, created_at, updated_at
		FROM users
		WHERE user_token = $1
	`
	return s.getUser(ctx, query, userToken)
}

func (s *UserStore) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.UserToken,
		&user.Username,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", MapError(err))
	}

	return &user, nil
}

// UpdateUsername implements store.UserStore.UpdateUsername.
func (s *UserStore) UpdateUsername(ctx context.Context, userToken, username string) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE users
		SET username = $1, updated_at = NOW()
		WHERE user_token = $2
	`

	result, err := s.db.ExecContext(ctx, query, username, userToken)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrUsernameExists
		}
		log.Error("failed to update username", "user_token", userToken, "error", err)
		return fmt.Errorf("failed to update username: %w", MapError(err))
	}

	return checkAffected(result)
}

// UpdatePassword implements store.UserStore.UpdatePassword.
func (s *UserStore) UpdatePassword(ctx context.Context, userToken, hashedPassword string) error {
	log := logger.FromContext(ctx)

	if hashedPassword == "" {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrEmptyHashedPassword)
	}

	query := `
		UPDATE users
		SET hashed_password = $1, updated_at = NOW()
		WHERE user_token = $2
	`

	result, err := s.db.ExecContext(ctx, query, hashedPassword, userToken)
	if err != nil {
		log.Error("failed to update password", "user_token", userToken, "error", err)
		return fmt.Errorf("failed to update password: %w", MapError(err))
	}

	return checkAffected(result)
}

// checkAffected converts an update that matched no rows into
// store.ErrUserNotFound.
func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrUserNotFound
	}
	return nil
}
