package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for users.
var (
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrUsernameTooLong     = errors.New("username must be at most 64 characters long")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// User represents a registered user of the caption service.
//
// UserToken is the opaque server-minted identifier referenced by caption
// requests and persisted results. Username is the unique display name used
// to log in.
type User struct {
	UserToken      string    `json:"user_token"`
	Username       string    `json:"username"`
	Password       string    `json:"-"` // Plaintext, held only between registration and hashing
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User with a freshly minted user token. The caller is
// responsible for hashing the plaintext password before storing the user.
func NewUser(username, password string) (*User, error) {
	user := &User{
		UserToken: uuid.New().String(),
		Username:  username,
		Password:  password,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.UserToken == "" {
		return ErrEmptyUserToken
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}
	if len(u.Username) > 64 {
		return ErrUsernameTooLong
	}

	if u.Password != "" {
		// 72 bytes is bcrypt's practical input limit.
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Users loaded from the store carry only the hash.
		return ErrEmptyPassword
	}

	return nil
}
