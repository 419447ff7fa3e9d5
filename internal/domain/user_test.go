package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	user, err := NewUser("alice", "password123")
	require.NoError(t, err)

	assert.NotEmpty(t, user.UserToken)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "password123", user.Password)
	assert.Empty(t, user.HashedPassword)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestNewUserTokensUnique(t *testing.T) {
	first, err := NewUser("alice", "password123")
	require.NoError(t, err)
	second, err := NewUser("alice", "password123")
	require.NoError(t, err)

	assert.NotEqual(t, first.UserToken, second.UserToken)
}

func TestUserValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*User)
		wantErr error
	}{
		{name: "valid", mutate: func(u *User) {}, wantErr: nil},
		{name: "empty token", mutate: func(u *User) { u.UserToken = "" }, wantErr: ErrEmptyUserToken},
		{name: "empty username", mutate: func(u *User) { u.Username = "" }, wantErr: ErrEmptyUsername},
		{
			name:    "username too long",
			mutate:  func(u *User) { u.Username = strings.Repeat("a", 65) },
			wantErr: ErrUsernameTooLong,
		},
		{name: "password too short", mutate: func(u *User) { u.Password = "short" }, wantErr: ErrPasswordTooShort},
		{
			name:    "password too long",
			mutate:  func(u *User) { u.Password = strings.Repeat("a", 73) },
			wantErr: ErrPasswordTooLong,
		},
		{
			name:    "no password at all",
			mutate:  func(u *User) { u.Password = "" },
			wantErr: ErrEmptyPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{UserToken: "tok", Username: "alice", Password: "password123"}
			tt.mutate(user)

			err := user.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUserValidateHashedOnly(t *testing.T) {
	// A user loaded from storage has no plaintext password.
	user := &User{UserToken: "tok", Username: "alice", HashedPassword: "$2a$10$abcdefg"}
	assert.NoError(t, user.Validate())
}
