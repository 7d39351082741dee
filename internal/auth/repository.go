package auth

import (
	"context"
	"errors"
	"time"
)

// User is owned by the identity subsystem; this package only reads it.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Roles        []string
}

// RefreshToken is an opaque single-use credential. The value itself is the
// lookup key; rows are never deleted, only flagged revoked.
type RefreshToken struct {
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	UserID    string
	User      *User
}

// Valid reports whether the token is usable at the given instant.
func (t *RefreshToken) Valid(now time.Time) bool {
	return t != nil && !t.Revoked && now.Before(t.ExpiresAt)
}

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrTokenNotFound = errors.New("refresh token not found")
)

// Repository is the persistence surface the authentication service needs.
// Implemented by storage/postgres.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	SaveRefreshToken(ctx context.Context, token RefreshToken) error
	// GetRefreshToken returns the token row joined with its user. Revoked
	// rows are filtered out; expiry is the caller's concern.
	GetRefreshToken(ctx context.Context, value string) (*RefreshToken, error)
	// InvalidateRefreshToken sets revoked = true on a not-yet-revoked row
	// and reports whether such a row matched. Revoking an already-revoked
	// token is not an error; under concurrent reuse of one token value
	// exactly one caller sees revoked == true.
	InvalidateRefreshToken(ctx context.Context, value string) (revoked bool, err error)
}
