package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventmanager/server/internal/auth"
	"github.com/jackc/pgx/v5"
)

var _ auth.Repository = (*AuthRepository)(nil)

func (r *AuthRepository) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT id, name, email, password_hash, roles
  FROM users
 WHERE email = $1
`, email)

	var user auth.User
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Roles); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (r *AuthRepository) SaveRefreshToken(ctx context.Context, token auth.RefreshToken) error {
	_, err := r.queryer().Exec(ctx, `
INSERT INTO refresh_tokens (token, expires_at, revoked, user_id)
VALUES ($1, $2, false, $3)
`, token.Token, token.ExpiresAt, token.UserID)
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken joins the owning user and filters out revoked rows, so a
// revoked token is indistinguishable from an absent one.
func (r *AuthRepository) GetRefreshToken(ctx context.Context, value string) (*auth.RefreshToken, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT t.token, t.expires_at, t.revoked, t.user_id,
       u.id, u.name, u.email, u.password_hash, u.roles
  FROM refresh_tokens t
  JOIN users u ON u.id = t.user_id
 WHERE t.token = $1
   AND NOT t.revoked
`, value)

	var (
		token     auth.RefreshToken
		user      auth.User
		expiresAt time.Time
	)
	err := row.Scan(
		&token.Token,
		&expiresAt,
		&token.Revoked,
		&token.UserID,
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Roles,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrTokenNotFound
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	token.ExpiresAt = expiresAt
	token.User = &user
	return &token, nil
}

// InvalidateRefreshToken flips revoked on a live row. The NOT revoked guard
// makes rotation single-winner under concurrent reuse: the row transitions
// false to true exactly once and only that caller sees revoked == true.
func (r *AuthRepository) InvalidateRefreshToken(ctx context.Context, value string) (bool, error) {
	tag, err := r.queryer().Exec(ctx, `
UPDATE refresh_tokens
   SET revoked = true
 WHERE token = $1
   AND NOT revoked
`, value)
	if err != nil {
		return false, fmt.Errorf("invalidate refresh token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
