package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	mu     sync.Mutex
	users  map[string]*User
	tokens map[string]*RefreshToken
}

func newFakeRepo(users ...*User) *fakeRepo {
	repo := &fakeRepo{
		users:  make(map[string]*User),
		tokens: make(map[string]*RefreshToken),
	}
	for _, u := range users {
		repo.users[u.Email] = u
	}
	return repo
}

func (r *fakeRepo) GetUserByEmail(_ context.Context, email string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *fakeRepo) SaveRefreshToken(_ context.Context, token RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := token
	for _, u := range r.users {
		if u.ID == token.UserID {
			stored.User = u
		}
	}
	r.tokens[token.Token] = &stored
	return nil
}

func (r *fakeRepo) GetRefreshToken(_ context.Context, value string) (*RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[value]
	if !ok || token.Revoked {
		return nil, ErrTokenNotFound
	}
	copied := *token
	return &copied, nil
}

func (r *fakeRepo) InvalidateRefreshToken(_ context.Context, value string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[value]
	if !ok || token.Revoked {
		return false, nil
	}
	token.Revoked = true
	return true, nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	user := &User{
		ID:           "6f1c2a34-9cde-4b11-8f5a-0f4b6f2d9c01",
		Name:         "user",
		Email:        "user@user.com",
		PasswordHash: hashPassword(t, "User123"),
		Roles:        []string{"User"},
	}
	repo := newFakeRepo(user)
	issuer := NewTokenIssuer("secret", "issuer", "audience", 15*time.Minute)
	svc := NewService(issuer, repo, 7*24*time.Hour, zerolog.Nop())
	return svc, repo
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, repo := newTestService(t)

	pair, err := svc.Login(context.Background(), "user@user.com", "User123")

	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	stored, err := repo.GetRefreshToken(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "6f1c2a34-9cde-4b11-8f5a-0f4b6f2d9c01", stored.UserID)
	require.False(t, stored.Revoked)
	require.True(t, stored.ExpiresAt.After(time.Now()))
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "user@user.com", "Wrong123")

	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody@user.com", "User123")

	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestService(t)
	pair, err := svc.Login(context.Background(), "user@user.com", "User123")
	require.NoError(t, err)

	rotated, err := svc.Refresh(context.Background(), pair.RefreshToken)

	require.NoError(t, err)
	require.NotEmpty(t, rotated.AccessToken)
	require.NotEmpty(t, rotated.RefreshToken)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
}

func TestRefreshIsSingleUse(t *testing.T) {
	svc, _ := newTestService(t)
	pair, err := svc.Login(context.Background(), "user@user.com", "User123")
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	// Replaying the rotated token must fail.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Refresh(context.Background(), "never-issued")

	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestRefreshExpiredToken(t *testing.T) {
	svc, repo := newTestService(t)
	pair, err := svc.Login(context.Background(), "user@user.com", "User123")
	require.NoError(t, err)

	repo.mu.Lock()
	repo.tokens[pair.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)
	repo.mu.Unlock()

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)

	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _ := newTestService(t)
	pair, err := svc.Login(context.Background(), "user@user.com", "User123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.RefreshToken))

	// Neither refresh nor a second logout may succeed afterwards.
	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthenticated)
	require.ErrorIs(t, svc.Logout(context.Background(), pair.RefreshToken), ErrUnauthenticated)
}

func TestLogoutUnknownToken(t *testing.T) {
	svc, _ := newTestService(t)

	require.ErrorIs(t, svc.Logout(context.Background(), "never-issued"), ErrUnauthenticated)
}

func TestRefreshTokenValueEntropy(t *testing.T) {
	first, err := NewRefreshTokenValue()
	require.NoError(t, err)
	second, err := NewRefreshTokenValue()
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.GreaterOrEqual(t, len(first), 44) // base64 of 32 bytes
}

func TestRefreshTokenValidPredicate(t *testing.T) {
	now := time.Now()
	token := &RefreshToken{ExpiresAt: now.Add(time.Hour)}

	require.True(t, token.Valid(now))
	require.False(t, token.Valid(now.Add(2*time.Hour)))

	token.Revoked = true
	require.False(t, token.Valid(now))
}
