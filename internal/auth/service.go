package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ErrUnauthenticated covers every credential or token problem: unknown user,
// wrong password, absent, revoked, or expired refresh token. Callers get one
// error kind so responses never reveal which check failed.
var ErrUnauthenticated = errors.New("unauthenticated")

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service implements the access/refresh token lifecycle: issuance on login,
// single-use rotation on refresh, revocation on logout.
type Service struct {
	issuer          *TokenIssuer
	repo            Repository
	refreshLifetime time.Duration
	logger          zerolog.Logger

	now func() time.Time
}

func NewService(issuer *TokenIssuer, repo Repository, refreshLifetime time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		issuer:          issuer,
		repo:            repo,
		refreshLifetime: refreshLifetime,
		logger:          logger.With().Str("component", "auth").Logger(),
		now:             time.Now,
	}
}

// Login verifies the credentials and returns a fresh token pair. Unknown
// email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.Warn().Str("email", email).Msg("login failed: invalid credentials")
			return TokenPair{}, ErrUnauthenticated
		}
		return TokenPair{}, fmt.Errorf("look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Warn().Str("email", email).Msg("login failed: invalid credentials")
		return TokenPair{}, ErrUnauthenticated
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return TokenPair{}, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("login succeeded")
	return pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued for the same user. A refresh token is single-use; any reuse
// after rotation fails with ErrUnauthenticated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	token, err := s.lookupUsableToken(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}

	revoked, err := s.repo.InvalidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("invalidate refresh token: %w", err)
	}
	if !revoked {
		// Lost the race against a concurrent refresh of the same value.
		s.logger.Warn().Str("user_id", token.UserID).Msg("refresh failed: token already rotated")
		return TokenPair{}, ErrUnauthenticated
	}

	pair, err := s.issueTokens(ctx, token.User)
	if err != nil {
		return TokenPair{}, err
	}

	s.logger.Info().Str("user_id", token.UserID).Msg("refresh token rotated")
	return pair, nil
}

// Logout revokes the refresh token. Revoking is idempotent at the store, but
// a token that is absent, revoked, or expired fails the same way Refresh does.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	token, err := s.lookupUsableToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if _, err := s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("invalidate refresh token: %w", err)
	}

	s.logger.Info().Str("user_id", token.UserID).Msg("logged out, refresh token revoked")
	return nil
}

func (s *Service) lookupUsableToken(ctx context.Context, value string) (*RefreshToken, error) {
	token, err := s.repo.GetRefreshToken(ctx, value)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			s.logger.Warn().Msg("refresh token invalid or revoked")
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("look up refresh token: %w", err)
	}
	if !token.Valid(s.now()) {
		s.logger.Warn().Str("user_id", token.UserID).Msg("refresh token expired")
		return nil, ErrUnauthenticated
	}
	if token.User == nil {
		return nil, fmt.Errorf("refresh token row missing joined user")
	}
	return token, nil
}

func (s *Service) issueTokens(ctx context.Context, user *User) (TokenPair, error) {
	accessToken, err := s.issuer.Issue(user, user.Roles)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}

	refreshValue, err := NewRefreshTokenValue()
	if err != nil {
		return TokenPair{}, err
	}

	err = s.repo.SaveRefreshToken(ctx, RefreshToken{
		Token:     refreshValue,
		ExpiresAt: s.now().Add(s.refreshLifetime),
		UserID:    user.ID,
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshValue}, nil
}

// NewRefreshTokenValue returns 256 bits from crypto/rand, base64-encoded.
func NewRefreshTokenValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}
