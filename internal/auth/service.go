package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// ValidationError carries every violated input rule so the HTTP layer can
// return the full checklist in one response.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}

// Service orchestrates the user store, session store, hasher, and token
// issuer into the register/login/refresh/logout operations.
type Service struct {
	users    UserStore
	sessions SessionStore
	hasher   *Hasher
	tokens   *TokenIssuer
}

func NewService(users UserStore, sessions SessionStore, hasher *Hasher, tokens *TokenIssuer) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register creates a new account and opens its first session. Every
// validation failure is reported before any write happens.
func (s *Service) Register(ctx context.Context, email, password, fullName string) (AuthResult, error) {
	email = NormalizeEmail(email)

	var violations []string
	if !ValidateEmail(email) {
		violations = append(violations, "email format is invalid")
	}
	violations = append(violations, ValidatePassword(password)...)
	if len(violations) > 0 {
		return AuthResult{}, &ValidationError{Violations: violations}
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(fullName),
	})
	if err != nil {
		return AuthResult{}, err
	}

	return s.openSession(ctx, user)
}

// Login verifies credentials and opens an additional session. Unknown email
// and wrong password are deliberately indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself is not rotated: it stays usable until its original
// expiry or an explicit logout.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return "", ErrInvalidRefreshToken
	}

	session, err := s.sessions.FindValidRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidRefreshToken
		}
		return "", err
	}

	access, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return "", err
	}

	return access, nil
}

// Logout deletes the matching session. It succeeds even when the token is
// already gone, so repeated logouts are safe.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}

	_, err := s.sessions.DeleteRefreshToken(ctx, refreshToken)
	return err
}

// LogoutAll deletes every session for the user. The user id must come from
// verified access-token claims, never from client input.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	return s.sessions.DeleteUserRefreshTokens(ctx, userID)
}

func (s *Service) openSession(ctx context.Context, user User) (AuthResult, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return AuthResult{}, err
	}

	refresh, err := s.tokens.NewRefreshTokenValue()
	if err != nil {
		return AuthResult{}, err
	}

	expiresAt := s.tokens.RefreshTokenExpiry(time.Now())
	if _, err := s.sessions.CreateRefreshToken(ctx, user.ID, refresh, expiresAt); err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user.View(),
	}, nil
}
