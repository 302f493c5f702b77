package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrTokenNotFound = errors.New("refresh token not found")
)

// UserStore persists user identity records keyed by unique email.
type UserStore interface {
	// CreateUser inserts a new user. Returns ErrEmailTaken when the email is
	// already registered, including when a concurrent insert wins the race.
	CreateUser(ctx context.Context, user User) (User, error)

	// GetUserByEmail looks up a user by normalized email.
	// Returns ErrUserNotFound when no such user exists.
	GetUserByEmail(ctx context.Context, email string) (User, error)

	// GetUserByID returns ErrUserNotFound when no such user exists.
	GetUserByID(ctx context.Context, id string) (User, error)
}

// SessionStore persists refresh tokens keyed by their opaque value.
type SessionStore interface {
	// CreateRefreshToken stores a new session for the user.
	CreateRefreshToken(ctx context.Context, userID, tokenValue string, expiresAt time.Time) (RefreshToken, error)

	// FindValidRefreshToken looks up a non-expired token by value. An expired
	// row is indistinguishable from a missing one: both return ErrTokenNotFound.
	FindValidRefreshToken(ctx context.Context, tokenValue string) (RefreshToken, error)

	// DeleteRefreshToken removes the matching session and reports how many
	// rows were deleted. Deleting an unknown value is not an error.
	DeleteRefreshToken(ctx context.Context, tokenValue string) (int64, error)

	// DeleteUserRefreshTokens removes every session for the user.
	DeleteUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens purges up to batchSize expired rows and
	// reports how many were removed.
	DeleteExpiredRefreshTokens(ctx context.Context, batchSize int) (int64, error)
}
