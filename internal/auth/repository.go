package auth

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// Repository implements UserStore and SessionStore on Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, user User) (User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	now := time.Now().UTC()
	user.ID = id.String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, user.ID, user.Email, user.PasswordHash, user.FullName, user.IsVerified, now)
	if err != nil {
		// The unique constraint is the source of truth for duplicate emails:
		// a concurrent insert racing past the existence pre-check lands here.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, is_verified, created_at, updated_at
		FROM users
		WHERE email = $1
	`, email))
}

func (r *Repository) GetUserByID(ctx context.Context, id string) (User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, full_name, is_verified, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id))
}

func (r *Repository) scanUser(row *sql.Row) (User, error) {
	var user User
	var fullName sql.NullString
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &fullName, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("query user: %w", err)
	}
	user.FullName = fullName.String

	return user, nil
}

func (r *Repository) CreateRefreshToken(ctx context.Context, userID, tokenValue string, expiresAt time.Time) (RefreshToken, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return RefreshToken{}, fmt.Errorf("generate refresh token id: %w", err)
	}

	now := time.Now().UTC()
	record := RefreshToken{
		ID:        id.String(),
		UserID:    userID,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: now,
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, record.ID, userID, hashTokenValue(tokenValue), record.ExpiresAt, now)
	if err != nil {
		return RefreshToken{}, fmt.Errorf("insert refresh token: %w", err)
	}

	return record, nil
}

func (r *Repository) FindValidRefreshToken(ctx context.Context, tokenValue string) (RefreshToken, error) {
	var record RefreshToken
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
	`, hashTokenValue(tokenValue)).Scan(&record.ID, &record.UserID, &record.ExpiresAt, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RefreshToken{}, ErrTokenNotFound
		}
		return RefreshToken{}, fmt.Errorf("query refresh token: %w", err)
	}

	return record, nil
}

func (r *Repository) DeleteRefreshToken(ctx context.Context, tokenValue string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE token_hash = $1
	`, hashTokenValue(tokenValue))
	if err != nil {
		return 0, fmt.Errorf("delete refresh token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleted refresh token rows: %w", err)
	}

	return affected, nil
}

func (r *Repository) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM refresh_tokens
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("delete user refresh tokens: %w", err)
	}

	return nil
}

func (r *Repository) DeleteExpiredRefreshTokens(ctx context.Context, batchSize int) (int64, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	res, err := r.db.ExecContext(ctx, `
		WITH expired AS (
			SELECT id
			FROM refresh_tokens
			WHERE expires_at < NOW()
			ORDER BY created_at ASC
			LIMIT $1
		)
		DELETE FROM refresh_tokens t
		USING expired
		WHERE t.id = expired.id
	`, batchSize)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired refresh token rows: %w", err)
	}

	return affected, nil
}

// Refresh tokens are stored hashed so a leaked database dump cannot be
// replayed against the API.
func hashTokenValue(tokenValue string) string {
	sum := sha256.Sum256([]byte(tokenValue))
	return hex.EncodeToString(sum[:])
}
