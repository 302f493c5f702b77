package maintenance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"compliance-api/internal/auth"
	"compliance-api/internal/observability"
)

type stubSessionStore struct {
	deleted   int64
	deleteErr error
}

func (s *stubSessionStore) CreateRefreshToken(ctx context.Context, userID, tokenValue string, expiresAt time.Time) (auth.RefreshToken, error) {
	return auth.RefreshToken{}, nil
}

func (s *stubSessionStore) FindValidRefreshToken(ctx context.Context, tokenValue string) (auth.RefreshToken, error) {
	return auth.RefreshToken{}, auth.ErrTokenNotFound
}

func (s *stubSessionStore) DeleteRefreshToken(ctx context.Context, tokenValue string) (int64, error) {
	return 0, nil
}

func (s *stubSessionStore) DeleteUserRefreshTokens(ctx context.Context, userID string) error {
	return nil
}

func (s *stubSessionStore) DeleteExpiredRefreshTokens(ctx context.Context, batchSize int) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	return s.deleted, nil
}

func TestCleanupHiddenWithoutSecret(t *testing.T) {
	handler := NewCleanupHandler(&stubSessionStore{}, observability.NewLogger(), "", 500)

	req := httptest.NewRequest(http.MethodPost, "/internal/maintenance/cleanup", nil)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCleanupRejectsWrongSecret(t *testing.T) {
	handler := NewCleanupHandler(&stubSessionStore{}, observability.NewLogger(), "cron-secret", 500)

	req := httptest.NewRequest(http.MethodPost, "/internal/maintenance/cleanup", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCleanupReportsDeletedCount(t *testing.T) {
	store := &stubSessionStore{deleted: 42}
	handler := NewCleanupHandler(store, observability.NewLogger(), "cron-secret", 500)

	req := httptest.NewRequest(http.MethodPost, "/internal/maintenance/cleanup", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deleted_refresh_tokens":42`)
}

func TestCleanupSurfacesStoreFailure(t *testing.T) {
	store := &stubSessionStore{deleteErr: errors.New("db down")}
	handler := NewCleanupHandler(store, observability.NewLogger(), "cron-secret", 500)

	req := httptest.NewRequest(http.MethodPost, "/internal/maintenance/cleanup", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
