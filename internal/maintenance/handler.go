package maintenance

import (
	"encoding/json"
	"net/http"
	"strings"

	"compliance-api/internal/auth"
	"compliance-api/internal/observability"
)

// CleanupHandler purges expired refresh-token rows. Expired rows are already
// invisible to lookups; this reclaims the storage. The endpoint is meant for
// a cron trigger and is guarded by a shared secret.
type CleanupHandler struct {
	sessions  auth.SessionStore
	logger    *observability.Logger
	secret    string
	batchSize int
}

func NewCleanupHandler(sessions auth.SessionStore, logger *observability.Logger, secret string, batchSize int) *CleanupHandler {
	return &CleanupHandler{
		sessions:  sessions,
		logger:    logger,
		secret:    strings.TrimSpace(secret),
		batchSize: batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) != h.secret {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	deleted, err := h.sessions.DeleteExpiredRefreshTokens(r.Context(), h.batchSize)
	if err != nil {
		h.logger.Error("session_cleanup_failed", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}

	h.logger.Info("session_cleanup_completed", map[string]any{
		"deleted_refresh_tokens": deleted,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"status":                 "ok",
		"deleted_refresh_tokens": deleted,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
