package report

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"compliance-api/internal/auth"
)

const (
	maxJSONBodyBytes = 1 << 20
	maxTitleLength   = 200
	maxTargetLength  = 500

	defaultPageLimit = 20
	maxPageLimit     = 100
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	limit := queryInt(r, "limit", defaultPageLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	reports, err := h.repo.List(r.Context(), claims.UserID, limit, offset)
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}

	writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	report, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to get report")
		return
	}

	if report.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, "report belongs to another user")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	input, ok := parseInput(w, r)
	if !ok {
		return
	}

	report, err := h.repo.Create(r.Context(), claims.UserID, input)
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing authorization token")
		return
	}

	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid report id")
		return
	}

	existing, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "report not found")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to delete report")
		return
	}
	if existing.UserID != claims.UserID {
		writeError(w, http.StatusForbidden, "report belongs to another user")
		return
	}

	if err := h.repo.Delete(r.Context(), id, claims.UserID); err != nil && !errors.Is(err, ErrNotFound) {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "failed to delete report")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func parseInput(w http.ResponseWriter, r *http.Request) (ReportInput, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var input ReportInput
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return ReportInput{}, false
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Target = strings.TrimSpace(input.Target)
	if input.Title == "" || utf8.RuneCountInString(input.Title) > maxTitleLength {
		writeError(w, http.StatusBadRequest, "title is required and must be at most 200 characters")
		return ReportInput{}, false
	}
	if utf8.RuneCountInString(input.Target) > maxTargetLength {
		writeError(w, http.StatusBadRequest, "target must be at most 500 characters")
		return ReportInput{}, false
	}
	if len(input.Payload) == 0 || !json.Valid(input.Payload) {
		writeError(w, http.StatusBadRequest, "payload must be a json value")
		return ReportInput{}, false
	}

	return input, true
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
