package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *mockUserStore, *mockSessionStore, *TokenIssuer) {
	t.Helper()

	users := newMockUserStore()
	sessions := newMockSessionStore()
	service := newTestService(users, sessions)
	handler := NewHandler(service)
	tokens := service.tokens

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", handler.Register)
	mux.HandleFunc("POST /auth/login", handler.Login)
	mux.HandleFunc("POST /auth/refresh", handler.Refresh)
	mux.HandleFunc("POST /auth/logout", handler.Logout)
	mux.Handle("POST /auth/logout-all", Middleware(tokens, http.HandlerFunc(handler.LogoutAll)))

	return mux, users, sessions, tokens
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	return rec
}

func decodeAuthResult(t *testing.T, rec *httptest.ResponseRecorder) AuthResult {
	t.Helper()

	var result AuthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func TestAuthFlowEndToEnd(t *testing.T) {
	mux, _, _, _ := newTestRouter(t)

	// register
	rec := doJSON(t, mux, http.MethodPost, "/auth/register", map[string]string{
		"email":    "a@b.com",
		"password": "Passw0rd",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	registered := decodeAuthResult(t, rec)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.Equal(t, "a@b.com", registered.User.Email)

	// login with the right password
	rec = doJSON(t, mux, http.MethodPost, "/auth/login", map[string]string{
		"email":    "a@b.com",
		"password": "Passw0rd",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	loggedIn := decodeAuthResult(t, rec)
	assert.NotEqual(t, registered.RefreshToken, loggedIn.RefreshToken)

	// login with the wrong password: generic message, no enumeration
	rec = doJSON(t, mux, http.MethodPost, "/auth/login", map[string]string{
		"email":    "a@b.com",
		"password": "wrong",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")

	// refresh issues a new access token and keeps the refresh token alive
	rec = doJSON(t, mux, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": loggedIn.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.NotEmpty(t, refreshed["accessToken"])

	rec = doJSON(t, mux, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": loggedIn.RefreshToken,
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// logout kills the session, the same token now fails with 401
	rec = doJSON(t, mux, http.MethodPost, "/auth/logout", map[string]string{
		"refreshToken": loggedIn.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)

	rec = doJSON(t, mux, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": loggedIn.RefreshToken,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterHandlerReturnsAllViolations(t *testing.T) {
	mux, _, _, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/auth/register", map[string]string{
		"email":    "not-an-email",
		"password": "weak",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
	assert.Len(t, body.Details, 4)
}

func TestRegisterHandlerDuplicateEmailConflict(t *testing.T) {
	mux, _, _, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/auth/register", map[string]string{
		"email":    "A@B.com",
		"password": "Passw0rd",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, mux, http.MethodPost, "/auth/register", map[string]string{
		"email":    "a@b.com",
		"password": "Passw0rd",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogoutHandlerIsIdempotent(t *testing.T) {
	mux, _, _, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/auth/logout", map[string]string{
		"refreshToken": "never-issued",
	}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestLogoutAllRequiresAuthAndUsesClaims(t *testing.T) {
	mux, _, sessions, _ := newTestRouter(t)

	rec := doJSON(t, mux, http.MethodPost, "/auth/register", map[string]string{
		"email":    "a@b.com",
		"password": "Passw0rd",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	registered := decodeAuthResult(t, rec)

	rec = doJSON(t, mux, http.MethodPost, "/auth/login", map[string]string{
		"email":    "a@b.com",
		"password": "Passw0rd",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, sessions.sessions, 2)

	// no bearer token: rejected before any deletion
	rec = doJSON(t, mux, http.MethodPost, "/auth/logout-all", map[string]string{}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, sessions.sessions, 2)

	rec = doJSON(t, mux, http.MethodPost, "/auth/logout-all", map[string]string{}, registered.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, sessions.sessions)

	rec = doJSON(t, mux, http.MethodPost, "/auth/refresh", map[string]string{
		"refreshToken": registered.RefreshToken,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandlersRejectMalformedJSON(t *testing.T) {
	mux, _, _, _ := newTestRouter(t)

	for _, path := range []string{"/auth/register", "/auth/login", "/auth/refresh", "/auth/logout"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}
