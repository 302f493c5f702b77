package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyAccessToken(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := issuer.IssueAccessToken("user-1", "a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", -time.Minute, 7*24*time.Hour)

	token, err := issuer.IssueAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestVerifyAccessTokenWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)
	other := NewTokenIssuer("other-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := issuer.IssueAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestVerifyAccessTokenTampered(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := issuer.IssueAccessToken("user-1", "a@b.com")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + ".eyJzdWIiOiJ1c2VyLTIifQ." + parts[2]

	_, err = issuer.VerifyAccessToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)
}

func TestVerifyAccessTokenMalformed(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)

	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		_, err := issuer.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidAccessToken, token)
	}
}

func TestNewRefreshTokenValue(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)

	first, err := issuer.NewRefreshTokenValue()
	require.NoError(t, err)
	second, err := issuer.NewRefreshTokenValue()
	require.NoError(t, err)

	// 32 random bytes hex encoded
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}

func TestRefreshTokenExpiry(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 15*time.Minute, 7*24*time.Hour)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(7*24*time.Hour), issuer.RefreshTokenExpiry(now))
}
