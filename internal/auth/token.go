package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const refreshTokenBytes = 32

var ErrInvalidAccessToken = errors.New("invalid access token")

// TokenIssuer creates and verifies HS256 access tokens and generates the
// opaque values used for refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (t *TokenIssuer) IssueAccessToken(userID, email string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(t.accessTTL).Unix(),
		"typ":   "access",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	encoded, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return encoded, nil
}

// VerifyAccessToken returns the embedded claims, or ErrInvalidAccessToken on
// any tamper, malformed structure, wrong algorithm, or expiry. Callers must
// not surface the distinction to clients.
func (t *TokenIssuer) VerifyAccessToken(tokenStr string) (Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidAccessToken
	}

	if tokenType, _ := claims["typ"].(string); tokenType != "access" {
		return Claims{}, ErrInvalidAccessToken
	}

	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if userID == "" || email == "" {
		return Claims{}, ErrInvalidAccessToken
	}

	return Claims{UserID: userID, Email: email}, nil
}

// NewRefreshTokenValue produces an opaque 256-bit random value. Uniqueness is
// enforced by the session store's unique constraint, not here.
func (t *TokenIssuer) NewRefreshTokenValue() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (t *TokenIssuer) RefreshTokenExpiry(now time.Time) time.Time {
	return now.UTC().Add(t.refreshTTL)
}
