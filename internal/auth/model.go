package auth

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserView is the public shape of a user returned by register and login.
type UserView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName,omitempty"`
}

func (u User) View() UserView {
	return UserView{ID: u.ID, Email: u.Email, FullName: u.FullName}
}

type RefreshToken struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuthResult is what register and login hand back to the HTTP layer.
type AuthResult struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         UserView `json:"user"`
}

// Claims is the identity data carried inside a signed access token.
type Claims struct {
	UserID string
	Email  string
}
