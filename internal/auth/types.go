package auth

import (
	"errors"
	"regexp"
	"time"
)

// loginPattern defines the valid format for logins:
// alphanumeric, dots, hyphens, underscores, 3-64 characters.
var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,64}$`)

// IsValidLogin checks if a login meets format requirements.
func IsValidLogin(login string) bool {
	return loginPattern.MatchString(login)
}

// User represents an account. Admins review applications; regular users
// submit them and own the rooms provisioned from them.
type User struct {
	ID           int64     `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"` // never serialised
	FirstName    string    `json:"first_name,omitempty"`
	LastName     string    `json:"last_name,omitempty"`
	MiddleName   string    `json:"middle_name,omitempty"`
	IsActive     bool      `json:"is_active"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken represents a stored refresh token for session management.
// Only the SHA-256 hash of the raw token is persisted.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	TokenHash string    `json:"-"` // never serialised
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrLoginExists        = errors.New("login already exists")
	ErrInvalidLogin       = errors.New("invalid login format")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrForbidden          = errors.New("insufficient permissions")
)
