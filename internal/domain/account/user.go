package account

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

const minPasswordLength = 8

var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrWeakPassword    = errors.New("password must be at least 8 characters")
	ErrNameRequired    = errors.New("name is required")
	ErrEmailTaken      = errors.New("email already registered")
	ErrAccountDisabled = errors.New("account is disabled")

	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// User is a registered account. PasswordHash is never exposed to transport.
type User struct {
	ID           string
	Email        string
	Name         string
	AvatarURL    string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail lowercases and trims an email for lookup and storage.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// ValidateEmail checks the address shape used at registration.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePassword enforces the minimum credential strength.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
