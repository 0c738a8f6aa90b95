package security

import (
	"errors"
	"strings"
	"unicode"
)

const (
	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
	// MinPasswordLength is the shortest password accepted at signup.
	MinPasswordLength = 6
)

var (
	// ErrPasswordTooShort is returned for passwords below MinPasswordLength runes.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrPasswordTooLong is returned for passwords above MaxPasswordBytes bytes.
	ErrPasswordTooLong = errors.New("password too long")
	// ErrPasswordInvalidChars is returned for passwords containing control characters.
	ErrPasswordInvalidChars = errors.New("password contains invalid characters")
)

// NormalizeEmail returns the canonical form of an email used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword checks a plaintext password against the signup policy.
// The length limit is in bytes because bcrypt truncates its input at 72 bytes.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}

	for _, char := range password {
		if unicode.IsControl(char) {
			return ErrPasswordInvalidChars
		}
	}

	return nil
}
