package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
	}{
		{name: "already normalized", email: "a@x.com", expected: "a@x.com"},
		{name: "upper case", email: "Ann@X.COM", expected: "ann@x.com"},
		{name: "surrounding spaces", email: "  a@x.com\t", expected: "a@x.com"},
		{name: "empty", email: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeEmail(tt.email))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		expected error
	}{
		{name: "valid simple password", password: "secret"},
		{name: "valid with punctuation", password: "s3cr3t!#%&"},
		{name: "valid unicode", password: "pässwörd"},
		{name: "valid at byte limit", password: strings.Repeat("a", MaxPasswordBytes)},
		{name: "empty", password: "", expected: ErrPasswordTooShort},
		{name: "too short", password: "abc", expected: ErrPasswordTooShort},
		{name: "too long", password: strings.Repeat("a", MaxPasswordBytes+1), expected: ErrPasswordTooLong},
		// 37 two-byte runes pass a rune count check but exceed bcrypt's byte limit
		{name: "multibyte over byte limit", password: strings.Repeat("é", 37), expected: ErrPasswordTooLong},
		{name: "control character", password: "secret\x00pw", expected: ErrPasswordInvalidChars},
		{name: "newline", password: "secret\npw", expected: ErrPasswordInvalidChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}
