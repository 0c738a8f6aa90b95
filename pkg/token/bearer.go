package token

import "strings"

const bearerPrefix = "bearer "

// FromAuthorizationHeader extracts the token from an "Authorization: Bearer <token>" value.
// The scheme is matched case-insensitively.
func FromAuthorizationHeader(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	tok := strings.TrimSpace(header[len(bearerPrefix):])
	return tok, tok != ""
}
