package user

import "time"

// User represents a registered account.
// PasswordHash always holds a one-way hash; the plaintext password is never stored.
type User struct {
	ID           string    // ID is the unique identifier for the user (UUID)
	Name         string    // Name is the display name of the user
	Email        string    // Email is the unique, normalized email address used to sign in
	PasswordHash string    // PasswordHash is the bcrypt hash of the user's password
	CreatedAt    time.Time // CreatedAt is when the account was created
	UpdatedAt    time.Time // UpdatedAt is when the record was last written
}

// SigninToken is returned on a successful signin. It is never persisted.
type SigninToken struct {
	Name     string
	Email    string
	JWTToken string
}
