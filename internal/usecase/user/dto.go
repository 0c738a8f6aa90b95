package user

import (
	"time"

	domain "user-auth-service/internal/domain/user"
)

// SignupRequest represents the request payload for registering a new user.
type SignupRequest struct {
	Name     string `validate:"required,min=3,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
}

// SigninRequest represents the request payload for signing in.
type SigninRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// UserResponse represents a user DTO for API responses.
// It never carries the password hash.
type UserResponse struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// SigninToken is returned after a successful signin.
type SigninToken = domain.SigninToken

// FindAllResponse represents the response payload for listing every user.
type FindAllResponse struct {
	Users []UserResponse
}
