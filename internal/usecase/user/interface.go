package user

import "context"

// Usecase defines the interface for account business logic operations.
type Usecase interface {
	Signup(ctx context.Context, in SignupRequest) (*UserResponse, error)
	Signin(ctx context.Context, in SigninRequest) (*SigninToken, error)
	FindAll(ctx context.Context) (*FindAllResponse, error)
}
