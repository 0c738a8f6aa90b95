package user

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	domain "user-auth-service/internal/domain/user"
	pkgerrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/logger"
	"user-auth-service/pkg/security"

	"github.com/go-playground/validator/v10"
)

// Repository defines the user store operations the usecase relies on.
// Implementations must enforce email uniqueness and report violations
// as *errors.AlreadyExistsError.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)   // Create a new user, returning the saved record
	GetByEmail(ctx context.Context, email string) (*domain.User, error) // Retrieve user by email, nil when absent
	FindAll(ctx context.Context) ([]domain.User, error)                 // Retrieve every user
}

// PasswordHasher hashes passwords and verifies candidates against stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	CreateAccessToken(ctx context.Context, userID string) (string, error)
}

// Service implements signup, signin and listing of users.
type Service struct {
	repo     Repository          // Repository for data access
	hasher   PasswordHasher      // One-way password hashing
	issuer   TokenIssuer         // Access token minting
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

var _ Usecase = (*Service)(nil)

// New creates a new Service with its collaborators.
func New(r Repository, h PasswordHasher, i TokenIssuer, log *zap.Logger) *Service {
	return &Service{repo: r, hasher: h, issuer: i, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a human-readable error.
func formatValidationError(err error) error {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, e := range validationErrors {
			switch e.Tag() {
			case "required":
				messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
			case "email":
				messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
			case "min":
				messages = append(messages, fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			default:
				messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
			}
		}
		return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
	}
	return pkgerrors.NewValidationError("", err.Error())
}

// Signup registers a new user. The password is hashed before it reaches the store.
func (uc *Service) Signup(ctx context.Context, in SignupRequest) (*UserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	in.Email = security.NormalizeEmail(in.Email)

	log.Info("signing up user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := security.ValidatePassword(in.Password); err != nil {
		log.Warn("password rejected by policy", zap.Error(err))
		return nil, pkgerrors.NewValidationError("Password", err.Error())
	}

	hash, err := uc.hasher.Hash(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to hash password", err)
	}

	created, err := uc.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		log.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}

	log.Info("user signed up", zap.String("id", created.ID))
	return toUserResponse(created), nil
}

// Signin verifies the email/password pair and issues an access token.
// It never mutates state.
func (uc *Service) Signin(ctx context.Context, in SigninRequest) (*SigninToken, error) {
	log := logger.WithContext(ctx, uc.log)
	in.Email = security.NormalizeEmail(in.Email)

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.findByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}

	if err := uc.checkPassword(in.Password, u); err != nil {
		log.Warn("signin rejected", zap.String("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	jwtToken, err := uc.issuer.CreateAccessToken(ctx, u.ID)
	if err != nil {
		log.Error("failed to create access token", zap.String("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	log.Info("user signed in", zap.String("user_id", u.ID))
	return &SigninToken{
		Name:     u.Name,
		Email:    u.Email,
		JWTToken: jwtToken,
	}, nil
}

// FindAll returns every user, unfiltered and unpaginated.
func (uc *Service) FindAll(ctx context.Context) (*FindAllResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	domainUsers, err := uc.repo.FindAll(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, err
	}

	users := make([]UserResponse, len(domainUsers))
	for i := range domainUsers {
		users[i] = *toUserResponse(&domainUsers[i])
	}

	log.Debug("listed users", zap.Int("count", len(users)))
	return &FindAllResponse{Users: users}, nil
}

func (uc *Service) findByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		uc.log.Error("failed to look up user by email", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	if u == nil {
		uc.log.Warn("signin for unknown email", zap.String("email", email))
		return nil, pkgerrors.NewNotFoundError("user", "email not found")
	}
	return u, nil
}

func (uc *Service) checkPassword(password string, u *domain.User) error {
	if u.PasswordHash == "" {
		return pkgerrors.NewUnauthorizedError("invalid credentials")
	}
	if !uc.hasher.Compare(password, u.PasswordHash) {
		return pkgerrors.NewUnauthorizedError("password is incorrect")
	}
	return nil
}

func toUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
