package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-auth-service/internal/usecase/user"
	pkgerrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// SignupRequest represents the HTTP request body for registering a user.
// Field rules are enforced by the usecase so both transports report them the same way.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest represents the HTTP request body for signing in
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// SigninResponse represents the HTTP response for a successful signin
type SigninResponse struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	JWTToken string `json:"jwtToken"`
}

// FindAllResponse represents the HTTP response for listing users
type FindAllResponse struct {
	Users []UserResponse `json:"users"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Signup handles POST /v1/users/signup
func (h *UserHandler) Signup(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid signup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return
	}

	log.Info("Gin Signup request", zap.String("name", req.Name), zap.String("email", req.Email))

	resp, err := h.uc.Signup(ctx, user.SignupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log.Warn("Gin Signup failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(*resp))
}

// Signin handles POST /v1/users/signin
func (h *UserHandler) Signin(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.WithContext(ctx, h.log)

	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid signin request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be valid JSON",
		})
		return
	}

	log.Info("Gin Signin request", zap.String("email", req.Email))

	resp, err := h.uc.Signin(ctx, user.SigninRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log.Warn("Gin Signin failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, SigninResponse{
		Name:     resp.Name,
		Email:    resp.Email,
		JWTToken: resp.JWTToken,
	})
}

// FindAll handles GET /v1/users
func (h *UserHandler) FindAll(c *gin.Context) {
	ctx := c.Request.Context()

	resp, err := h.uc.FindAll(ctx)
	if err != nil {
		logger.WithContext(ctx, h.log).Error("Gin FindAll failed", zap.Error(err))
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toUserResponse(u)
	}

	c.JSON(http.StatusOK, FindAllResponse{Users: users})
}

func toUserResponse(u user.UserResponse) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// handleError converts usecase errors to appropriate HTTP responses
func (h *UserHandler) handleError(c *gin.Context, err error) {
	status, body := ErrorToHTTP(err)
	c.JSON(status, body)
}

// ErrorToHTTP maps typed errors from pkg/errors to a status code and body.
// Anything untyped is reported as an internal error without details.
func ErrorToHTTP(err error) (int, ErrorResponse) {
	var (
		validationErr   *pkgerrors.ValidationError
		notFoundErr     *pkgerrors.NotFoundError
		unauthorizedErr *pkgerrors.UnauthorizedError
		existsErr       *pkgerrors.AlreadyExistsError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: validationErr.Error()}
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, ErrorResponse{Error: "not_found", Message: notFoundErr.Error()}
	case errors.As(err, &unauthorizedErr):
		return http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: unauthorizedErr.Error()}
	case errors.As(err, &existsErr):
		return http.StatusConflict, ErrorResponse{Error: "already_exists", Message: existsErr.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}
	}
}
