package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"user-auth-service/internal/usecase/user"
	pkgerrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/logger"
)

// UserServiceGRPC implements the gRPC user service
type UserServiceGRPC struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserServiceGRPC creates a new gRPC user service server
func NewUserServiceGRPC(uc user.Usecase, log *zap.Logger) *UserServiceGRPC {
	return &UserServiceGRPC{uc: uc, log: log}
}

// Signup handles gRPC Signup request
func (s *UserServiceGRPC) Signup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.uc.Signup(ctx, user.SignupRequest{
		Name:     stringField(req, "name"),
		Email:    stringField(req, "email"),
		Password: stringField(req, "password"),
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.encode(ctx, userFields(*resp))
}

// Signin handles gRPC Signin request
func (s *UserServiceGRPC) Signin(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.uc.Signin(ctx, user.SigninRequest{
		Email:    stringField(req, "email"),
		Password: stringField(req, "password"),
	})
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return s.encode(ctx, map[string]any{
		"name":     resp.Name,
		"email":    resp.Email,
		"jwtToken": resp.JWTToken,
	})
}

// FindAll handles gRPC FindAll request. The request body is ignored.
func (s *UserServiceGRPC) FindAll(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.uc.FindAll(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	users := make([]any, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = userFields(u)
	}

	return s.encode(ctx, map[string]any{"users": users})
}

func (s *UserServiceGRPC) encode(ctx context.Context, fields map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(fields)
	if err != nil {
		logger.WithContext(ctx, s.log).Error("failed to encode response", zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return out, nil
}

// toStatus keeps typed errors' codes and hides everything else behind codes.Internal.
func (s *UserServiceGRPC) toStatus(ctx context.Context, err error) error {
	var st pkgerrors.GRPCStatuser
	if pkgerrors.As(err, &st) {
		return st.GRPCStatus().Err()
	}
	logger.WithContext(ctx, s.log).Error("unexpected error", zap.Error(err))
	return status.Error(codes.Internal, "internal server error")
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func userFields(u user.UserResponse) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"created_at": u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
