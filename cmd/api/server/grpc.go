package server

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpcadapter "user-auth-service/internal/adapter/grpc"
	"user-auth-service/internal/adapter/grpc/middleware"
	"user-auth-service/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(deps Deps, l *zap.Logger) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		logger.RequestIDInterceptor(),
		logger.UnaryLoggingInterceptor(l),
		deps.RateLimiter.UnaryInterceptor(),
	}
	if deps.ListAuth != nil {
		interceptors = append(interceptors, middleware.AuthInterceptor(deps.ListAuth, l, grpcadapter.FindAllMethod))
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors...),
	)
	grpcadapter.RegisterUserServiceServer(grpcServer, grpcadapter.NewUserServiceGRPC(deps.UserUC, l))

	return grpcServer
}
