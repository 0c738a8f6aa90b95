package middleware

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"user-auth-service/pkg/logger"
	"user-auth-service/pkg/token"
)

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	ParseAccessToken(tokenString string) (*token.Claims, error)
}

// AuthInterceptor requires a bearer token in the "authorization" metadata for
// the listed full method names. Other methods pass through untouched.
func AuthInterceptor(verifier TokenVerifier, log *zap.Logger, methods ...string) grpc.UnaryServerInterceptor {
	protected := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		protected[m] = struct{}{}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := protected[info.FullMethod]; !ok {
			return handler(ctx, req)
		}

		var raw string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get("authorization"); len(values) > 0 {
				raw, _ = token.FromAuthorizationHeader(values[0])
			}
		}
		if raw == "" {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}

		claims, err := verifier.ParseAccessToken(raw)
		if err != nil {
			logger.WithContext(ctx, log).Warn("rejected access token",
				zap.String("method", info.FullMethod),
				zap.Error(err),
			)
			if errors.Is(err, token.ErrTokenExpired) {
				return nil, status.Error(codes.Unauthenticated, "token expired")
			}
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}

		return handler(logger.ContextWithUserID(ctx, claims.UserID()), req)
	}
}
