package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-auth-service/pkg/logger"
	"user-auth-service/pkg/token"
)

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	ParseAccessToken(tokenString string) (*token.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token. The token's
// subject is stored on the request context as the user ID.
func RequireAuth(verifier TokenVerifier, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := token.FromAuthorizationHeader(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "missing bearer token",
			})
			return
		}

		claims, err := verifier.ParseAccessToken(raw)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, token.ErrTokenExpired) {
				msg = "token expired"
			}
			logger.WithContext(c.Request.Context(), log).Warn("rejected access token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": msg,
			})
			return
		}

		c.Request = c.Request.WithContext(logger.ContextWithUserID(c.Request.Context(), claims.UserID()))
		c.Next()
	}
}
