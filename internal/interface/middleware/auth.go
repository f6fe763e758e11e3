package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-jwt-account-service/internal/domain/account"
	"github.com/oksasatya/go-jwt-account-service/pkg/helpers"
	"github.com/oksasatya/go-jwt-account-service/pkg/response"
)

// Authenticator verifies a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*helpers.Claims, error)
}

// Auth requires a valid, unrevoked bearer token.
// It sets userID and claims in the Gin context on success.
func Auth(sessions Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "Not Found or Unauthorized", RequestName(c))
			return
		}
		claims, err := sessions.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, account.ErrUnauthenticated) {
				response.Abort(c, http.StatusUnauthorized, "Not Found or Unauthorized", RequestName(c))
				return
			}
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString(CtxRequestIDKey)).Error("authenticate failed")
			}
			response.Abort(c, http.StatusInternalServerError, "Internal Server Error", RequestName(c))
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxClaimsKey, claims)
		c.Next()
	}
}
