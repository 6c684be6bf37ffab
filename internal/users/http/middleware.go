package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/familyvault/vault/internal/errors"
	"github.com/familyvault/vault/internal/httputil"
	usersUseCase "github.com/familyvault/vault/internal/users/usecase"
)

// SessionMiddleware authenticates requests via Bearer session token in the
// Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Resolves it to a user via userUseCase.Authenticate()
// 3. Stores the user ID in the request context for GetUserID()
//
// Error handling:
//   - Missing/malformed Authorization header → 401 Unauthorized
//   - Unknown or expired session → 401 Unauthorized
//   - Other errors → 500 Internal Server Error
func SessionMiddleware(userUseCase usersUseCase.UserUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token := authHeader[len(bearerPrefix):]
		if token == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		userID, err := userUseCase.Authenticate(c.Request.Context(), token)
		if err != nil {
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}
