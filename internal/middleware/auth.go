// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"errors"

	"rps_backend/internal/common"
	"rps_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionResolver reads and clears the session cookie.
type SessionResolver interface {
	Resolve(c *gin.Context) (string, bool)
	Revoke(c *gin.Context) error
}

// UserFinder loads a user without permission checks.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

// LoadCurrentUser resolves the session cookie into a *user.User and stores it
// under common.CurrentUserKey. It never rejects anonymous requests; gating is
// done by each operation. A session naming a user that no longer exists is
// revoked and the request proceeds anonymously.
func LoadCurrentUser(resolver SessionResolver, users UserFinder, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := resolver.Resolve(c)
		if !ok {
			c.Next()
			return
		}

		u, err := users.FindByID(c.Request.Context(), id)
		switch {
		case err == nil:
			c.Set(common.CurrentUserKey, u)
			logger.Debug("Session resolved", zap.String("userID", u.ID))
		case errors.Is(err, common.ErrNotFound):
			logger.Info("Session refers to a deleted user, revoking", zap.String("userID", id))
			if rerr := resolver.Revoke(c); rerr != nil {
				logger.Warn("Failed to revoke stale session", zap.Error(rerr))
			}
		default:
			logger.Error("Failed to load session user", zap.String("userID", id), zap.Error(err))
			common.RespondWithError(c, err)
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by LoadCurrentUser, or nil.
func CurrentUser(c *gin.Context) *user.User {
	val, exists := c.Get(common.CurrentUserKey)
	if !exists {
		return nil
	}
	u, ok := val.(*user.User)
	if !ok {
		return nil
	}
	return u
}
