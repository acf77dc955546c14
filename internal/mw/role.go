package mw

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"pilot-logbook-backend/internal/model"
	"pilot-logbook-backend/internal/store"
)

// UserIDHeader carries the id of the acting user.
const UserIDHeader = "X-User-ID"

const userKey = "mw.user"

// UserLookup resolves a user by id.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
}

// RequireRole only lets requests through whose acting user, as stored, has
// one of the given roles. The role itself is never read from the request.
func RequireRole(users UserLookup, roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(UserIDHeader)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": UserIDHeader + " header is required"})
			return
		}

		user, err := users.GetUser(c.Request.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if !slices.Contains(roles, user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role " + string(user.Role) + " may not perform this action"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by RequireRole, if any.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok
}
