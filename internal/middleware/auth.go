package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/auth"
)

const identityKey = "identity"

type AdminAuthorizer interface {
	RequireAdmin(ctx context.Context, authorization string) (auth.Identity, error)
}

// AdminAuth runs the admin guard in front of a route group and stores the
// granted identity on the context.
func AdminAuth(guard AdminAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := guard.RequireAdmin(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(apperr.StatusOf(err), gin.H{"error": apperr.Message(err)})
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// Identity returns the identity stored by AdminAuth.
func Identity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
