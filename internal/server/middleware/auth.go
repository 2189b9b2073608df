package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"medsupply/internal/identity/service"
)

const authContextKey = "medsupply.auth"

// Authenticator resolves a session ID to a fully authenticated identity (e.g. *service.AuthService).
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*service.AuthContext, error)
}

// RequireFullyAuthenticated rejects requests whose session has not completed both
// the password and the OTP step. Rejections are 401 with a redirect hint to /login.
// On success the identity is stored on the gin context and in the request context.
func RequireFullyAuthenticated(tokens SessionTokens, auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := SessionID(c, tokens)
		if sid == "" {
			abortUnauthenticated(c)
			return
		}
		ac, err := auth.Authenticate(c.Request.Context(), sid)
		if err != nil {
			if errors.Is(err, service.ErrNotAuthenticated) {
				abortUnauthenticated(c)
				return
			}
			log.Printf("auth: authenticate session failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		SetAuthContext(c, ac)
		c.Next()
	}
}

// SetAuthContext attaches ac to the gin context and its IDs to the request context.
func SetAuthContext(c *gin.Context, ac *service.AuthContext) {
	c.Set(authContextKey, ac)
	c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), ac.User.ID, ac.Session.ID))
}

// AuthFromContext returns the identity set by RequireFullyAuthenticated.
func AuthFromContext(c *gin.Context) (*service.AuthContext, bool) {
	v, ok := c.Get(authContextKey)
	if !ok {
		return nil, false
	}
	ac, ok := v.(*service.AuthContext)
	return ac, ok && ac != nil
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    "authentication required",
		"redirect": "/login",
	})
}
