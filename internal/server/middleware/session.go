package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "medsupply_session"

// SessionTokens issues and validates signed session tokens (e.g. *security.TokenProvider).
type SessionTokens interface {
	IssueSession(sessionID string) (string, time.Time, error)
	ValidateSession(token string) (string, error)
}

// SessionID returns the session ID from a valid session cookie, or "".
// Forged or expired cookies are treated as absent.
func SessionID(c *gin.Context, tokens SessionTokens) string {
	raw, err := c.Cookie(SessionCookieName)
	if err != nil || raw == "" {
		return ""
	}
	sid, err := tokens.ValidateSession(raw)
	if err != nil {
		return ""
	}
	return sid
}

// SetSessionCookie writes an HttpOnly SameSite=Lax session cookie that expires at expiresAt.
func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", secure, true)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}
