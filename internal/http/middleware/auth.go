// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the session gate: every endpoint that requires
// authentication runs RequireSession, which accepts the session credential
// from either of two transports and verifies it in-memory (no store
// round-trip).
//
// Credential sources, checked in order:
//  1. the session cookie (browser clients)
//  2. the Authorization: Bearer header (webviews and mobile clients that
//     cannot rely on persistent cookies)
//
// Both transports are handled identically by every gated endpoint. A missing
// credential and an invalid/expired one both produce a 401 rejection with no
// partial access; the error codes differ so clients can distinguish "log in"
// from "session expired".
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// userIDKey is the Gin context key under which the authenticated user id is
// stored for downstream handlers, loggers, and rate-limit keying.
const userIDKey = "userID"

// SessionVerifier validates a session token and yields the embedded user id.
type SessionVerifier interface {
	// Verify checks signature and expiry of a compact session token.
	Verify(token string) (string, error)
	// CookieName is the name of the session transport cookie.
	CookieName() string
}

// UserID returns the authenticated user id set by RequireSession, or ""
// when the request did not pass the session gate.
func UserID(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequireSession returns a Gin middleware that rejects requests without a
// valid session credential and stores the verified user id in the context.
func RequireSession(v SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := credentialFrom(c, v.CookieName())
		if token == "" {
			abortAuth(c, "unauthorized", "Unauthorized: No token")
			return
		}

		userID, err := v.Verify(token)
		if err != nil {
			abortAuth(c, "invalid_or_expired", "Unauthorized: Invalid or expired token")
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// credentialFrom extracts the session token from the cookie or the bearer
// header, preferring the cookie when both are present.
func credentialFrom(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// abortAuth writes the standard error envelope for a failed session gate.
// The envelope shape matches the handlers package; middleware cannot import
// it without creating a cycle.
func abortAuth(c *gin.Context, code, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       code,
		"message":    msg,
	})
}
