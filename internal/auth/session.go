// Package auth implements the identity primitives of the application: the
// self-issued session credential (a signed, time-bounded JWT carrying the
// user id) and the federated identity token verifier.
//
// Session tokens are stateless: there is no server-side session store and no
// revocation list, so signout is a client-side token discard (the server only
// clears the transport cookie). Verification is pure in-memory work once the
// token string is in hand.
package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidSession is returned by Verify for tokens that are malformed,
// carry a bad signature, or are past their expiry.
var ErrInvalidSession = errors.New("invalid or expired session token")

// sessionClaims is the JWT payload of a session credential: the user id plus
// the registered expiry/issued-at claims.
type sessionClaims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// SessionManager mints and validates session credentials and manages their
// cookie transport. The same token is also returned raw so clients that
// cannot rely on cookies (webviews) can send it as a bearer header.
type SessionManager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
}

// NewSessionManager constructs a SessionManager. secure controls the Secure
// cookie attribute and should be true only for production HTTPS deployments.
func NewSessionManager(secret string, ttl time.Duration, cookieName string, secure bool) *SessionManager {
	return &SessionManager{
		secret:     []byte(secret),
		ttl:        ttl,
		cookieName: cookieName,
		secure:     secure,
	}
}

// CookieName returns the name of the session transport cookie.
func (m *SessionManager) CookieName() string { return m.cookieName }

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue signs a new session token embedding userID with the configured
// expiry and returns the compact token string.
func (m *SessionManager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		ID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks the signature and expiry of tokenString and returns the
// embedded user id. Any failure maps to ErrInvalidSession; callers must not
// grant partial access on error.
func (m *SessionManager) Verify(tokenString string) (string, error) {
	var claims sessionClaims
	tok, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid || claims.ID == "" {
		return "", ErrInvalidSession
	}
	return claims.ID, nil
}

// SetCookie attaches the session token to the response as an http-only,
// SameSite=Lax cookie whose lifetime matches the token expiry.
func (m *SessionManager) SetCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie overwrites the session cookie with an immediately expired one,
// matching the attributes used when it was set. This is the whole of signout
// on the server side.
func (m *SessionManager) ClearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
