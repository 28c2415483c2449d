package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newManager(ttl time.Duration) *SessionManager {
	return NewSessionManager("test-secret", ttl, "token", false)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	m := newManager(time.Hour)

	tok, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	got, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got != "user-1" {
		t.Fatalf("Verify returned %q; want user-1", got)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, err := newManager(time.Hour).Issue("user-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	other := NewSessionManager("a-different-secret", time.Hour, "token", false)
	if _, err := other.Verify(tok); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for foreign signature, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	m := newManager(-time.Minute)
	tok, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession for expired token, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	m := newManager(time.Hour)
	for _, tok := range []string{"", "not.a.jwt", "a.b"} {
		if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("Verify(%q): expected ErrInvalidSession, got %v", tok, err)
		}
	}
}

func TestVerify_EmptySubject(t *testing.T) {
	m := newManager(time.Hour)
	tok, err := m.Issue("")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("a token with no user id must not verify, got %v", err)
	}
}

func TestSetCookie_Attributes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager(time.Hour)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	m.SetCookie(c, "tok-value")

	res := w.Result()
	cookies := res.Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Name != "token" || ck.Value != "tok-value" {
		t.Fatalf("cookie = %s=%s", ck.Name, ck.Value)
	}
	if !ck.HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
	if ck.SameSite != http.SameSiteLaxMode {
		t.Fatalf("SameSite = %v; want Lax", ck.SameSite)
	}
	if ck.MaxAge != int(time.Hour.Seconds()) {
		t.Fatalf("MaxAge = %d; want %d", ck.MaxAge, int(time.Hour.Seconds()))
	}
}

func TestClearCookie_Expires(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newManager(time.Hour)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	m.ClearCookie(c)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	ck := cookies[0]
	if ck.Value != "" || ck.MaxAge >= 0 {
		t.Fatalf("clear cookie = value %q MaxAge %d; want empty and negative", ck.Value, ck.MaxAge)
	}
}
