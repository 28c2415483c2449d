package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// fakeSessionVerifier accepts a single token value.
type fakeSessionVerifier struct {
	accept string
	userID string
	got    string
}

func (v *fakeSessionVerifier) Verify(token string) (string, error) {
	v.got = token
	if token == v.accept {
		return v.userID, nil
	}
	return "", errors.New("invalid or expired session token")
}

func (v *fakeSessionVerifier) CookieName() string { return "token" }

func gatedRouter(v SessionVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", RequireSession(v), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	return r
}

func TestRequireSession_Cookie(t *testing.T) {
	v := &fakeSessionVerifier{accept: "good", userID: "u1"}
	r := gatedRouter(v)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "good"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (body %s)", w.Code, w.Body.String())
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body["user_id"] != "u1" {
		t.Fatalf("user_id = %q", body["user_id"])
	}
}

func TestRequireSession_BearerHeader(t *testing.T) {
	v := &fakeSessionVerifier{accept: "good", userID: "u1"}
	r := gatedRouter(v)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
}

func TestRequireSession_CookiePreferredOverHeader(t *testing.T) {
	v := &fakeSessionVerifier{accept: "cookie-tok", userID: "u1"}
	r := gatedRouter(v)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "cookie-tok"})
	req.Header.Set("Authorization", "Bearer header-tok")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if v.got != "cookie-tok" {
		t.Fatalf("verifier saw %q; cookie should win", v.got)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
}

func TestRequireSession_MissingCredential(t *testing.T) {
	v := &fakeSessionVerifier{accept: "good"}
	r := gatedRouter(v)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["code"] != "unauthorized" {
		t.Fatalf("code = %q; want unauthorized", body["code"])
	}
}

func TestRequireSession_InvalidCredential(t *testing.T) {
	v := &fakeSessionVerifier{accept: "good"}
	r := gatedRouter(v)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer stale")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["code"] != "invalid_or_expired" {
		t.Fatalf("code = %q; want invalid_or_expired", body["code"])
	}
}

func TestRequireSession_NonBearerSchemeIgnored(t *testing.T) {
	v := &fakeSessionVerifier{accept: "good"}
	r := gatedRouter(v)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
}

func TestUserID_Unset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := UserID(c); got != "" {
		t.Fatalf("UserID on bare context = %q; want empty", got)
	}
}
