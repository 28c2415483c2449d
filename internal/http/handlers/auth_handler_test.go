package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/maple-video/maple-backend/internal/auth"
	"github.com/maple-video/maple-backend/internal/domain"
	"github.com/maple-video/maple-backend/internal/services"
)

// ---------- stubs ----------

type stubAccounts struct {
	register  func(context.Context, string, string) (*domain.User, error)
	federated func(context.Context, string) (*domain.User, error)
	me        func(context.Context, string) (*domain.User, error)
}

func (s stubAccounts) Register(ctx context.Context, email, name string) (*domain.User, error) {
	if s.register != nil {
		return s.register(ctx, email, name)
	}
	return testUser(), nil
}

func (s stubAccounts) FederatedLogin(ctx context.Context, idToken string) (*domain.User, error) {
	if s.federated != nil {
		return s.federated(ctx, idToken)
	}
	return testUser(), nil
}

func (s stubAccounts) Me(ctx context.Context, userID string) (*domain.User, error) {
	if s.me != nil {
		return s.me(ctx, userID)
	}
	return testUser(), nil
}

type stubSummaries struct {
	summarize func(context.Context, string, string) (*domain.SummaryResult, error)
	appendFn  func(context.Context, string, domain.HistoryEntry) ([]domain.HistoryEntry, error)
	removeFn  func(context.Context, string, string) ([]domain.HistoryEntry, error)
}

func (s stubSummaries) Summarize(ctx context.Context, userID, link string) (*domain.SummaryResult, error) {
	if s.summarize != nil {
		return s.summarize(ctx, userID, link)
	}
	return nil, nil
}

func (s stubSummaries) AppendHistory(ctx context.Context, userID string, e domain.HistoryEntry) ([]domain.HistoryEntry, error) {
	if s.appendFn != nil {
		return s.appendFn(ctx, userID, e)
	}
	return nil, nil
}

func (s stubSummaries) RemoveHistory(ctx context.Context, userID, entryID string) ([]domain.HistoryEntry, error) {
	if s.removeFn != nil {
		return s.removeFn(ctx, userID, entryID)
	}
	return nil, nil
}

type stubSessions struct {
	issueErr error
	set      int
	cleared  int
}

func (s *stubSessions) Issue(userID string) (string, error) {
	if s.issueErr != nil {
		return "", s.issueErr
	}
	return "session-token", nil
}

func (s *stubSessions) SetCookie(c *gin.Context, token string) { s.set++ }
func (s *stubSessions) ClearCookie(c *gin.Context)             { s.cleared++ }

func testUser() *domain.User {
	return &domain.User{
		ID: primitive.NewObjectID(),
		Personal: domain.Personal{
			Email:    "ada@example.com",
			Username: "ada1234",
		},
		History: []domain.HistoryEntry{},
	}
}

func newAuthRouter(accounts AccountService, summaries SummaryService, sessions SessionIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(accounts, summaries, sessions)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/federated", h.Federated)
	r.GET("/auth/me", h.Me)
	r.POST("/auth/signout", h.SignOut)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------- tests ----------

func TestRegisterHandler_Created(t *testing.T) {
	sess := &stubSessions{}
	r := newAuthRouter(stubAccounts{}, stubSummaries{}, sess)

	w := postJSON(t, r, "/auth/register", RegisterRequest{Email: "ada@example.com", Name: "Ada"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201 (body %s)", w.Code, w.Body.String())
	}
	if sess.set != 1 {
		t.Fatalf("session cookie set %d times; want 1", sess.set)
	}
	var body UserResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.User == nil || body.User.Personal.Email != "ada@example.com" {
		t.Fatalf("user not echoed: %s", w.Body.String())
	}
}

func TestRegisterHandler_BadPayload(t *testing.T) {
	r := newAuthRouter(stubAccounts{}, stubSummaries{}, &stubSessions{})

	w := postJSON(t, r, "/auth/register", map[string]string{"email": "not-an-email"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestRegisterHandler_EmailTaken(t *testing.T) {
	acc := stubAccounts{register: func(context.Context, string, string) (*domain.User, error) {
		return nil, services.ErrEmailTaken
	}}
	r := newAuthRouter(acc, stubSummaries{}, &stubSessions{})

	w := postJSON(t, r, "/auth/register", RegisterRequest{Email: "ada@example.com"})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d; want 409", w.Code)
	}
	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != ErrCodeConflict {
		t.Fatalf("code = %q; want %q", body.Code, ErrCodeConflict)
	}
}

func TestFederatedHandler_OK(t *testing.T) {
	sess := &stubSessions{}
	r := newAuthRouter(stubAccounts{}, stubSummaries{}, sess)

	w := postJSON(t, r, "/auth/federated", FederatedRequest{IDToken: "provider-token"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200 (body %s)", w.Code, w.Body.String())
	}
	var body SessionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if body.Token != "session-token" {
		t.Fatalf("token = %q", body.Token)
	}
	if body.User == nil {
		t.Fatalf("user missing from session response")
	}
	if sess.set != 1 {
		t.Fatalf("cookie set %d times; want 1", sess.set)
	}
}

func TestFederatedHandler_InvalidToken(t *testing.T) {
	acc := stubAccounts{federated: func(context.Context, string) (*domain.User, error) {
		return nil, auth.ErrInvalidToken
	}}
	r := newAuthRouter(acc, stubSummaries{}, &stubSessions{})

	w := postJSON(t, r, "/auth/federated", FederatedRequest{IDToken: "forged"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
	var body ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Code != ErrCodeInvalidToken {
		t.Fatalf("code = %q; want %q", body.Code, ErrCodeInvalidToken)
	}
}

func TestFederatedHandler_MissingToken(t *testing.T) {
	r := newAuthRouter(stubAccounts{}, stubSummaries{}, &stubSessions{})

	w := postJSON(t, r, "/auth/federated", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestMeHandler_NotFound(t *testing.T) {
	acc := stubAccounts{me: func(context.Context, string) (*domain.User, error) {
		return nil, services.ErrUserNotFound
	}}
	r := newAuthRouter(acc, stubSummaries{}, &stubSessions{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", w.Code)
	}
}

func TestMeHandler_OK(t *testing.T) {
	r := newAuthRouter(stubAccounts{}, stubSummaries{}, &stubSessions{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
}

func TestSignOutHandler_ClearsCookie(t *testing.T) {
	sess := &stubSessions{}
	r := newAuthRouter(stubAccounts{}, stubSummaries{}, sess)

	req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if sess.cleared != 1 {
		t.Fatalf("cookie cleared %d times; want 1", sess.cleared)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["message"] != "Logged out successfully" {
		t.Fatalf("message = %q", body["message"])
	}
}

func TestRegisterHandler_SessionIssueFailure(t *testing.T) {
	sess := &stubSessions{issueErr: errors.New("boom")}
	r := newAuthRouter(stubAccounts{}, stubSummaries{}, sess)

	w := postJSON(t, r, "/auth/register", RegisterRequest{Email: "ada@example.com"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
}
