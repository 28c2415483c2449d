// Auth HTTP handlers.
//
// This file exposes the identity endpoints:
//   - POST /auth/register   (direct registration)
//   - POST /auth/federated  (federated login via provider ID token)
//   - GET  /auth/me         (current user, session-gated)
//   - POST /auth/signout    (clears the session cookie)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. Session issuance is
// dual-transport by design: every successful register/federated response
// both sets the http-only cookie and returns the raw token for bearer-style
// clients.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maple-video/maple-backend/internal/auth"
	"github.com/maple-video/maple-backend/internal/domain"
	"github.com/maple-video/maple-backend/internal/http/middleware"
	"github.com/maple-video/maple-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// AccountService defines the identity operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AccountService interface {
	// Register creates a user for a previously-unseen email.
	Register(ctx context.Context, email, name string) (*domain.User, error)
	// FederatedLogin verifies a provider ID token and reconciles the user.
	FederatedLogin(ctx context.Context, idToken string) (*domain.User, error)
	// Me returns the user record for an authenticated user id.
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// SummaryService defines the summarization and history operations consumed
// by the tools endpoints.
type SummaryService interface {
	// Summarize runs the full pipeline for a link on behalf of a user.
	Summarize(ctx context.Context, userID, link string) (*domain.SummaryResult, error)
	// AppendHistory adds a history entry, deduplicated by link.
	AppendHistory(ctx context.Context, userID string, entry domain.HistoryEntry) ([]domain.HistoryEntry, error)
	// RemoveHistory deletes a history entry by id (no-op when absent).
	RemoveHistory(ctx context.Context, userID, entryID string) ([]domain.HistoryEntry, error)
}

// SessionIssuer mints session tokens and manages their cookie transport.
type SessionIssuer interface {
	Issue(userID string) (string, error)
	SetCookie(c *gin.Context, token string)
	ClearCookie(c *gin.Context)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for identity and summarization tools.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	accounts  AccountService
	summaries SummaryService
	sessions  SessionIssuer
}

// New constructs and returns a Handlers instance bound to the given services.
func New(accounts AccountService, summaries SummaryService, sessions SessionIssuer) *Handlers {
	return &Handlers{accounts: accounts, summaries: summaries, sessions: sessions}
}

//
// DTOs
//

// RegisterRequest is the JSON payload for direct registration.
type RegisterRequest struct {
	Email string `json:"email" binding:"required,email" example:"ada@example.com"`
	Name  string `json:"name" example:"Ada Lovelace"`
}

// FederatedRequest is the JSON payload for federated login.
type FederatedRequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

// UserResponse wraps a user record.
type UserResponse struct {
	User *domain.User `json:"user"`
}

// SessionResponse wraps a user record plus the raw session token for
// clients that cannot rely on cookies.
type SessionResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

//
// Handlers
//

// Register godoc
// @ID          register
// @Summary     Register a new user
// @Description Creates a user for an unseen email, issues a session, and sets the session cookie.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.RegisterRequest  true  "Registration payload"
// @Success     201  {object}  handlers.UserResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email is required")
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			fail(c, http.StatusConflict, ErrCodeConflict, "User already exists")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	if err := h.startSession(c, user); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusCreated, UserResponse{User: user})
}

// Federated godoc
// @ID          federatedLogin
// @Summary     Log in with a federated identity token
// @Description Verifies the provider ID token, reconciles the user record, and issues a session.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.FederatedRequest  true  "Federated login payload"
// @Success     200  {object}  handlers.SessionResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Token verification failed"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/federated [post]
func (h *Handlers) Federated(c *gin.Context) {
	var req FederatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "idToken is required")
		return
	}

	user, err := h.accounts.FederatedLogin(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			fail(c, http.StatusUnauthorized, ErrCodeInvalidToken, "identity token verification failed")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	token, err := h.sessions.Issue(user.ID.Hex())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	h.sessions.SetCookie(c, token)
	ok(c, http.StatusOK, SessionResponse{Token: token, User: user})
}

// Me godoc
// @ID          me
// @Summary     Current user
// @Description Returns the user record behind the session credential.
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  handlers.UserResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid session"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.accounts.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, UserResponse{User: user})
}

// SignOut godoc
// @ID          signOut
// @Summary     Sign out
// @Description Clears the session cookie. Tokens held by the client simply expire; there is no server-side session store.
// @Tags        Auth
// @Produce     json
// @Success     200  {object}  map[string]string
// @Router      /auth/signout [post]
func (h *Handlers) SignOut(c *gin.Context) {
	h.sessions.ClearCookie(c)
	ok(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// startSession issues a token for user and sets the transport cookie.
func (h *Handlers) startSession(c *gin.Context, user *domain.User) error {
	token, err := h.sessions.Issue(user.ID.Hex())
	if err != nil {
		return err
	}
	h.sessions.SetCookie(c, token)
	return nil
}
