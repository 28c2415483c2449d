// Package services – AccountService
//
// This file implements the identity reconciler: the two entry flows (direct
// registration, federated login) that turn an email or a verified federated
// token into exactly one durable user record. Reconciliation is asymmetric
// by design: federated logins look up by external id first, then by email,
// and backfill the external id onto a pre-existing email-based account so
// one identity exists per email regardless of entry path.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/maple-video/maple-backend/internal/auth"
	"github.com/maple-video/maple-backend/internal/domain"
	"github.com/maple-video/maple-backend/internal/repo"
)

// UserDirectory defines the repository contract required by the services in
// this package. Implementations are responsible for persistence of user
// documents and must enforce uniqueness of email, username, and federated id
// at the store layer.
type UserDirectory interface {
	// FindByID returns the user with the given hex id.
	FindByID(ctx context.Context, id string) (*domain.User, error)

	// FindByEmail returns the user owning the normalized email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindByFirebaseUID returns the user holding the federated identity id.
	FindByFirebaseUID(ctx context.Context, uid string) (*domain.User, error)

	// UsernameExists reports whether a username is already allocated.
	UsernameExists(ctx context.Context, username string) (bool, error)

	// Insert creates a new user document.
	Insert(ctx context.Context, u *domain.User) (*domain.User, error)

	// AttachFederatedIdentity backfills the federated id (and avatar when
	// non-empty) onto an existing user.
	AttachFederatedIdentity(ctx context.Context, id primitive.ObjectID, firebaseUID, avatar string) (*domain.User, error)

	// AppendHistory conditionally pushes a history entry (dedup-by-link).
	AppendHistory(ctx context.Context, id primitive.ObjectID, entry domain.HistoryEntry) ([]domain.HistoryEntry, bool, error)

	// RemoveHistory pulls a history entry by id.
	RemoveHistory(ctx context.Context, id primitive.ObjectID, entryID string) ([]domain.HistoryEntry, error)
}

// AccountService orchestrates the token verifier, username allocator, and
// user directory into the registration and federated-login flows, handing
// the resulting user to the session issuer at the handler layer.
type AccountService struct {
	Users    UserDirectory
	Verifier auth.TokenVerifier
}

// NewAccountService constructs an AccountService.
func NewAccountService(users UserDirectory, verifier auth.TokenVerifier) *AccountService {
	return &AccountService{Users: users, Verifier: verifier}
}

// Register creates a user for a previously-unseen email, allocating a
// username from the display-name hint. Returns ErrEmailTaken when the email
// already belongs to a user, both on the pre-check and when the unique index
// rejects a racing insert.
func (s *AccountService) Register(ctx context.Context, email, name string) (*domain.User, error) {
	tr := otel.Tracer("services/AccountService")
	ctx, span := tr.Start(ctx, "Register")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	username, err := allocateUsername(ctx, s.Users, name, email)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.Insert(ctx, &domain.User{
		Personal: domain.Personal{
			Email:    email,
			Username: username,
		},
	})
	if err != nil {
		if repo.IsDup(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

// FederatedLogin verifies the opaque identity token and reconciles its
// claims into a user record: lookup by external id first, then by email;
// create when both miss; backfill the external id (and avatar when unset)
// when the email-based account predates the federated identity.
func (s *AccountService) FederatedLogin(ctx context.Context, idToken string) (*domain.User, error) {
	tr := otel.Tracer("services/AccountService")
	ctx, span := tr.Start(ctx, "FederatedLogin")
	defer span.End()

	claims, err := s.Verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("identity.external_id", claims.ExternalID))

	email := strings.ToLower(strings.TrimSpace(claims.Email))

	user, err := s.Users.FindByFirebaseUID(ctx, claims.ExternalID)
	if errors.Is(err, repo.ErrNotFound) && email != "" {
		user, err = s.Users.FindByEmail(ctx, email)
	}

	switch {
	case err == nil:
		if user.Personal.Auth.FirebaseUID == "" {
			avatar := ""
			if user.Personal.Avatar == "" {
				avatar = claims.Picture
			}
			return s.Users.AttachFederatedIdentity(ctx, user.ID, claims.ExternalID, avatar)
		}
		return user, nil

	case errors.Is(err, repo.ErrNotFound):
		return s.createFederated(ctx, claims, email)

	default:
		return nil, err
	}
}

// createFederated creates a fresh user from federated claims. A duplicate-key
// rejection means another request for the same identity won the insert race;
// the record it created is re-read instead of failing the login.
func (s *AccountService) createFederated(ctx context.Context, claims *auth.IdentityClaims, email string) (*domain.User, error) {
	username, err := allocateUsername(ctx, s.Users, claims.Name, email)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.Insert(ctx, &domain.User{
		Personal: domain.Personal{
			Email:    email,
			Username: username,
			Avatar:   claims.Picture,
			Auth: domain.AuthIdentity{
				FirebaseUID: claims.ExternalID,
			},
		},
	})
	if err == nil {
		return user, nil
	}
	if !repo.IsDup(err) {
		return nil, err
	}

	if u, ferr := s.Users.FindByFirebaseUID(ctx, claims.ExternalID); ferr == nil {
		return u, nil
	}
	if email != "" {
		if u, ferr := s.Users.FindByEmail(ctx, email); ferr == nil {
			return u, nil
		}
	}
	return nil, err
}

// Me returns the user record for an authenticated session's user id.
func (s *AccountService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}
