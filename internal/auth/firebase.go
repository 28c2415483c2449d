// Package auth – federated token verification.
//
// The verifier validates an externally issued Firebase ID token and extracts
// the stable identity attributes the reconciler needs. It is kept behind a
// small interface so services and tests never touch the Firebase SDK.
package auth

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
)

// ErrInvalidToken is returned when a federated identity token is malformed,
// expired, or fails provider-side verification. It must surface to callers
// as an authentication failure, never as a silent anonymous fallback.
var ErrInvalidToken = errors.New("invalid identity token")

// IdentityClaims is the normalized identity extracted from a verified
// federated token. Only ExternalID is guaranteed to be present.
type IdentityClaims struct {
	ExternalID string // stable provider-side user id
	Email      string
	Name       string
	Picture    string // avatar URL
}

// TokenVerifier validates an opaque federated identity token.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*IdentityClaims, error)
}

// FirebaseVerifier verifies ID tokens against Firebase Auth. Credentials are
// resolved by the SDK (GOOGLE_APPLICATION_CREDENTIALS or application default
// credentials), matching how the deployment is provisioned.
type FirebaseVerifier struct {
	client *fbauth.Client
}

// NewFirebaseVerifier initializes the Firebase app and its auth client.
func NewFirebaseVerifier(ctx context.Context) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

// Verify checks signature and expiry with the provider and returns the
// normalized identity claims. Verification failures wrap ErrInvalidToken.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*IdentityClaims, error) {
	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims := &IdentityClaims{ExternalID: tok.UID}
	if s, ok := tok.Claims["email"].(string); ok {
		claims.Email = s
	}
	if s, ok := tok.Claims["name"].(string); ok {
		claims.Name = s
	}
	if s, ok := tok.Claims["picture"].(string); ok {
		claims.Picture = s
	}
	return claims, nil
}
