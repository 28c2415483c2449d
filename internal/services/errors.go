// Package services defines the business logic for identity reconciliation,
// summarization, and history management. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrEmailTaken indicates that the email already belongs to a user.
	// Surfaced by registration; the store's unique index is the final
	// arbiter under concurrent registrations.
	ErrEmailTaken = errors.New("user already exists")

	// ErrUserNotFound indicates that the addressed user record does not
	// exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrMissingLink is returned when a summarization request carries no
	// link.
	ErrMissingLink = errors.New("link is required")

	// ErrInvalidURL is returned when no video identifier can be resolved
	// from the supplied URL. The pipeline rejects before any network call.
	ErrInvalidURL = errors.New("invalid YouTube URL")

	// ErrVideoNotFound indicates the catalog API returned an empty result
	// set for a resolved video id.
	ErrVideoNotFound = errors.New("video not found")

	// ErrDuplicateEntry is the dedup-by-link hit: the user's history already
	// holds an entry for this link. Callers returning it also carry the
	// previously stored result so it can be echoed to the client.
	ErrDuplicateEntry = errors.New("video already exists in history")

	// ErrMissingHistoryID is returned when a delete request carries no
	// entry id.
	ErrMissingHistoryID = errors.New("historyId is required")

	// ErrUpstream classifies external API failures (network errors, non-2xx
	// responses, timeouts) that are not a definite not-found.
	ErrUpstream = errors.New("upstream service failure")
)
