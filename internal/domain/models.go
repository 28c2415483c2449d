// Package domain defines the persistence and wire models for users, their
// summarized-video history, and the summarization results. User documents are
// stored in MongoDB and mapped with bson tags; the same types are serialized
// as JSON on the HTTP surface, mirroring the document shape.
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the canonical identity record. One user exists per email address
// regardless of which entry path (registration or federated login) created
// it; the federated identity id is backfilled onto an existing email-based
// account on first federated login.
//
// Fields:
//   - ID: Mongo object id, also the subject of issued session tokens.
//   - Personal: identity attributes (email, username, avatar, provider ids).
//   - History: ordered list of summarized videos, deduplicated by link.
//   - CreatedAt / UpdatedAt: document timestamps maintained by the repo.
type User struct {
	ID        primitive.ObjectID `json:"id"        bson:"_id,omitempty"`
	Personal  Personal           `json:"personal"  bson:"personal"`
	History   []HistoryEntry     `json:"history"   bson:"history"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Personal groups the identity attributes of a user.
//
// Username is globally unique; Email is unique when present (federated
// tokens may carry no email claim, leaving it empty). Email is stored
// normalized to lowercase. Avatar is optional and may be backfilled from a
// federated profile.
type Personal struct {
	Email    string       `json:"email"            bson:"email"`
	Username string       `json:"username"         bson:"username"`
	Avatar   string       `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Auth     AuthIdentity `json:"auth"             bson:"auth"`
}

// AuthIdentity holds external identity provider ids attached to the user.
// FirebaseUID is unique across users when set (partial unique index).
type AuthIdentity struct {
	FirebaseUID string `json:"firebaseUid,omitempty" bson:"firebaseUid,omitempty"`
	GoogleID    string `json:"googleId,omitempty"    bson:"googleId,omitempty"`
}

// HistoryEntry is one summarized video owned by a user. The entry id is
// supplied by the caller and expected (not enforced) to be unique; the link
// inside Content is what the dedup-by-link policy keys on.
type HistoryEntry struct {
	ID      string         `json:"id"      bson:"id"`
	Date    time.Time      `json:"date"    bson:"date"`
	Content HistoryContent `json:"content" bson:"content"`
}

// HistoryContent is the payload of a history entry: the original link and
// the full summarization result produced for it.
type HistoryContent struct {
	Link string         `json:"link" bson:"link"`
	Data *SummaryResult `json:"data" bson:"data"`
}

// SummaryResult is the complete outcome of one summarization: the video
// metadata fetched from the catalog API and the structured summary produced
// by the model (or the degraded fallback).
type SummaryResult struct {
	YouTube VideoDetails `json:"youtube" bson:"youtube"`
	Data    Summary      `json:"data"    bson:"data"`
}

// VideoDetails is the normalized metadata record for a resolved video.
// Views and Likes keep the catalog API's string encoding; Duration is the
// provider's ISO-8601 encoding, passed through uninterpreted.
type VideoDetails struct {
	Title       string `json:"title"       bson:"title"`
	Description string `json:"description" bson:"description"`
	Channel     string `json:"channel"     bson:"channel"`
	PublishedAt string `json:"publishedAt" bson:"publishedAt"`
	Duration    string `json:"duration"    bson:"duration"`
	Views       string `json:"views"       bson:"views"`
	Likes       string `json:"likes"       bson:"likes"`
	Thumbnail   string `json:"thumbnail"   bson:"thumbnail"`
}

// Summary is the structured shape demanded from the model. When the model
// reply cannot be parsed, a degraded Summary is produced instead with the
// metadata title, a fixed summary string, and no key points.
type Summary struct {
	Title          string   `json:"title"                     bson:"title"`
	Summary        string   `json:"summary"                   bson:"summary"`
	KeyPoints      []string `json:"keyPoints"                 bson:"keyPoints"`
	KeyTopics      []string `json:"key_topics,omitempty"      bson:"keyTopics,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty" bson:"targetAudience,omitempty"`
}
