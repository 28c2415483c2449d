// Package repo implements the data persistence layer for user documents,
// backed by the official MongoDB driver. This file contains connection
// bootstrapping and index management helpers.
package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound is returned when a requested document does not exist.
// Services translate it into their own taxonomy (user vs. video not found).
var ErrNotFound = errors.New("document not found")

// Connect opens a MongoDB client for the given URI and verifies the
// connection with a ping. The caller owns the returned client and must
// Disconnect it on shutdown.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client, nil
}

// EnsureUserIndexes creates the uniqueness constraints the identity model
// relies on:
//
//   - personal.email    unique, partial (non-empty only; federated tokens
//     are not guaranteed to carry an email claim, and two email-less
//     accounts must not collide on "")
//   - personal.username unique
//   - personal.auth.firebaseUid unique, partial (only documents that carry one)
//
// The unique indexes are the final arbiter for races where two concurrent
// requests pass an application-level existence check before either inserts.
func EnsureUserIndexes(ctx context.Context, col *mongo.Collection) error {
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "personal.email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					{Key: "personal.email", Value: bson.D{{Key: "$gt", Value: ""}}},
				}),
		},
		{
			Keys:    bson.D{{Key: "personal.username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "personal.auth.firebaseUid", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{
					{Key: "personal.auth.firebaseUid", Value: bson.D{{Key: "$exists", Value: true}}},
				}),
		},
	})
	return err
}

// IsDup reports whether err is a MongoDB duplicate-key error, i.e. a unique
// index rejected a write.
func IsDup(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
