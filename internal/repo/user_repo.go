// Package repo – user directory and history ledger.
//
// Users lives on a single MongoDB collection; history entries ride inside the
// user document (no separate collection), so every history mutation is a
// single-document, atomic update. Field backfill uses $set, history uses
// $push/$pull, and the append is conditional on the link not being present
// yet, which makes the dedup-by-link policy race-safe at the store layer.
package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/maple-video/maple-backend/internal/domain"
)

// UsersCollection is the collection name for user documents.
const UsersCollection = "users"

// Users is the MongoDB-backed user directory.
type Users struct {
	col *mongo.Collection
}

// NewUsers returns a Users directory bound to the users collection of db.
func NewUsers(db *mongo.Database) *Users {
	return &Users{col: db.Collection(UsersCollection)}
}

// Collection exposes the underlying collection for index bootstrapping.
func (r *Users) Collection() *mongo.Collection { return r.col }

// FindByID returns the user with the given hex object id.
// Returns ErrNotFound when the id is malformed or no document matches.
func (r *Users) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// FindByEmail returns the user owning the given (already normalized) email,
// or ErrNotFound.
func (r *Users) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"personal.email": email})
}

// FindByFirebaseUID returns the user holding the given federated identity
// id, or ErrNotFound.
func (r *Users) FindByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"personal.auth.firebaseUid": uid})
}

func (r *Users) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var u domain.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UsernameExists reports whether any user already holds username.
func (r *Users) UsernameExists(ctx context.Context, username string) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"personal.username": username},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Insert creates a new user document, stamping creation/update times and an
// empty history list. The unique indexes reject duplicate emails, usernames,
// and federated ids; callers distinguish those cases with IsDup.
func (r *Users) Insert(ctx context.Context, u *domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.History == nil {
		u.History = []domain.HistoryEntry{}
	}

	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return u, nil
}

// AttachFederatedIdentity backfills the federated identity id (and the
// avatar, when non-empty) onto an existing user and returns the updated
// document. This is the merge step that joins a pre-existing email-based
// account with a later federated login for the same email.
func (r *Users) AttachFederatedIdentity(ctx context.Context, id primitive.ObjectID, firebaseUID, avatar string) (*domain.User, error) {
	set := bson.M{
		"personal.auth.firebaseUid": firebaseUID,
		"updatedAt":                 time.Now().UTC(),
	}
	if avatar != "" {
		set["personal.avatar"] = avatar
	}

	var u domain.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// AppendHistory pushes entry onto the user's history, but only when no
// existing entry carries the same link. The link guard lives in the filter,
// so two racing appends for the same user+link cannot both match; the loser
// observes appended == false.
//
// Returns the post-update history and whether the entry was appended.
// ErrNotFound means the user does not exist at all.
func (r *Users) AppendHistory(ctx context.Context, id primitive.ObjectID, entry domain.HistoryEntry) ([]domain.HistoryEntry, bool, error) {
	var u domain.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{
			"_id":                  id,
			"history.content.link": bson.M{"$ne": entry.Content.Link},
		},
		bson.M{
			"$push": bson.M{"history": entry},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)

	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either the user is absent or the link is already present;
		// a plain lookup tells the two apart.
		existing, ferr := r.findOne(ctx, bson.M{"_id": id})
		if ferr != nil {
			return nil, false, ferr
		}
		return existing.History, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return u.History, true, nil
}

// RemoveHistory pulls the entry with the given id from the user's history
// and returns the post-update list. Removing an absent entry id is a no-op,
// not an error; ErrNotFound is returned only when the user does not exist.
func (r *Users) RemoveHistory(ctx context.Context, id primitive.ObjectID, entryID string) ([]domain.HistoryEntry, error) {
	var u domain.User
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$pull": bson.M{"history": bson.M{"id": entryID}},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.History == nil {
		u.History = []domain.HistoryEntry{}
	}
	return u.History, nil
}
