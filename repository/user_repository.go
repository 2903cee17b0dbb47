package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rhythmcloud/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// FindOrCreateByGoogleID resolves a provider profile to a local user,
	// creating the record on first sight. Existing records are returned
	// unchanged (no profile refresh).
	FindOrCreateByGoogleID(ctx context.Context, profile *model.User) (*model.User, error)
	// GetUserByID retrieves a user by hex id. Returns (nil, nil) when no
	// record matches.
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	// ToggleLikedSong flips membership of songID in the user's liked set and
	// returns the updated record. Returns (nil, nil) when the user no longer
	// exists.
	ToggleLikedSong(ctx context.Context, userID, songID string) (*model.User, error)
}

// mongoUserRepository implements UserRepository on the users collection.
type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a new mongoUserRepository.
func NewMongoUserRepository(coll *mongo.Collection) UserRepository {
	return &mongoUserRepository{coll: coll}
}

// FindOrCreateByGoogleID performs a single upsert keyed on googleId. $setOnInsert
// combined with the unique index on googleId makes concurrent first logins for
// the same identity converge on one record.
func (r *mongoUserRepository) FindOrCreateByGoogleID(ctx context.Context, profile *model.User) (*model.User, error) {
	filter := bson.M{"googleId": profile.GoogleID}
	update := bson.M{"$setOnInsert": bson.M{
		"googleId":    profile.GoogleID,
		"displayName": profile.DisplayName,
		"email":       profile.Email,
		"photo":       profile.Photo,
		"likedSongs":  []string{},
		"createdAt":   time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	user := &model.User{}
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(user); err != nil {
		return nil, fmt.Errorf("failed to find or create user for google id %s: %w", profile.GoogleID, err)
	}
	return user, nil
}

func (r *mongoUserRepository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Malformed ids behave like missing records; stale or garbage session
		// values must degrade to unauthenticated.
		return nil, nil
	}

	user := &model.User{}
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}
	return user, nil
}

// ToggleLikedSong uses the server-side set primitives instead of a
// read-modify-write of the whole array, so two concurrent toggles on different
// songs cannot lose each other's update. $pull removes every occurrence of the
// id; $addToSet never introduces a duplicate.
func (r *mongoUserRepository) ToggleLikedSong(ctx context.Context, userID, songID string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "likedSongs": songID},
		bson.M{"$pull": bson.M{"likedSongs": songID}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to unlike song %s for user %s: %w", songID, userID, err)
	}

	if res.MatchedCount == 0 {
		add, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": oid},
			bson.M{"$addToSet": bson.M{"likedSongs": songID}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to like song %s for user %s: %w", songID, userID, err)
		}
		if add.MatchedCount == 0 {
			return nil, nil
		}
	}

	return r.GetUserByID(ctx, userID)
}
