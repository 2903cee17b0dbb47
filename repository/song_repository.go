package repository

import (
	"context"
	"fmt"
	"time"

	"rhythmcloud/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SongRepository defines the interface for song data operations.
type SongRepository interface {
	// CreateSong inserts a new song and returns its id. Date is assigned
	// server-side at insert time.
	CreateSong(ctx context.Context, song *model.Song) (string, error)
	// ListSongs returns every song, newest first.
	ListSongs(ctx context.Context) ([]model.Song, error)
}

// mongoSongRepository implements SongRepository on the songs collection.
type mongoSongRepository struct {
	coll *mongo.Collection
}

// NewMongoSongRepository creates a new mongoSongRepository.
func NewMongoSongRepository(coll *mongo.Collection) SongRepository {
	return &mongoSongRepository{coll: coll}
}

func (r *mongoSongRepository) CreateSong(ctx context.Context, song *model.Song) (string, error) {
	song.Date = time.Now().UTC()

	res, err := r.coll.InsertOne(ctx, song)
	if err != nil {
		return "", fmt.Errorf("failed to insert song %q: %w", song.Title, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T for song %q", res.InsertedID, song.Title)
	}
	song.ID = oid
	return oid.Hex(), nil
}

func (r *mongoSongRepository) ListSongs(ctx context.Context) ([]model.Song, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer cursor.Close(ctx)

	songs := []model.Song{}
	if err := cursor.All(ctx, &songs); err != nil {
		return nil, fmt.Errorf("failed to decode songs: %w", err)
	}
	return songs, nil
}
