package db

import (
	"context"
	"fmt"
	"time"

	"rhythmcloud/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient is the process-wide MongoDB client, initialized once at startup.
var MongoClient *mongo.Client

var mongoDatabase *mongo.Database

// ConnectMongo establishes the MongoDB connection and verifies it with a ping.
func ConnectMongo(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	mongoDatabase = client.Database(cfg.MongoDB)
	return nil
}

// CloseMongo disconnects the MongoDB client.
func CloseMongo() error {
	if MongoClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return MongoClient.Disconnect(ctx)
}

// Users returns the users collection.
func Users() *mongo.Collection {
	return mongoDatabase.Collection("users")
}

// Songs returns the songs collection.
func Songs() *mongo.Collection {
	return mongoDatabase.Collection("songs")
}

// EnsureIndexes creates the indexes the application relies on. The unique
// index on googleId guards against two concurrent first logins creating two
// user records for the same provider identity.
func EnsureIndexes(ctx context.Context) error {
	_, err := Users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "googleId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index on users.googleId: %w", err)
	}

	_, err = Songs().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create index on songs.date: %w", err)
	}
	return nil
}
