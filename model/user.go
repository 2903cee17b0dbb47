package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a listener in the catalog. A record is created exactly once,
// on the first successful Google login for a given provider subject; after
// that only LikedSongs changes.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GoogleID    string             `bson:"googleId" json:"googleId"`
	DisplayName string             `bson:"displayName" json:"displayName"`
	Email       string             `bson:"email" json:"email"`
	Photo       string             `bson:"photo" json:"photo"`
	LikedSongs  []string           `bson:"likedSongs" json:"likedSongs"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
