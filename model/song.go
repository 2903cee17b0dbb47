package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fixed catalog values for this deployment. Every uploaded song is credited to
// the studio and gets the stock cover icon.
const (
	StudioArtist = "The Rhythmcloud Studio"
	DefaultCover = "https://cdn-icons-png.flaticon.com/512/9043/9043063.png"
)

// Song represents one track in the public catalog. Songs are created only by
// the admin upload flow and never updated or deleted through the API.
type Song struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title  string             `bson:"title" json:"title"`
	Artist string             `bson:"artist" json:"artist"`
	URL    string             `bson:"url" json:"url"`
	Cover  string             `bson:"cover" json:"cover"`
	Date   time.Time          `bson:"date" json:"date"`
}
