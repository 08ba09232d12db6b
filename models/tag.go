package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tag labels sessions for filtering and statistics. Names are unique.
type Tag struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Color     string             `bson:"color,omitempty" json:"color,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// SessionTag is the many-to-many join between sessions and tags.
type SessionTag struct {
	SessionID string    `bson:"session_id" json:"session_id"`
	TagName   string    `bson:"tag_name" json:"tag_name"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}
