// internal/models/store.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Address   string             `bson:"address" json:"address"`
	Location  GeoPoint           `bson:"location" json:"location"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Hours     string             `bson:"hours,omitempty" json:"hours,omitempty"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	Rating    float64            `bson:"rating,omitempty" json:"rating,omitempty"` // 0..5
	Amenities []string           `bson:"amenities,omitempty" json:"amenities,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
