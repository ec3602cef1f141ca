// internal/models/route.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Waypoint struct {
	Address  string   `bson:"address" json:"address"`
	Location GeoPoint `bson:"location" json:"location"`
	Order    int      `bson:"order" json:"order"`
}

type Route struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Waypoints      []Waypoint         `bson:"waypoints" json:"waypoints"`
	OptimizedOrder []int              `bson:"optimizedOrder" json:"optimizedOrder"`
	TotalDistance  string             `bson:"totalDistance" json:"totalDistance"`
	TotalDuration  string             `bson:"totalDuration" json:"totalDuration"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
