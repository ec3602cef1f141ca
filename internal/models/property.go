// internal/models/property.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var PropertyTypes = []string{"house", "apartment", "condo", "commercial"}

// ValidPropertyType reports whether t is an accepted property type. Empty is allowed.
func ValidPropertyType(t string) bool {
	if t == "" {
		return true
	}
	for _, pt := range PropertyTypes {
		if pt == t {
			return true
		}
	}
	return false
}

type NearbyPlace struct {
	Name     string `bson:"name" json:"name"`
	Type     string `bson:"type" json:"type"`
	Distance string `bson:"distance" json:"distance"`
}

type Property struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Address      string             `bson:"address" json:"address"`
	Location     GeoPoint           `bson:"location" json:"location"`
	Price        float64            `bson:"price" json:"price"`
	PropertyType string             `bson:"propertyType,omitempty" json:"propertyType,omitempty"`
	Bedrooms     int                `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms    int                `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	SquareFeet   int                `bson:"squareFeet,omitempty" json:"squareFeet,omitempty"`
	Amenities    []string           `bson:"amenities,omitempty" json:"amenities,omitempty"`
	NearbyPlaces []NearbyPlace      `bson:"nearbyPlaces" json:"nearbyPlaces"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

// CommuteInfo is attached to a property when a work address is given.
type CommuteInfo struct {
	Distance          string `json:"distance,omitempty"`
	Duration          string `json:"duration,omitempty"`
	DurationInTraffic string `json:"durationInTraffic,omitempty"`
}
