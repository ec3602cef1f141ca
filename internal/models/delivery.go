// internal/models/delivery.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DeliveryPending   = "pending"
	DeliveryPickedUp  = "picked_up"
	DeliveryInTransit = "in_transit"
	DeliveryDelivered = "delivered"
	DeliveryCancelled = "cancelled"
)

// ValidDeliveryStatus reports whether s is one of the delivery states.
func ValidDeliveryStatus(s string) bool {
	switch s {
	case DeliveryPending, DeliveryPickedUp, DeliveryInTransit, DeliveryDelivered, DeliveryCancelled:
		return true
	}
	return false
}

// RouteSummary is the driver-to-customer leg as text from the directions API.
type RouteSummary struct {
	Distance string `bson:"distance,omitempty" json:"distance,omitempty"`
	Duration string `bson:"duration,omitempty" json:"duration,omitempty"`
	Polyline string `bson:"polyline,omitempty" json:"polyline,omitempty"`
}

type Delivery struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID               string             `bson:"orderId" json:"orderId"`
	CustomerAddress       string             `bson:"customerAddress" json:"customerAddress"`
	CustomerLocation      GeoPoint           `bson:"customerLocation" json:"customerLocation"`
	DriverLocation        GeoPoint           `bson:"driverLocation" json:"driverLocation"`
	Status                string             `bson:"status" json:"status"`
	EstimatedDeliveryTime string             `bson:"estimatedDeliveryTime" json:"estimatedDeliveryTime"`
	ActualDeliveryTime    *time.Time         `bson:"actualDeliveryTime,omitempty" json:"actualDeliveryTime,omitempty"`
	Route                 RouteSummary       `bson:"route" json:"route"`
	CreatedAt             time.Time          `bson:"createdAt" json:"createdAt"`
}
