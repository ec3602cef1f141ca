// internal/database/mongo.go
package database

import (
	"context"
	"fmt"
	"time"

	"go-quickstart/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	UsersCollection      = "users"
	StoresCollection     = "stores"
	RoutesCollection     = "routes"
	DeliveriesCollection = "deliveries"
	PropertiesCollection = "properties"
)

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the uniqueness and geospatial indexes the handlers rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	sparseUnique := options.Index().SetUnique(true).SetSparse(true)

	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "googleId", Value: 1}}, Options: sparseUnique},
			{Keys: bson.D{{Key: "githubId", Value: 1}}, Options: sparseUnique},
			{Keys: bson.D{{Key: "facebookId", Value: 1}}, Options: sparseUnique},
			{Keys: bson.D{{Key: "appleId", Value: 1}}, Options: sparseUnique},
		},
		StoresCollection: {
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		},
		RoutesCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		DeliveriesCollection: {
			{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PropertiesCollection: {
			{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
