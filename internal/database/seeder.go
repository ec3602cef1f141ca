// internal/database/seeder.go
package database

import (
	"context"
	"errors"
	"time"

	"go-quickstart/config"
	"go-quickstart/internal/auth"
	"go-quickstart/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var ErrSeedPasswordMissing = errors.New("seed admin password is required")

// SeedAdmin creates the configured admin account if it does not exist yet.
func SeedAdmin(ctx context.Context, db *mongo.Database, cfg config.SeedConfig, log *zap.Logger) error {
	if cfg.AdminEmail == "" {
		return nil
	}

	userCollection := db.Collection(UsersCollection)

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": cfg.AdminEmail})
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin already exists, seeding skipped", zap.String("email", cfg.AdminEmail))
		return nil
	}
	if cfg.AdminPassword == "" {
		return ErrSeedPasswordMissing
	}

	log.Info("admin not found, seeding", zap.String("email", cfg.AdminEmail))
	hashedPassword, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		Password:     hashedPassword,
		Role:         models.RoleAdmin,
		IsActive:     true,
		IsAdmin:      true,
		ProfilePhoto: []models.Photo{},
		CreatedAt:    time.Now(),
	}

	if _, err = userCollection.InsertOne(ctx, admin); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return err
	}

	log.Info("admin seeded successfully")
	return nil
}
