package repository

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func SetupIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	noteIndexes := []mongo.IndexModel{
		// Basic user-date index
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().
				SetName("user_notes_date").
				SetUnique(false),
		},
		// Category filter index
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "category", Value: 1},
			},
			Options: options.Index().
				SetName("user_category"),
		},
	}

	if _, err := db.Collection(notesCollection).Indexes().CreateMany(ctx, noteIndexes); err != nil {
		return fmt.Errorf("failed to create notes indexes: %w", err)
	}

	log.WithField("collection", notesCollection).Debug("notes indexes ready")
	return nil
}
