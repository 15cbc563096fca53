package repository

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the lookup indexes every collection relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	byCollection := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"userprogresses": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "learningSubject", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		"practices": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "completedAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		},
		"feedbacks": {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"invitationcodes": {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for collection, models := range byCollection {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
		log.Printf("Indexes ready on %s: %v", collection, names)
	}
	return nil
}
