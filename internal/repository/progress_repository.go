package repository

import (
	"context"
	"errors"
	"time"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ProgressRepository struct {
	Col *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{Col: db.Collection("userprogresses")}
}

func (r *ProgressRepository) FindByUser(ctx context.Context, userID, learningSubject string) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := r.Col.FindOne(ctx, bson.M{"userId": userID, "learningSubject": learningSubject}).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) Create(ctx context.Context, progress *models.UserProgress) error {
	res, err := r.Col.InsertOne(ctx, progress)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	progress.ID = hexID(res.InsertedID)
	return nil
}

// Update replaces the stored document only if its version still matches
// progress.Version; otherwise ErrVersionConflict is returned and nothing is
// written. On success progress.Version is advanced.
func (r *ProgressRepository) Update(ctx context.Context, progress *models.UserProgress) error {
	oid, err := objectID(progress.ID)
	if err != nil {
		return err
	}

	doc := *progress
	doc.ID = ""
	doc.Version = progress.Version + 1
	doc.UpdatedAt = time.Now()

	res, err := r.Col.ReplaceOne(ctx, bson.M{"_id": oid, "version": progress.Version}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	progress.Version = doc.Version
	progress.UpdatedAt = doc.UpdatedAt
	return nil
}
