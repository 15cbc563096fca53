package repository

import (
	"context"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type FeedbackRepository struct {
	Col *mongo.Collection
}

func NewFeedbackRepository(db *mongo.Database) *FeedbackRepository {
	return &FeedbackRepository{Col: db.Collection("feedbacks")}
}

func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	res, err := r.Col.InsertOne(ctx, feedback)
	if err != nil {
		return err
	}
	feedback.ID = hexID(res.InsertedID)
	return nil
}
