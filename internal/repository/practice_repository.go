package repository

import (
	"context"
	"errors"
	"time"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PracticeRepository struct {
	Col *mongo.Collection
}

func NewPracticeRepository(db *mongo.Database) *PracticeRepository {
	return &PracticeRepository{Col: db.Collection("practices")}
}

func (r *PracticeRepository) CreateMany(ctx context.Context, practices []*models.Practice) error {
	if len(practices) == 0 {
		return nil
	}
	docs := make([]interface{}, len(practices))
	for i, p := range practices {
		docs[i] = p
	}
	res, err := r.Col.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range res.InsertedIDs {
		practices[i].ID = hexID(id)
	}
	return nil
}

func (r *PracticeRepository) FindByID(ctx context.Context, id string) (*models.Practice, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var practice models.Practice
	if err := r.Col.FindOne(ctx, bson.M{"_id": oid}).Decode(&practice); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &practice, nil
}

// Close records the answer on an open practice. The filter on completedAt
// makes closing a one-shot: a second call gets ErrPracticeClosed.
func (r *PracticeRepository) Close(ctx context.Context, id, answer string, isCorrect bool, feedback string, at time.Time) (*models.Practice, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid, "completedAt": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{
		"userAnswer":  answer,
		"isCorrect":   isCorrect,
		"feedback":    feedback,
		"completedAt": at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var practice models.Practice
	err = r.Col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&practice)
	if err == nil {
		return &practice, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, ErrPracticeClosed
}

// ListCompletedByUser returns one page of closed practices, newest first,
// with the total count. limit <= 0 returns everything.
func (r *PracticeRepository) ListCompletedByUser(ctx context.Context, userID string, page, limit int) ([]models.Practice, int64, error) {
	filter := bson.M{"userId": userID, "completedAt": bson.M{"$exists": true}}

	total, err := r.Col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "completedAt", Value: -1}})
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}

	cur, err := r.Col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	practices := []models.Practice{}
	if err := cur.All(ctx, &practices); err != nil {
		return nil, 0, err
	}
	return practices, total, nil
}

// DeleteOpenBefore removes never-answered practices created before cutoff.
func (r *PracticeRepository) DeleteOpenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.Col.DeleteMany(ctx, bson.M{
		"completedAt": bson.M{"$exists": false},
		"createdAt":   bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
