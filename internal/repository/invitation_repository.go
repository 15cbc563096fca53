package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type InvitationRepository struct {
	Col *mongo.Collection
}

func NewInvitationRepository(db *mongo.Database) *InvitationRepository {
	return &InvitationRepository{Col: db.Collection("invitationcodes")}
}

func (r *InvitationRepository) Create(ctx context.Context, code *models.InvitationCode) error {
	code.Code = normalizeCode(code.Code)
	res, err := r.Col.InsertOne(ctx, code)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	code.ID = hexID(res.InsertedID)
	return nil
}

// Redeem marks an unused, unexpired code as used by userID in one atomic
// update, so a code can never be redeemed twice.
func (r *InvitationRepository) Redeem(ctx context.Context, code, userID string, now time.Time) error {
	filter := bson.M{
		"code":   normalizeCode(code),
		"usedBy": bson.M{"$exists": false},
		"$or": bson.A{
			bson.M{"expiresAt": bson.M{"$exists": false}},
			bson.M{"expiresAt": bson.M{"$gt": now}},
		},
	}
	update := bson.M{"$set": bson.M{"usedBy": userID, "usedAt": now}}

	var redeemed models.InvitationCode
	if err := r.Col.FindOneAndUpdate(ctx, filter, update).Decode(&redeemed); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidInvitation
		}
		return err
	}
	return nil
}

// Release returns a code redeemed by redeemedBy to the unused pool. It is
// used when registration fails after the code was taken.
func (r *InvitationRepository) Release(ctx context.Context, code, redeemedBy string) error {
	filter := bson.M{"code": normalizeCode(code), "usedBy": redeemedBy}
	update := bson.M{"$unset": bson.M{"usedBy": "", "usedAt": ""}}
	res, err := r.Col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
