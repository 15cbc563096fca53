package service

import (
	"context"
	"time"

	"practice-service/internal/exercise"
	"practice-service/internal/models"
)

// Stores are declared here, next to their consumers, so the services can be
// exercised against in-memory doubles.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type ProgressStore interface {
	FindByUser(ctx context.Context, userID, learningSubject string) (*models.UserProgress, error)
	Create(ctx context.Context, progress *models.UserProgress) error
	Update(ctx context.Context, progress *models.UserProgress) error
}

type PracticeStore interface {
	CreateMany(ctx context.Context, practices []*models.Practice) error
	FindByID(ctx context.Context, id string) (*models.Practice, error)
	Close(ctx context.Context, id, answer string, isCorrect bool, feedback string, at time.Time) (*models.Practice, error)
	ListCompletedByUser(ctx context.Context, userID string, page, limit int) ([]models.Practice, int64, error)
	DeleteOpenBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type FeedbackStore interface {
	Create(ctx context.Context, feedback *models.Feedback) error
}

type InvitationStore interface {
	Redeem(ctx context.Context, code, redeemedBy string, now time.Time) error
	Release(ctx context.Context, code, redeemedBy string) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	RetryAfter(ctx context.Context, key string) time.Duration
}

// Exercises is the generate/evaluate capability.
type Exercises interface {
	GenerateOrFallback(ctx context.Context, req exercise.GenerateRequest) exercise.Outcome[exercise.Exercise]
	EvaluateOrFallback(ctx context.Context, req exercise.EvaluateRequest) exercise.Outcome[exercise.Evaluation]
}
