package handlers

import (
	"context"
	"time"

	"practice-service/internal/models"
	"practice-service/internal/service"
)

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

type PracticeService interface {
	Generate(ctx context.Context, in service.GenerateInput) (*service.GenerateResult, error)
	Submit(ctx context.Context, userID, practiceID, answer string) (*service.SubmitResult, error)
	EnterAdjustmentMode(ctx context.Context, userID, learningSubject string) (models.AdjustmentMode, error)
	History(ctx context.Context, requesterID, userID string, page, limit int) (*service.HistoryPage, error)
	AllHistory(ctx context.Context, requesterID, userID string) ([]models.Practice, error)
	Progress(ctx context.Context, requesterID, userID, learningSubject string) (*models.UserProgress, error)
	UpdatePreferences(ctx context.Context, requesterID, userID, learningSubject string, preferred, challenges []string) (*models.UserProgress, error)
}

type FeedbackService interface {
	Submit(ctx context.Context, userID string, in service.FeedbackInput) (*models.Feedback, error)
	RetryAfter(ctx context.Context, userID string) time.Duration
}
