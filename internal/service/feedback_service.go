package service

import (
	"context"
	"log"
	"strings"
	"time"

	"practice-service/internal/event"
	"practice-service/internal/metrics"
	"practice-service/internal/models"
)

type FeedbackInput struct {
	Message  string `json:"message"`
	Rating   int    `json:"rating"`
	Category string `json:"category"`
}

type FeedbackService struct {
	store     FeedbackStore
	limiter   RateLimiter
	publisher event.Publisher
	limit     int
	window    time.Duration
}

// NewFeedbackService builds the service. A nil limiter disables rate
// limiting.
func NewFeedbackService(store FeedbackStore, limiter RateLimiter, publisher event.Publisher, limit int, window time.Duration) *FeedbackService {
	if publisher == nil {
		publisher = event.Noop{}
	}
	return &FeedbackService{store: store, limiter: limiter, publisher: publisher, limit: limit, window: window}
}

func (s *FeedbackService) Submit(ctx context.Context, userID string, in FeedbackInput) (*models.Feedback, error) {
	in.Message = strings.TrimSpace(in.Message)
	if in.Message == "" {
		return nil, invalidf("message is required")
	}
	if len(in.Message) > 2000 {
		return nil, invalidf("message must be at most 2000 characters")
	}
	if in.Rating < 0 || in.Rating > 5 {
		return nil, invalidf("rating must be between 1 and 5")
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, "feedback:"+userID, s.limit, s.window)
		if err != nil {
			// Redis trouble should not block feedback.
			log.Printf("Error checking feedback rate limit: %v", err)
		} else if !allowed {
			metrics.FeedbackRejected.Inc()
			return nil, ErrRateLimited
		}
	}

	feedback := &models.Feedback{
		UserID:    userID,
		Message:   in.Message,
		Rating:    in.Rating,
		Category:  strings.TrimSpace(in.Category),
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, feedback); err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, event.FeedbackCreated, map[string]any{
		"userId":     userID,
		"feedbackId": feedback.ID,
		"rating":     feedback.Rating,
	}); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", event.FeedbackCreated, err)
	}
	return feedback, nil
}

// RetryAfter reports when userID may submit feedback again.
func (s *FeedbackService) RetryAfter(ctx context.Context, userID string) time.Duration {
	if s.limiter == nil {
		return 0
	}
	return s.limiter.RetryAfter(ctx, "feedback:"+userID)
}
