package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"practice-service/internal/adaptive"
	"practice-service/internal/event"
	"practice-service/internal/exercise"
	"practice-service/internal/metrics"
	"practice-service/internal/models"
	"practice-service/internal/repository"

	"golang.org/x/sync/errgroup"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
	progressWriteTries  = 3
)

// errUnchanged lets a progress mutation skip the write.
var errUnchanged = errors.New("progress unchanged")

type GenerateInput struct {
	UserID              string
	LearningSubject     string
	Type                models.ExerciseType
	Difficulty          *float64
	Complexity          *float64
	PreferredCategories []string
	ChallengeAreas      []string
	QuestionType        string
	BatchSize           int
}

type GenerateResult struct {
	Practices  []*models.Practice
	Adjustment models.AdjustmentMode
}

type SubmitResult struct {
	Practice  *models.Practice
	Feedback  string
	IsCorrect bool

	// Evaluated is false when the evaluator was unavailable. The practice
	// then stays open and progress is untouched.
	Evaluated bool

	// Adjustment is the stored adjustment state after the submission, or
	// nil when it could not be read.
	Adjustment          *models.AdjustmentMode
	AdjustmentCompleted bool
	Progression         *adaptive.SubmissionResult
}

type HistoryPage struct {
	Practices []models.Practice
	Total     int64
	Page      int
	Pages     int
}

type PracticeService struct {
	practices PracticeStore
	progress  ProgressStore
	users     UserStore
	exercises Exercises
	manager   *adaptive.Manager
	publisher event.Publisher
	now       func() time.Time
}

func NewPracticeService(practices PracticeStore, progress ProgressStore, users UserStore, exercises Exercises, manager *adaptive.Manager, publisher event.Publisher) *PracticeService {
	if manager == nil {
		manager = adaptive.NewManager(nil)
	}
	if publisher == nil {
		publisher = event.Noop{}
	}
	return &PracticeService{
		practices: practices,
		progress:  progress,
		users:     users,
		exercises: exercises,
		manager:   manager,
		publisher: publisher,
		now:       time.Now,
	}
}

// Generate creates one or more practices at the user's current levels.
// Provider failures degrade to fallback exercises, never to an error.
func (s *PracticeService) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if !in.Type.Valid() {
		return nil, invalidf("unknown exercise type %q", in.Type)
	}
	subject, err := s.resolveSubject(ctx, in.UserID, in.LearningSubject)
	if err != nil {
		return nil, err
	}
	progress, err := s.loadOrCreateProgress(ctx, in.UserID, subject)
	if err != nil {
		return nil, err
	}

	targets := s.manager.NextTargets(progress, in.Type, in.Difficulty, in.Complexity)
	size := s.manager.BatchSize(progress, in.BatchSize)

	req := exercise.GenerateRequest{
		Type:                in.Type,
		LearningSubject:     subject,
		Difficulty:          targets.Difficulty,
		Complexity:          targets.Complexity,
		PreferredCategories: orDefault(in.PreferredCategories, progress.PreferredCategories),
		ChallengeAreas:      orDefault(in.ChallengeAreas, progress.ChallengeAreas),
		QuestionType:        in.QuestionType,
	}

	created := s.now()
	practices := make([]*models.Practice, size)
	g, gctx := errgroup.WithContext(ctx)
	for i := range practices {
		g.Go(func() error {
			out := s.exercises.GenerateOrFallback(gctx, req)
			practices[i] = newPractice(in.UserID, subject, targets, in.Type, out, created)
			outcome := "llm"
			if out.Fallback {
				outcome = "fallback"
			}
			metrics.PracticesGenerated.WithLabelValues(string(in.Type), outcome).Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.practices.CreateMany(ctx, practices); err != nil {
		return nil, fmt.Errorf("error saving practices: %w", err)
	}

	ids := make([]string, len(practices))
	for i, p := range practices {
		ids[i] = p.ID
	}
	s.publish(ctx, event.PracticeGenerated, map[string]any{
		"userId":          in.UserID,
		"learningSubject": subject,
		"type":            in.Type,
		"practiceIds":     ids,
	})

	return &GenerateResult{Practices: practices, Adjustment: progress.Adjustment()}, nil
}

// Submit evaluates an answer, closes the practice and applies the
// progression rule. A practice can only be closed once.
func (s *PracticeService) Submit(ctx context.Context, userID, practiceID, answer string) (*SubmitResult, error) {
	if strings.TrimSpace(practiceID) == "" {
		return nil, invalidf("practiceId is required")
	}
	if strings.TrimSpace(answer) == "" {
		return nil, invalidf("answer is required")
	}

	practice, err := s.practices.FindByID(ctx, practiceID)
	if err != nil {
		return nil, err
	}
	if practice.UserID != userID {
		return nil, ErrForbidden
	}
	if practice.IsClosed() {
		return nil, repository.ErrPracticeClosed
	}

	out := s.exercises.EvaluateOrFallback(ctx, exercise.EvaluateRequest{
		Content:         practice.Content,
		UserAnswer:      answer,
		Type:            practice.Type,
		Difficulty:      practice.Difficulty,
		LearningSubject: practice.LearningSubject,
	})

	if out.Fallback {
		metrics.PracticesSubmitted.WithLabelValues(string(practice.Type), "unevaluated").Inc()
		return &SubmitResult{
			Practice:   practice,
			Feedback:   out.Value.Feedback,
			Adjustment: s.storedAdjustment(ctx, userID, practice.LearningSubject),
		}, nil
	}

	now := s.now()
	closed, err := s.practices.Close(ctx, practice.ID, answer, out.Value.IsCorrect, out.Value.Feedback, now)
	if err != nil {
		return nil, err
	}

	outcome := "incorrect"
	if out.Value.IsCorrect {
		outcome = "correct"
	}
	metrics.PracticesSubmitted.WithLabelValues(string(practice.Type), outcome).Inc()

	result := &SubmitResult{
		Practice:  closed,
		Feedback:  out.Value.Feedback,
		IsCorrect: out.Value.IsCorrect,
		Evaluated: true,
	}

	var applied *adaptive.SubmissionResult
	progress, err := s.mutateProgress(ctx, userID, closed.LearningSubject, func(p *models.UserProgress) error {
		var applyErr error
		applied, applyErr = s.manager.ApplySubmission(p, closed, out.Value.IsCorrect, now)
		return applyErr
	})
	if err != nil {
		// The practice stays closed without a matching progress update.
		log.Printf("Error updating progress for user %s after practice %s: %v", userID, closed.ID, err)
		result.Adjustment = s.storedAdjustment(ctx, userID, closed.LearningSubject)
		return result, nil
	}

	adjustment := progress.Adjustment()
	result.Progression = applied
	result.Adjustment = &adjustment
	result.AdjustmentCompleted = applied.AdjustmentCompleted

	s.publish(ctx, event.PracticeCompleted, map[string]any{
		"userId":     userID,
		"practiceId": closed.ID,
		"type":       closed.Type,
		"isCorrect":  out.Value.IsCorrect,
		"newLevel":   applied.NewLevel,
	})
	if applied.AdjustmentCompleted {
		metrics.AdjustmentTransitions.WithLabelValues("completed").Inc()
		s.publish(ctx, event.AdjustmentCompleted, map[string]any{
			"userId":          userID,
			"learningSubject": closed.LearningSubject,
		})
	}
	return result, nil
}

// EnterAdjustmentMode opens a recalibration window and returns the
// resulting state. Calling it while a window is open changes nothing.
func (s *PracticeService) EnterAdjustmentMode(ctx context.Context, userID, learningSubject string) (models.AdjustmentMode, error) {
	subject, err := s.resolveSubject(ctx, userID, learningSubject)
	if err != nil {
		return models.AdjustmentMode{}, err
	}

	entered := false
	progress, err := s.mutateProgress(ctx, userID, subject, func(p *models.UserProgress) error {
		entered = s.manager.EnterAdjustmentMode(p)
		if !entered {
			return errUnchanged
		}
		return nil
	})
	if err != nil {
		return models.AdjustmentMode{}, err
	}

	if entered {
		metrics.AdjustmentTransitions.WithLabelValues("started").Inc()
		s.publish(ctx, event.AdjustmentStarted, map[string]any{
			"userId":          userID,
			"learningSubject": subject,
			"remaining":       progress.AdjustmentPracticesRemaining,
		})
	}
	return progress.Adjustment(), nil
}

// History lists completed practices of userID, newest first.
func (s *PracticeService) History(ctx context.Context, requesterID, userID string, page, limit int) (*HistoryPage, error) {
	if requesterID != userID {
		return nil, ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	practices, total, err := s.practices.ListCompletedByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return &HistoryPage{
		Practices: practices,
		Total:     total,
		Page:      page,
		Pages:     int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// AllHistory returns every completed practice of userID for export.
func (s *PracticeService) AllHistory(ctx context.Context, requesterID, userID string) ([]models.Practice, error) {
	if requesterID != userID {
		return nil, ErrForbidden
	}
	practices, _, err := s.practices.ListCompletedByUser(ctx, userID, 0, 0)
	return practices, err
}

func (s *PracticeService) Progress(ctx context.Context, requesterID, userID, learningSubject string) (*models.UserProgress, error) {
	if requesterID != userID {
		return nil, ErrForbidden
	}
	subject, err := s.resolveSubject(ctx, userID, learningSubject)
	if err != nil {
		return nil, err
	}
	return s.progress.FindByUser(ctx, userID, subject)
}

func (s *PracticeService) UpdatePreferences(ctx context.Context, requesterID, userID, learningSubject string, preferred, challenges []string) (*models.UserProgress, error) {
	if requesterID != userID {
		return nil, ErrForbidden
	}
	subject, err := s.resolveSubject(ctx, userID, learningSubject)
	if err != nil {
		return nil, err
	}
	return s.mutateProgress(ctx, userID, subject, func(p *models.UserProgress) error {
		if preferred != nil {
			p.PreferredCategories = preferred
		}
		if challenges != nil {
			p.ChallengeAreas = challenges
		}
		return nil
	})
}

// PurgeStale deletes practices that were generated but never answered
// within olderThan.
func (s *PracticeService) PurgeStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	deleted, err := s.practices.DeleteOpenBefore(ctx, s.now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	metrics.StalePracticesPurged.Add(float64(deleted))
	return deleted, nil
}

// mutateProgress applies fn to the latest UserProgress and writes it back
// with a version check, re-reading and retrying on conflict.
func (s *PracticeService) mutateProgress(ctx context.Context, userID, subject string, fn func(*models.UserProgress) error) (*models.UserProgress, error) {
	for attempt := 1; attempt <= progressWriteTries; attempt++ {
		progress, err := s.loadOrCreateProgress(ctx, userID, subject)
		if err != nil {
			return nil, err
		}
		if err := fn(progress); err != nil {
			if errors.Is(err, errUnchanged) {
				return progress, nil
			}
			return nil, err
		}

		err = s.progress.Update(ctx, progress)
		if err == nil {
			return progress, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		metrics.ProgressConflicts.Inc()
		log.Printf("Progress version conflict for user %s, attempt %d", userID, attempt)
	}
	return nil, repository.ErrVersionConflict
}

func (s *PracticeService) loadOrCreateProgress(ctx context.Context, userID, subject string) (*models.UserProgress, error) {
	progress, err := s.progress.FindByUser(ctx, userID, subject)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	progress = models.NewUserProgress(userID, subject, nil, nil, s.now())
	if err := s.progress.Create(ctx, progress); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.progress.FindByUser(ctx, userID, subject)
		}
		return nil, err
	}
	return progress, nil
}

// storedAdjustment re-reads the adjustment state without touching it.
func (s *PracticeService) storedAdjustment(ctx context.Context, userID, subject string) *models.AdjustmentMode {
	progress, err := s.progress.FindByUser(ctx, userID, subject)
	if err != nil {
		log.Printf("Error reading adjustment state for user %s: %v", userID, err)
		return nil
	}
	adjustment := progress.Adjustment()
	return &adjustment
}

func (s *PracticeService) resolveSubject(ctx context.Context, userID, subject string) (string, error) {
	if subject = strings.TrimSpace(subject); subject != "" {
		return subject, nil
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.LearningSubject == "" {
		return DefaultLearningSubject, nil
	}
	return user.LearningSubject, nil
}

func (s *PracticeService) publish(ctx context.Context, eventType string, payload any) {
	if err := s.publisher.Publish(ctx, eventType, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", eventType, err)
	}
}

func newPractice(userID, subject string, targets adaptive.Targets, t models.ExerciseType, out exercise.Outcome[exercise.Exercise], at time.Time) *models.Practice {
	ex := out.Value
	categories := ex.Categories
	if categories == nil {
		categories = []string{}
	}
	return &models.Practice{
		UserID:          userID,
		LearningSubject: subject,
		Type:            t,
		Content:         ex.Content,
		Translation:     ex.Translation,
		Categories:      categories,
		QuestionType:    ex.QuestionType,
		Options:         ex.Options,
		Difficulty:      targets.Difficulty,
		Complexity:      targets.Complexity,
		IsFallback:      out.Fallback,
		CreatedAt:       at,
	}
}

func orDefault(values, fallback []string) []string {
	if len(values) > 0 {
		return values
	}
	return fallback
}
