package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"practice-service/internal/exercise"
	"practice-service/internal/models"
	"practice-service/internal/repository"
)

type memUsers struct {
	mu        sync.Mutex
	next      int
	users     map[string]*models.User
	createErr error
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*models.User{}} }

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	m.next++
	user.ID = fmt.Sprintf("user-%d", m.next)
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// memProgress mimics the version check of the Mongo repository.
type memProgress struct {
	mu        sync.Mutex
	docs      map[string]*models.UserProgress
	conflicts int // forced conflicts before the next successful update
	updates   int
	findErr   error
}

func newMemProgress() *memProgress { return &memProgress{docs: map[string]*models.UserProgress{}} }

func progressKey(userID, subject string) string { return userID + "/" + subject }

func cloneProgress(p *models.UserProgress) *models.UserProgress {
	cp := *p
	cp.SkillLevels = make(map[models.ExerciseType]float64, len(p.SkillLevels))
	for k, v := range p.SkillLevels {
		cp.SkillLevels[k] = v
	}
	return &cp
}

func (m *memProgress) FindByUser(_ context.Context, userID, subject string) (*models.UserProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	if p, ok := m.docs[progressKey(userID, subject)]; ok {
		return cloneProgress(p), nil
	}
	return nil, repository.ErrNotFound
}

func (m *memProgress) Create(_ context.Context, p *models.UserProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := progressKey(p.UserID, p.LearningSubject)
	if _, ok := m.docs[key]; ok {
		return repository.ErrDuplicate
	}
	p.ID = "progress-" + key
	m.docs[key] = cloneProgress(p)
	return nil
}

func (m *memProgress) Update(_ context.Context, p *models.UserProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := progressKey(p.UserID, p.LearningSubject)
	stored, ok := m.docs[key]
	if !ok {
		return repository.ErrNotFound
	}
	if m.conflicts > 0 {
		m.conflicts--
		stored.Version++
		return repository.ErrVersionConflict
	}
	if stored.Version != p.Version {
		return repository.ErrVersionConflict
	}
	p.Version++
	m.docs[key] = cloneProgress(p)
	m.updates++
	return nil
}

func (m *memProgress) get(userID, subject string) *models.UserProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.docs[progressKey(userID, subject)]; ok {
		return cloneProgress(p)
	}
	return nil
}

type memPractices struct {
	mu   sync.Mutex
	next int
	docs map[string]*models.Practice
}

func newMemPractices() *memPractices { return &memPractices{docs: map[string]*models.Practice{}} }

func (m *memPractices) CreateMany(_ context.Context, practices []*models.Practice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range practices {
		m.next++
		p.ID = fmt.Sprintf("practice-%d", m.next)
		cp := *p
		m.docs[p.ID] = &cp
	}
	return nil
}

func (m *memPractices) FindByID(_ context.Context, id string) (*models.Practice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.docs[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memPractices) Close(_ context.Context, id, answer string, isCorrect bool, feedback string, at time.Time) (*models.Practice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.CompletedAt != nil {
		return nil, repository.ErrPracticeClosed
	}
	p.UserAnswer = &answer
	p.IsCorrect = &isCorrect
	p.Feedback = feedback
	p.CompletedAt = &at
	cp := *p
	return &cp, nil
}

func (m *memPractices) ListCompletedByUser(_ context.Context, userID string, page, limit int) ([]models.Practice, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Practice
	for _, p := range m.docs {
		if p.UserID == userID && p.CompletedAt != nil {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(*out[j].CompletedAt) })
	total := int64(len(out))
	if limit > 0 {
		start := (page - 1) * limit
		if start > len(out) {
			start = len(out)
		}
		end := start + limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (m *memPractices) DeleteOpenBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, p := range m.docs {
		if p.CompletedAt == nil && p.CreatedAt.Before(cutoff) {
			delete(m.docs, id)
			n++
		}
	}
	return n, nil
}

// stubExercises returns canned outcomes. evalFallback switches evaluation
// into the provider-failure path.
type stubExercises struct {
	mu           sync.Mutex
	genCalls     int
	genFallback  bool
	correct      bool
	evalFallback bool
	lastGenerate exercise.GenerateRequest
}

func (s *stubExercises) GenerateOrFallback(_ context.Context, req exercise.GenerateRequest) exercise.Outcome[exercise.Exercise] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.genCalls++
	s.lastGenerate = req
	if s.genFallback {
		return exercise.Outcome[exercise.Exercise]{Value: exercise.FallbackExercise(req.Type), Fallback: true, Err: fmt.Errorf("provider down")}
	}
	return exercise.Outcome[exercise.Exercise]{Value: exercise.Exercise{
		Content:      fmt.Sprintf("%s exercise %d", req.Type, s.genCalls),
		Translation:  "translation",
		Categories:   []string{"daily"},
		QuestionType: "open",
		Options:      []string{},
	}}
}

func (s *stubExercises) EvaluateOrFallback(_ context.Context, req exercise.EvaluateRequest) exercise.Outcome[exercise.Evaluation] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.evalFallback {
		return exercise.Outcome[exercise.Evaluation]{Value: exercise.FallbackEvaluation(), Fallback: true, Err: fmt.Errorf("provider down")}
	}
	feedback := "Not quite."
	if s.correct {
		feedback = "Well done!"
	}
	return exercise.Outcome[exercise.Evaluation]{Value: exercise.Evaluation{IsCorrect: s.correct, Feedback: feedback}}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingPublisher) Publish(_ context.Context, eventType string, _ interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	return nil
}

func (r *recordingPublisher) Close() {}

func (r *recordingPublisher) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == eventType {
			n++
		}
	}
	return n
}

type memInvitations struct {
	codes map[string]string // code -> redeemedBy
}

func (m *memInvitations) Redeem(_ context.Context, code, redeemedBy string, _ time.Time) error {
	used, ok := m.codes[code]
	if !ok || used != "" {
		return repository.ErrInvalidInvitation
	}
	m.codes[code] = redeemedBy
	return nil
}

func (m *memInvitations) Release(_ context.Context, code, redeemedBy string) error {
	if m.codes[code] != redeemedBy {
		return repository.ErrNotFound
	}
	m.codes[code] = ""
	return nil
}

type fakeLimiter struct {
	counts map[string]int
	err    error
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.counts[key]++
	return f.counts[key] <= limit, nil
}

func (f *fakeLimiter) RetryAfter(context.Context, string) time.Duration { return time.Minute }
