package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"practice-service/internal/models"
	"practice-service/internal/repository"
	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct{}

func (stubAuth) Register(_ context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	return &service.AuthResult{Token: "tok", User: &models.User{ID: "user-1", Email: in.Email}}, nil
}

func (stubAuth) Login(_ context.Context, email, password string) (*service.AuthResult, error) {
	if password != "secret1" {
		return nil, service.ErrInvalidCredentials
	}
	return &service.AuthResult{Token: "tok", User: &models.User{ID: "user-1", Email: email}}, nil
}

func (stubAuth) Me(_ context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID}, nil
}

type stubPractice struct {
	lastGenerate service.GenerateInput
	generateErr  error
	submitErr    error
	adjustment   models.AdjustmentMode

	// unknownAdjustment makes Submit report no adjustment state.
	unknownAdjustment bool
}

func (s *stubPractice) Generate(_ context.Context, in service.GenerateInput) (*service.GenerateResult, error) {
	s.lastGenerate = in
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	n := in.BatchSize
	if n < 1 {
		n = 1
	}
	practices := make([]*models.Practice, n)
	for i := range practices {
		practices[i] = &models.Practice{ID: "p" + string(rune('1'+i)), UserID: in.UserID, Type: in.Type}
	}
	return &service.GenerateResult{Practices: practices, Adjustment: s.adjustment}, nil
}

func (s *stubPractice) Submit(_ context.Context, userID, practiceID, answer string) (*service.SubmitResult, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	now := time.Now()
	correct := true
	result := &service.SubmitResult{
		Practice:            &models.Practice{ID: practiceID, UserID: userID, UserAnswer: &answer, IsCorrect: &correct, CompletedAt: &now},
		Feedback:            "Well done!",
		IsCorrect:           true,
		Evaluated:           true,
		Adjustment:          &models.AdjustmentMode{},
		AdjustmentCompleted: true,
	}
	if s.unknownAdjustment {
		result.Adjustment = nil
		result.AdjustmentCompleted = false
	}
	return result, nil
}

func (s *stubPractice) EnterAdjustmentMode(context.Context, string, string) (models.AdjustmentMode, error) {
	return models.AdjustmentMode{IsInAdjustmentMode: true, AdjustmentPracticesRemaining: 5}, nil
}

func (s *stubPractice) History(_ context.Context, requesterID, userID string, page, limit int) (*service.HistoryPage, error) {
	if requesterID != userID {
		return nil, service.ErrForbidden
	}
	return &service.HistoryPage{Practices: []models.Practice{{ID: "p1"}}, Total: 21, Page: page, Pages: 3}, nil
}

func (s *stubPractice) AllHistory(_ context.Context, requesterID, userID string) ([]models.Practice, error) {
	if requesterID != userID {
		return nil, service.ErrForbidden
	}
	return []models.Practice{{ID: "p1", Content: "hola"}}, nil
}

func (s *stubPractice) Progress(_ context.Context, requesterID, userID, subject string) (*models.UserProgress, error) {
	if requesterID != userID {
		return nil, service.ErrForbidden
	}
	if subject == "klingon" {
		return nil, repository.ErrNotFound
	}
	return models.NewUserProgress(userID, subject, nil, nil, time.Now()), nil
}

func (s *stubPractice) UpdatePreferences(_ context.Context, requesterID, userID, subject string, preferred, challenges []string) (*models.UserProgress, error) {
	return models.NewUserProgress(userID, subject, preferred, challenges, time.Now()), nil
}

type stubFeedback struct{ limited bool }

func (s *stubFeedback) Submit(_ context.Context, userID string, in service.FeedbackInput) (*models.Feedback, error) {
	if s.limited {
		return nil, service.ErrRateLimited
	}
	return &models.Feedback{ID: "f1", UserID: userID, Message: in.Message}, nil
}

func (s *stubFeedback) RetryAfter(context.Context, string) time.Duration { return 90 * time.Second }

type testServer struct {
	router   *gin.Engine
	practice *stubPractice
	feedback *stubFeedback
	token    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens := service.NewTokenService("test-secret", time.Hour)
	token, err := tokens.Generate(&models.User{ID: "user-1", Email: "a@b.co"})
	require.NoError(t, err)

	ts := &testServer{practice: &stubPractice{}, feedback: &stubFeedback{}, token: token}
	ts.router = SetupRouter(RouterConfig{ServiceName: "practice-service", AllowedOrigins: []string{"http://localhost:3000"}, Tokens: tokens}, Handlers{
		Auth:     NewAuthHandler(stubAuth{}),
		Practice: NewPracticeHandler(ts.practice),
		Progress: NewProgressHandler(ts.practice),
		Feedback: NewFeedbackHandler(ts.feedback),
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var decoded map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	return w, decoded
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w, body := ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)
	ts.practice.adjustment = models.AdjustmentMode{IsInAdjustmentMode: true, AdjustmentPracticesRemaining: 3}

	w, body := ts.do(t, http.MethodPost, "/api/practice/generate", map[string]any{
		"userId": "user-1", "type": "grammar", "difficulty": 4.5, "batchSize": 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, "p1", body["data"].(map[string]any)["id"])
	assert.Len(t, body["batch"], 2)
	assert.Equal(t, map[string]any{"isInAdjustmentMode": true, "adjustmentPracticesRemaining": float64(3)}, body["adjustmentMode"])

	in := ts.practice.lastGenerate
	assert.Equal(t, "user-1", in.UserID)
	assert.Equal(t, models.ExerciseGrammar, in.Type)
	require.NotNil(t, in.Difficulty)
	assert.Equal(t, 4.5, *in.Difficulty)
	assert.Nil(t, in.Complexity)
}

func TestGenerate_Errors(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodPost, "/api/practice/generate", map[string]any{"userId": "someone-else", "type": "grammar"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = ts.do(t, http.MethodPost, "/api/practice/generate", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.practice.generateErr = &service.ValidationError{Message: `unknown exercise type "poetry"`}
	w, body := ts.do(t, http.MethodPost, "/api/practice/generate", map[string]any{"type": "poetry"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, `unknown exercise type "poetry"`, body["message"])

	ts.token = ""
	w, _ = ts.do(t, http.MethodPost, "/api/practice/generate", map[string]any{"type": "grammar"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmit(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, http.MethodPost, "/api/practice/submit", map[string]any{"practiceId": "p1", "answer": "hola"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Well done!", body["feedback"])
	assert.Equal(t, true, body["isCorrect"])
	assert.Equal(t, true, body["evaluated"])
	assert.Equal(t, true, body["adjustmentCompleted"])
	assert.Equal(t, "hola", body["practice"].(map[string]any)["userAnswer"])
	assert.Equal(t, map[string]any{"isInAdjustmentMode": false, "adjustmentPracticesRemaining": float64(0)}, body["adjustmentMode"])
}

func TestSubmit_UnknownAdjustmentIsOmitted(t *testing.T) {
	ts := newTestServer(t)
	ts.practice.unknownAdjustment = true

	w, body := ts.do(t, http.MethodPost, "/api/practice/submit", map[string]any{"practiceId": "p1", "answer": "hola"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["evaluated"])
	assert.NotContains(t, body, "adjustmentMode")
}

func TestSubmit_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{repository.ErrPracticeClosed, http.StatusConflict},
		{repository.ErrNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		ts := newTestServer(t)
		ts.practice.submitErr = tc.err
		w, body := ts.do(t, http.MethodPost, "/api/practice/submit", map[string]any{"practiceId": "p1", "answer": "x"})
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Equal(t, false, body["success"])
	}

	ts := newTestServer(t)
	w, _ := ts.do(t, http.MethodPost, "/api/practice/submit", map[string]any{"practiceId": "p1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, http.MethodGet, "/api/practice/history/user-1?page=2&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["practices"], 1)
	assert.Equal(t, map[string]any{"total": float64(21), "page": float64(2), "pages": float64(3)}, body["pagination"])

	w, _ = ts.do(t, http.MethodGet, "/api/practice/history/user-2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestExportHistory(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodGet, "/api/practice/history/user-1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, "PK", w.Body.String()[:2])
}

func TestEnterAdjustmentMode(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []any{nil, map[string]any{"learningSubject": "spanish"}} {
		w, resp := ts.do(t, http.MethodPost, "/api/practice/enter-adjustment-mode", body)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, resp["success"])
		assert.Equal(t, map[string]any{"isInAdjustmentMode": true, "adjustmentPracticesRemaining": float64(5)}, resp["adjustmentMode"])
	}
}

func TestProgress(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, http.MethodGet, "/api/progress/user-1?learningSubject=spanish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "spanish", body["data"].(map[string]any)["learningSubject"])

	w, _ = ts.do(t, http.MethodGet, "/api/progress/user-1?learningSubject=klingon", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = ts.do(t, http.MethodPut, "/api/progress/user-1/preferences", map[string]any{"preferredCategories": []string{"travel"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"travel"}, body["data"].(map[string]any)["preferredCategories"])
}

func TestFeedback(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodPost, "/api/feedback", map[string]any{"message": "love it"})
	assert.Equal(t, http.StatusCreated, w.Code)

	ts.feedback.limited = true
	w, body := ts.do(t, http.MethodPost, "/api/feedback", map[string]any{"message": "again"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "90", w.Header().Get("Retry-After"))
	assert.Equal(t, service.ErrRateLimited.Error(), body["message"])
}

func TestAuthRoutes(t *testing.T) {
	ts := newTestServer(t)

	w, body := ts.do(t, http.MethodPost, "/api/auth/register", map[string]any{"email": "a@b.co", "password": "secret1", "name": "A"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "tok", body["data"].(map[string]any)["token"])

	w, _ = ts.do(t, http.MethodPost, "/api/auth/login", map[string]any{"email": "a@b.co", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body = ts.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", body["data"].(map[string]any)["id"])
}
