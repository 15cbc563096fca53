package exercise

import (
	"fmt"

	"practice-service/internal/models"
)

type GenerateRequest struct {
	Type                models.ExerciseType
	LearningSubject     string
	Difficulty          float64
	Complexity          float64
	PreferredCategories []string
	ChallengeAreas      []string
	QuestionType        string
}

type Exercise struct {
	Content      string   `json:"content"`
	Translation  string   `json:"translation"`
	Categories   []string `json:"categories"`
	QuestionType string   `json:"questionType"`
	Options      []string `json:"options"`
}

type EvaluateRequest struct {
	Content         string
	UserAnswer      string
	Type            models.ExerciseType
	Difficulty      float64
	LearningSubject string
}

type Evaluation struct {
	IsCorrect bool   `json:"isCorrect"`
	Feedback  string `json:"feedback"`
}

// Outcome is a result that is always renderable. Fallback reports whether
// Value is canned content substituted after Err.
type Outcome[T any] struct {
	Value    T
	Fallback bool
	Err      error
}

// GenerationError wraps a provider failure while generating an exercise.
type GenerationError struct {
	Type models.ExerciseType
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s exercise: %v", e.Type, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// EvaluationError wraps a provider failure while judging an answer.
type EvaluationError struct {
	Type models.ExerciseType
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate %s answer: %v", e.Type, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
