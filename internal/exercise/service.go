package exercise

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"practice-service/internal/llm"
)

// Service is the generate/evaluate capability backed by an LLM provider.
type Service struct {
	provider  llm.Provider
	maxTokens int
}

func NewService(provider llm.Provider) *Service {
	return &Service{provider: provider, maxTokens: 1024}
}

// Generate asks the provider for one exercise. Failures are returned as
// *GenerationError.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*Exercise, error) {
	resp, err := s.provider.Generate(ctx, llm.UserPrompt(generatorSystem, buildGeneratePrompt(req), exerciseSchema, s.maxTokens))
	if err != nil {
		return nil, &GenerationError{Type: req.Type, Err: err}
	}

	var ex Exercise
	if err := json.Unmarshal(resp.Content, &ex); err != nil {
		return nil, &GenerationError{Type: req.Type, Err: fmt.Errorf("decode exercise: %w", err)}
	}
	if strings.TrimSpace(ex.Content) == "" {
		return nil, &GenerationError{Type: req.Type, Err: fmt.Errorf("empty exercise content")}
	}
	if ex.Options == nil {
		ex.Options = []string{}
	}
	if ex.QuestionType == "" {
		ex.QuestionType = req.QuestionType
	}
	return &ex, nil
}

// Evaluate asks the provider to judge an answer. Failures are returned as
// *EvaluationError.
func (s *Service) Evaluate(ctx context.Context, req EvaluateRequest) (*Evaluation, error) {
	resp, err := s.provider.Generate(ctx, llm.UserPrompt(evaluatorSystem, buildEvaluatePrompt(req), evaluationSchema, s.maxTokens))
	if err != nil {
		return nil, &EvaluationError{Type: req.Type, Err: err}
	}

	var ev Evaluation
	if err := json.Unmarshal(resp.Content, &ev); err != nil {
		return nil, &EvaluationError{Type: req.Type, Err: fmt.Errorf("decode evaluation: %w", err)}
	}
	return &ev, nil
}

// GenerateOrFallback never fails; a provider error yields the canned
// exercise for the requested type with Fallback set.
func (s *Service) GenerateOrFallback(ctx context.Context, req GenerateRequest) Outcome[Exercise] {
	ex, err := s.Generate(ctx, req)
	if err != nil {
		log.Printf("Error generating exercise, serving fallback: %v", err)
		return Outcome[Exercise]{Value: FallbackExercise(req.Type), Fallback: true, Err: err}
	}
	return Outcome[Exercise]{Value: *ex}
}

// EvaluateOrFallback never fails; a provider error yields the generic
// apology with IsCorrect false and Fallback set.
func (s *Service) EvaluateOrFallback(ctx context.Context, req EvaluateRequest) Outcome[Evaluation] {
	ev, err := s.Evaluate(ctx, req)
	if err != nil {
		log.Printf("Error evaluating answer, serving fallback: %v", err)
		return Outcome[Evaluation]{Value: FallbackEvaluation(), Fallback: true, Err: err}
	}
	return Outcome[Evaluation]{Value: *ev}
}
