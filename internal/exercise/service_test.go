package exercise

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"practice-service/internal/llm"
	"practice-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_DecodesExercise(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"content":"¿Cómo se dice dog?","translation":"How do you say dog?","categories":["animals"],"questionType":"open","options":[]}`),
	})
	svc := NewService(mock)

	ex, err := svc.Generate(context.Background(), GenerateRequest{
		Type:                models.ExerciseVocabulary,
		LearningSubject:     "spanish",
		Difficulty:          3,
		Complexity:          2,
		PreferredCategories: []string{"animals", "food"},
		ChallengeAreas:      []string{"gender"},
	})
	require.NoError(t, err)
	assert.Equal(t, "¿Cómo se dice dog?", ex.Content)
	assert.Equal(t, []string{"animals"}, ex.Categories)

	require.Equal(t, 1, mock.CallCount())
	prompt := mock.Calls[0].Messages[0].Content
	assert.True(t, strings.Contains(prompt, "animals, food"))
	assert.True(t, strings.Contains(prompt, "gender"))
	assert.True(t, strings.Contains(prompt, "Difficulty: 3.0"))
}

func TestGenerate_MalformedReplyIsGenerationError(t *testing.T) {
	svc := NewService(llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`not json`)}))

	_, err := svc.Generate(context.Background(), GenerateRequest{Type: models.ExerciseGrammar})

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, models.ExerciseGrammar, genErr.Type)

	var invalid *llm.ErrInvalidResponse
	assert.True(t, errors.As(err, &invalid))
}

func TestGenerateOrFallback(t *testing.T) {
	svc := NewService(llm.NewMockProvider())

	out := svc.GenerateOrFallback(context.Background(), GenerateRequest{Type: models.ExerciseReading})
	assert.True(t, out.Fallback)
	assert.Error(t, out.Err)
	assert.Equal(t, FallbackExercise(models.ExerciseReading), out.Value)
	assert.NotEmpty(t, out.Value.Content)
}

func TestEvaluateOrFallback(t *testing.T) {
	testCases := []struct {
		name         string
		responses    []llm.MockResponse
		wantFallback bool
		wantCorrect  bool
	}{
		{
			name:        "provider verdict",
			responses:   []llm.MockResponse{{Content: json.RawMessage(`{"isCorrect":true,"feedback":"Well done"}`)}},
			wantCorrect: true,
		},
		{
			name:         "provider down",
			wantFallback: true,
		},
		{
			name:         "wrong shape",
			responses:    []llm.MockResponse{{Content: json.RawMessage(`{"verdict":"yes"}`)}},
			wantFallback: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(llm.NewMockProvider(tc.responses...))

			out := svc.EvaluateOrFallback(context.Background(), EvaluateRequest{
				Content:    "Translate: cat",
				UserAnswer: "gato",
				Type:       models.ExerciseVocabulary,
				Difficulty: 2,
			})
			assert.Equal(t, tc.wantFallback, out.Fallback)
			assert.Equal(t, tc.wantCorrect, out.Value.IsCorrect)
			if tc.wantFallback {
				assert.Equal(t, FallbackEvaluation(), out.Value)
				var evalErr *EvaluationError
				assert.True(t, errors.As(out.Err, &evalErr))
			}
		})
	}
}

func TestFallbackExercise_EveryType(t *testing.T) {
	for _, et := range models.ExerciseTypes {
		ex := FallbackExercise(et)
		assert.NotEmpty(t, ex.Content, "type %s", et)
	}
	assert.Equal(t, FallbackExercise(models.ExerciseVocabulary), FallbackExercise("unknown"))
}
