package exercise

import "practice-service/internal/llm"

var exerciseSchema = &llm.Schema{
	Name:        "language-exercise",
	Description: "A single language-learning exercise",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content":      map[string]any{"type": "string", "minLength": 1},
			"translation":  map[string]any{"type": "string"},
			"categories":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"questionType": map[string]any{"type": "string"},
			"options":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required":             []string{"content", "translation", "categories", "questionType", "options"},
		"additionalProperties": false,
	},
}

var evaluationSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Verdict on a learner's answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"isCorrect": map[string]any{"type": "boolean"},
			"feedback":  map[string]any{"type": "string"},
		},
		"required":             []string{"isCorrect", "feedback"},
		"additionalProperties": false,
	},
}
