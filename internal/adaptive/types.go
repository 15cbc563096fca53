package adaptive

import "practice-service/internal/models"

// Config holds the tuning of the progression rule and the adjustment window.
type Config struct {
	MinLevel float64 `json:"min_level"`
	MaxLevel float64 `json:"max_level"`

	// CorrectStep raises a skill level, IncorrectStep lowers it.
	CorrectStep   float64 `json:"correct_step"`
	IncorrectStep float64 `json:"incorrect_step"`

	AdjustmentPractices int `json:"adjustment_practices"`
	MaxBatchSize        int `json:"max_batch_size"`
}

// SubmissionResult describes what a single answer did to a UserProgress.
type SubmissionResult struct {
	Type                models.ExerciseType   `json:"type"`
	IsCorrect           bool                  `json:"isCorrect"`
	SkillAdjustment     float64               `json:"skillAdjustment"`
	PreviousLevel       float64               `json:"previousLevel"`
	NewLevel            float64               `json:"newLevel"`
	CompletedPractices  int                   `json:"completedPractices"`
	AverageDifficulty   float64               `json:"averageDifficulty"`
	AverageComplexity   float64               `json:"averageComplexity"`
	Adjustment          models.AdjustmentMode `json:"adjustmentMode"`
	AdjustmentCompleted bool                  `json:"adjustmentCompleted"`
}

// Targets are the levels the next exercise is requested at.
type Targets struct {
	Difficulty float64
	Complexity float64
}

func DefaultConfig() *Config {
	return &Config{
		MinLevel:            1,
		MaxLevel:            10,
		CorrectStep:         0.1,
		IncorrectStep:       0.05, // half the correct step
		AdjustmentPractices: 5,
		MaxBatchSize:        5,
	}
}
