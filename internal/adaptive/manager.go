package adaptive

import (
	"fmt"
	"time"

	"practice-service/internal/models"
)

// Manager applies the progression rule and drives adjustment mode.
// It is stateless; all state lives in the UserProgress it is handed.
type Manager struct {
	config *Config
}

func NewManager(config *Config) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	return &Manager{config: config}
}

func (m *Manager) Config() Config {
	return *m.config
}

// ApplySubmission updates progress for one evaluated answer to practice.
func (m *Manager) ApplySubmission(progress *models.UserProgress, practice *models.Practice, isCorrect bool, now time.Time) (*SubmissionResult, error) {
	if progress == nil || practice == nil {
		return nil, fmt.Errorf("progress and practice are required")
	}
	if !practice.Type.Valid() {
		return nil, fmt.Errorf("unknown exercise type %q", practice.Type)
	}
	if progress.SkillLevels == nil {
		progress.SkillLevels = make(map[models.ExerciseType]float64, len(models.ExerciseTypes))
	}

	adjustment := -m.config.IncorrectStep
	if isCorrect {
		adjustment = m.config.CorrectStep
	}

	previous := progress.SkillLevel(practice.Type)
	level := m.clamp(previous + adjustment)
	progress.SkillLevels[practice.Type] = level
	progress.CurrentDifficulty = level

	progress.CompletedPractices++
	n := float64(progress.CompletedPractices)
	progress.AverageDifficulty = (progress.AverageDifficulty*(n-1) + practice.Difficulty) / n
	progress.AverageComplexity = (progress.AverageComplexity*(n-1) + practice.Complexity) / n

	progress.LastActivity = now

	completed := m.countdown(progress)

	return &SubmissionResult{
		Type:                practice.Type,
		IsCorrect:           isCorrect,
		SkillAdjustment:     adjustment,
		PreviousLevel:       previous,
		NewLevel:            level,
		CompletedPractices:  progress.CompletedPractices,
		AverageDifficulty:   progress.AverageDifficulty,
		AverageComplexity:   progress.AverageComplexity,
		Adjustment:          progress.Adjustment(),
		AdjustmentCompleted: completed,
	}, nil
}

// NextTargets resolves the levels for the next exercise of type t.
// Difficulty comes from the per-type skill level, complexity from
// CurrentComplexity. Explicit values win over stored ones; both are clamped.
func (m *Manager) NextTargets(progress *models.UserProgress, t models.ExerciseType, difficulty, complexity *float64) Targets {
	targets := Targets{
		Difficulty: progress.SkillLevel(t),
		Complexity: progress.CurrentComplexity,
	}
	if difficulty != nil {
		targets.Difficulty = *difficulty
	}
	if complexity != nil {
		targets.Complexity = *complexity
	}
	targets.Difficulty = m.clamp(targets.Difficulty)
	targets.Complexity = m.clamp(targets.Complexity)
	return targets
}

// BatchSize returns how many exercises to generate for one request.
// Adjustment mode always generates one at a time.
func (m *Manager) BatchSize(progress *models.UserProgress, requested int) int {
	if progress != nil && progress.IsInAdjustmentMode {
		return 1
	}
	if requested < 1 {
		return 1
	}
	if requested > m.config.MaxBatchSize {
		return m.config.MaxBatchSize
	}
	return requested
}

func (m *Manager) clamp(v float64) float64 {
	return Clamp(v, m.config.MinLevel, m.config.MaxLevel)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
