package adaptive

import (
	"testing"

	"practice-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustmentMode_CountdownToNormal(t *testing.T) {
	manager := NewManager(nil)
	progress := newProgress()

	require.True(t, manager.EnterAdjustmentMode(progress))
	assert.Equal(t, models.AdjustmentMode{IsInAdjustmentMode: true, AdjustmentPracticesRemaining: 5}, progress.Adjustment())

	completions := 0
	for k := 1; k <= 5; k++ {
		result, err := manager.ApplySubmission(progress, practiceOf(models.ExerciseVocabulary, 1, 1), k%2 == 0, testNow)
		require.NoError(t, err)

		if result.AdjustmentCompleted {
			completions++
		}
		if k < 5 {
			assert.True(t, progress.IsInAdjustmentMode, "after %d submissions", k)
			assert.Equal(t, 5-k, progress.AdjustmentPracticesRemaining)
		}
	}

	assert.Equal(t, 1, completions)
	assert.False(t, progress.IsInAdjustmentMode)
	assert.Equal(t, 0, progress.AdjustmentPracticesRemaining)
}

func TestAdjustmentMode_NeverNegative(t *testing.T) {
	manager := NewManager(nil)
	progress := newProgress()
	manager.EnterAdjustmentMode(progress)

	for i := 0; i < 12; i++ {
		result, err := manager.ApplySubmission(progress, practiceOf(models.ExerciseReading, 1, 1), true, testNow)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, progress.AdjustmentPracticesRemaining, 0)
		assert.Equal(t, i == 4, result.AdjustmentCompleted, "submission %d", i+1)
	}
	assert.False(t, progress.IsInAdjustmentMode)
}

func TestAdjustmentMode_EnterIsIdempotent(t *testing.T) {
	manager := NewManager(nil)
	progress := newProgress()

	require.True(t, manager.EnterAdjustmentMode(progress))
	_, err := manager.ApplySubmission(progress, practiceOf(models.ExerciseGrammar, 1, 1), true, testNow)
	require.NoError(t, err)
	require.Equal(t, 4, progress.AdjustmentPracticesRemaining)

	assert.False(t, manager.EnterAdjustmentMode(progress))
	assert.Equal(t, 4, progress.AdjustmentPracticesRemaining)
}

func TestAdjustmentMode_ArithmeticUnchanged(t *testing.T) {
	manager := NewManager(nil)
	normal := newProgress()
	adjusting := newProgress()
	manager.EnterAdjustmentMode(adjusting)

	for i := 0; i < 3; i++ {
		p := practiceOf(models.ExerciseGrammar, 2, 3)
		_, err := manager.ApplySubmission(normal, p, true, testNow)
		require.NoError(t, err)
		_, err = manager.ApplySubmission(adjusting, p, true, testNow)
		require.NoError(t, err)
	}

	assert.Equal(t, normal.SkillLevels, adjusting.SkillLevels)
	assert.Equal(t, normal.AverageDifficulty, adjusting.AverageDifficulty)
	assert.Equal(t, normal.CompletedPractices, adjusting.CompletedPractices)
}

func TestAdjustmentMode_ReenterAfterCompletion(t *testing.T) {
	manager := NewManager(&Config{MinLevel: 1, MaxLevel: 10, CorrectStep: 0.1, IncorrectStep: 0.05, AdjustmentPractices: 2, MaxBatchSize: 5})
	progress := newProgress()

	manager.EnterAdjustmentMode(progress)
	for i := 0; i < 2; i++ {
		_, err := manager.ApplySubmission(progress, practiceOf(models.ExerciseGrammar, 1, 1), false, testNow)
		require.NoError(t, err)
	}
	require.False(t, progress.IsInAdjustmentMode)

	assert.True(t, manager.EnterAdjustmentMode(progress))
	assert.Equal(t, 2, progress.AdjustmentPracticesRemaining)
}
