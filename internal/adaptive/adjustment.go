package adaptive

import "practice-service/internal/models"

// EnterAdjustmentMode starts a recalibration window. It is idempotent:
// when a window is already open the remaining count is left alone and
// false is returned.
func (m *Manager) EnterAdjustmentMode(progress *models.UserProgress) bool {
	if progress.IsInAdjustmentMode && progress.AdjustmentPracticesRemaining > 0 {
		return false
	}
	progress.IsInAdjustmentMode = true
	progress.AdjustmentPracticesRemaining = m.config.AdjustmentPractices
	return true
}

// countdown consumes one practice of an open window and reports whether
// this submission closed it.
func (m *Manager) countdown(progress *models.UserProgress) bool {
	if !progress.IsInAdjustmentMode {
		progress.AdjustmentPracticesRemaining = 0
		return false
	}
	if progress.AdjustmentPracticesRemaining > 0 {
		progress.AdjustmentPracticesRemaining--
	}
	if progress.AdjustmentPracticesRemaining == 0 {
		progress.IsInAdjustmentMode = false
		return true
	}
	return false
}
