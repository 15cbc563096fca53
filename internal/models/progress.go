package models

import "time"

// AdjustmentMode is the recalibration window state of a UserProgress.
type AdjustmentMode struct {
	IsInAdjustmentMode           bool `json:"isInAdjustmentMode"`
	AdjustmentPracticesRemaining int  `json:"adjustmentPracticesRemaining"`
}

// UserProgress is scoped to one user and one learning subject. Version is
// bumped on every write and used as a compare-and-set token.
//
// CurrentDifficulty is informational: it holds the skill level of the most
// recently answered type and is never read back when picking targets.
// CurrentComplexity is the default complexity for generation and is not
// moved by answer submission.
type UserProgress struct {
	ID                           string                   `bson:"_id,omitempty" json:"id"`
	UserID                       string                   `bson:"userId" json:"userId"`
	LearningSubject              string                   `bson:"learningSubject" json:"learningSubject"`
	SkillLevels                  map[ExerciseType]float64 `bson:"skillLevels" json:"skillLevels"`
	CurrentDifficulty            float64                  `bson:"currentDifficulty" json:"currentDifficulty"`
	CurrentComplexity            float64                  `bson:"currentComplexity" json:"currentComplexity"`
	CompletedPractices           int                      `bson:"completedPractices" json:"completedPractices"`
	AverageDifficulty            float64                  `bson:"averageDifficulty" json:"averageDifficulty"`
	AverageComplexity            float64                  `bson:"averageComplexity" json:"averageComplexity"`
	IsInAdjustmentMode           bool                     `bson:"isInAdjustmentMode" json:"isInAdjustmentMode"`
	AdjustmentPracticesRemaining int                      `bson:"adjustmentPracticesRemaining" json:"adjustmentPracticesRemaining"`
	PreferredCategories          []string                 `bson:"preferredCategories" json:"preferredCategories"`
	ChallengeAreas               []string                 `bson:"challengeAreas" json:"challengeAreas"`
	LastActivity                 time.Time                `bson:"lastActivity" json:"lastActivity"`
	Version                      int64                    `bson:"version" json:"version"`
	CreatedAt                    time.Time                `bson:"createdAt" json:"createdAt"`
	UpdatedAt                    time.Time                `bson:"updatedAt" json:"updatedAt"`
}

// NewUserProgress returns a fresh record with every level at 1.
func NewUserProgress(userID, learningSubject string, preferred, challenges []string, now time.Time) *UserProgress {
	levels := make(map[ExerciseType]float64, len(ExerciseTypes))
	for _, t := range ExerciseTypes {
		levels[t] = 1
	}
	if preferred == nil {
		preferred = []string{}
	}
	if challenges == nil {
		challenges = []string{}
	}
	return &UserProgress{
		UserID:              userID,
		LearningSubject:     learningSubject,
		SkillLevels:         levels,
		CurrentDifficulty:   1,
		CurrentComplexity:   1,
		PreferredCategories: preferred,
		ChallengeAreas:      challenges,
		LastActivity:        now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func (p *UserProgress) Adjustment() AdjustmentMode {
	return AdjustmentMode{
		IsInAdjustmentMode:           p.IsInAdjustmentMode,
		AdjustmentPracticesRemaining: p.AdjustmentPracticesRemaining,
	}
}

// SkillLevel returns the level for t, treating a missing entry as 1.
func (p *UserProgress) SkillLevel(t ExerciseType) float64 {
	if level, ok := p.SkillLevels[t]; ok {
		return level
	}
	return 1
}
