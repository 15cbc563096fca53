package client

import "time"

type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	LearningSubject string    `json:"learningSubject"`
	CreatedAt       time.Time `json:"createdAt"`
}

type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type RegisterRequest struct {
	Email               string   `json:"email"`
	Password            string   `json:"password"`
	Name                string   `json:"name"`
	InvitationCode      string   `json:"invitationCode,omitempty"`
	LearningSubject     string   `json:"learningSubject,omitempty"`
	PreferredCategories []string `json:"preferredCategories,omitempty"`
	ChallengeAreas      []string `json:"challengeAreas,omitempty"`
}

type Practice struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	LearningSubject string     `json:"learningSubject"`
	Type            string     `json:"type"`
	Content         string     `json:"content"`
	Translation     string     `json:"translation"`
	Categories      []string   `json:"categories"`
	QuestionType    string     `json:"questionType"`
	Options         []string   `json:"options,omitempty"`
	Difficulty      float64    `json:"difficulty"`
	Complexity      float64    `json:"complexity"`
	IsFallback      bool       `json:"isFallback"`
	UserAnswer      *string    `json:"userAnswer,omitempty"`
	IsCorrect       *bool      `json:"isCorrect,omitempty"`
	Feedback        string     `json:"feedback,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// AdjustmentMode is the server's view of the recalibration window.
type AdjustmentMode struct {
	IsInAdjustmentMode           bool `json:"isInAdjustmentMode"`
	AdjustmentPracticesRemaining int  `json:"adjustmentPracticesRemaining"`
}

type GenerateRequest struct {
	UserID              string   `json:"userId,omitempty"`
	LearningSubject     string   `json:"learningSubject,omitempty"`
	Type                string   `json:"type"`
	Difficulty          *float64 `json:"difficulty,omitempty"`
	Complexity          *float64 `json:"complexity,omitempty"`
	PreferredCategories []string `json:"preferredCategories,omitempty"`
	ChallengeAreas      []string `json:"challengeAreas,omitempty"`
	QuestionType        string   `json:"questionType,omitempty"`
	BatchSize           int      `json:"batchSize,omitempty"`
}

type GenerateResponse struct {
	Success        bool           `json:"success"`
	Data           Practice       `json:"data"`
	Batch          []Practice     `json:"batch"`
	AdjustmentMode AdjustmentMode `json:"adjustmentMode"`
}

type SubmitResponse struct {
	Practice  Practice `json:"practice"`
	Feedback  string   `json:"feedback"`
	IsCorrect bool     `json:"isCorrect"`
	Evaluated bool     `json:"evaluated"`

	// AdjustmentMode is nil when the server could not read its state.
	AdjustmentMode      *AdjustmentMode `json:"adjustmentMode,omitempty"`
	AdjustmentCompleted bool            `json:"adjustmentCompleted"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

type HistoryResponse struct {
	Practices  []Practice `json:"practices"`
	Pagination Pagination `json:"pagination"`
}

type UserProgress struct {
	UserID              string             `json:"userId"`
	LearningSubject     string             `json:"learningSubject"`
	SkillLevels         map[string]float64 `json:"skillLevels"`
	CurrentDifficulty   float64            `json:"currentDifficulty"`
	CurrentComplexity   float64            `json:"currentComplexity"`
	CompletedPractices  int                `json:"completedPractices"`
	AverageDifficulty   float64            `json:"averageDifficulty"`
	AverageComplexity   float64            `json:"averageComplexity"`
	PreferredCategories []string           `json:"preferredCategories"`
	ChallengeAreas      []string           `json:"challengeAreas"`
	LastActivity        time.Time          `json:"lastActivity"`
	AdjustmentMode
}

type PreferencesRequest struct {
	LearningSubject     string   `json:"learningSubject,omitempty"`
	PreferredCategories []string `json:"preferredCategories,omitempty"`
	ChallengeAreas      []string `json:"challengeAreas,omitempty"`
}

type FeedbackRequest struct {
	Message  string `json:"message"`
	Rating   int    `json:"rating,omitempty"`
	Category string `json:"category,omitempty"`
}
