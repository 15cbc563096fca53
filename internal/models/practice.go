package models

import "time"

type ExerciseType string

const (
	ExerciseVocabulary   ExerciseType = "vocabulary"
	ExerciseGrammar      ExerciseType = "grammar"
	ExerciseConversation ExerciseType = "conversation"
	ExerciseReading      ExerciseType = "reading"
	ExerciseListening    ExerciseType = "listening"
)

// ExerciseTypes lists every exercise type a user holds a skill level for.
var ExerciseTypes = []ExerciseType{
	ExerciseVocabulary,
	ExerciseGrammar,
	ExerciseConversation,
	ExerciseReading,
	ExerciseListening,
}

func (t ExerciseType) Valid() bool {
	for _, known := range ExerciseTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Practice is one generated exercise. Difficulty and Complexity are the
// levels it was generated at and never change. The answer fields are set
// together, exactly once, when the practice is closed.
type Practice struct {
	ID              string       `bson:"_id,omitempty" json:"id"`
	UserID          string       `bson:"userId" json:"userId"`
	LearningSubject string       `bson:"learningSubject" json:"learningSubject"`
	Type            ExerciseType `bson:"type" json:"type"`
	Content         string       `bson:"content" json:"content"`
	Translation     string       `bson:"translation" json:"translation"`
	Categories      []string     `bson:"categories" json:"categories"`
	QuestionType    string       `bson:"questionType" json:"questionType"`
	Options         []string     `bson:"options,omitempty" json:"options,omitempty"`
	Difficulty      float64      `bson:"difficulty" json:"difficulty"`
	Complexity      float64      `bson:"complexity" json:"complexity"`
	IsFallback      bool         `bson:"isFallback" json:"isFallback"`
	UserAnswer      *string      `bson:"userAnswer,omitempty" json:"userAnswer,omitempty"`
	IsCorrect       *bool        `bson:"isCorrect,omitempty" json:"isCorrect,omitempty"`
	Feedback        string       `bson:"feedback,omitempty" json:"feedback,omitempty"`
	CompletedAt     *time.Time   `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt       time.Time    `bson:"createdAt" json:"createdAt"`
}

func (p *Practice) IsClosed() bool {
	return p.CompletedAt != nil
}
