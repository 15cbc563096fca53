package exercise

import "practice-service/internal/models"

const fallbackFeedback = "Sorry, we could not evaluate your answer right now. Please try again."

var fallbackExercises = map[models.ExerciseType]Exercise{
	models.ExerciseVocabulary: {
		Content:      "What is the word for \"house\"?",
		Translation:  "house",
		Categories:   []string{"basics"},
		QuestionType: "open",
		Options:      []string{},
	},
	models.ExerciseGrammar: {
		Content:      "Complete the sentence: I ___ a student.",
		Translation:  "I am a student.",
		Categories:   []string{"basics"},
		QuestionType: "fill-in",
		Options:      []string{},
	},
	models.ExerciseConversation: {
		Content:      "Introduce yourself in two sentences.",
		Translation:  "Introduce yourself in two sentences.",
		Categories:   []string{"greetings"},
		QuestionType: "open",
		Options:      []string{},
	},
	models.ExerciseReading: {
		Content:      "Read: \"The cat sleeps on the sofa.\" Where does the cat sleep?",
		Translation:  "The cat sleeps on the sofa.",
		Categories:   []string{"home"},
		QuestionType: "multiple-choice",
		Options:      []string{"On the sofa", "In the garden", "Under the bed"},
	},
	models.ExerciseListening: {
		Content:      "Write down what you hear: \"Good morning\".",
		Translation:  "Good morning",
		Categories:   []string{"greetings"},
		QuestionType: "dictation",
		Options:      []string{},
	},
}

// FallbackExercise is served when the provider cannot produce one.
func FallbackExercise(t models.ExerciseType) Exercise {
	if ex, ok := fallbackExercises[t]; ok {
		return ex
	}
	return fallbackExercises[models.ExerciseVocabulary]
}

func FallbackEvaluation() Evaluation {
	return Evaluation{IsCorrect: false, Feedback: fallbackFeedback}
}
