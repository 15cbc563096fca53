package exercise

import (
	"fmt"
	"strings"
)

const generatorSystem = "You write short exercises for language learners. Reply with JSON only."

const evaluatorSystem = "You grade answers from language learners. Accept minor spelling slips and equivalent phrasings. Reply with JSON only."

func buildGeneratePrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create one %s exercise for a learner of %s.\n", req.Type, subjectOrDefault(req.LearningSubject))
	fmt.Fprintf(&b, "Difficulty: %.1f of 10. Complexity: %.1f of 10.\n", req.Difficulty, req.Complexity)
	if req.QuestionType != "" {
		fmt.Fprintf(&b, "Question type: %s.\n", req.QuestionType)
	}
	if len(req.PreferredCategories) > 0 {
		fmt.Fprintf(&b, "Prefer these topics: %s.\n", strings.Join(req.PreferredCategories, ", "))
	}
	if len(req.ChallengeAreas) > 0 {
		fmt.Fprintf(&b, "The learner struggles with: %s.\n", strings.Join(req.ChallengeAreas, ", "))
	}
	b.WriteString("Return content, its translation, categories, questionType and options (empty unless multiple choice).")
	return b.String()
}

func buildEvaluatePrompt(req EvaluateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exercise type: %s (difficulty %.1f) in %s.\n", req.Type, req.Difficulty, subjectOrDefault(req.LearningSubject))
	fmt.Fprintf(&b, "Exercise:\n%s\n\n", req.Content)
	fmt.Fprintf(&b, "Learner answer:\n%s\n\n", req.UserAnswer)
	b.WriteString("Decide whether the answer is correct and give one or two sentences of feedback.")
	return b.String()
}

func subjectOrDefault(s string) string {
	if s == "" {
		return "the target language"
	}
	return s
}
