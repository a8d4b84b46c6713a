package assess

import (
	"strconv"
	"strings"

	"github.com/pavelanni/mentor/internal/model"
)

// Category thresholds, in percent.
const (
	fastThreshold    = 70.0
	averageThreshold = 40.0
)

// NewAnswerKey derives the answer key of a question set: slot "q<n>" for the
// n-th question (1-based) mapped to its normalized answer.
func NewAnswerKey(set model.QuestionSet) model.AnswerKey {
	key := make(model.AnswerKey, 0, len(set.Questions))
	for i, q := range set.Questions {
		key = append(key, model.KeyEntry{
			Slot:   SlotName(i),
			Answer: model.NormalizeAnswer(q.Answer),
		})
	}
	return key
}

// SlotName returns the slot identifier for a zero-based question index.
func SlotName(idx int) string {
	return "q" + strconv.Itoa(idx+1)
}

// Score grades submitted answers against key, in key order. An entry whose
// expected answer is empty can never be scored correct.
func Score(key model.AnswerKey, submitted map[string]string) model.SubmissionResult {
	res := model.SubmissionResult{
		Total:   len(key),
		Details: make([]model.Detail, 0, len(key)),
	}

	for _, e := range key {
		userAnswer := model.NormalizeAnswer(submitted[e.Slot])
		isCorrect := userAnswer == e.Answer && userAnswer != ""

		outcome := model.OutcomeWrong
		if isCorrect {
			res.Score++
			outcome = model.OutcomeCorrect
		}

		shownUser := userAnswer
		if shownUser == "" {
			shownUser = model.PlaceholderNotAnswered
		}
		shownCorrect := e.Answer
		if shownCorrect == "" {
			shownCorrect = model.PlaceholderNotProvided
		}

		res.Details = append(res.Details, model.Detail{
			Question:      "Question " + strings.TrimPrefix(e.Slot, "q"),
			UserAnswer:    shownUser,
			CorrectAnswer: shownCorrect,
			Outcome:       outcome,
			Result:        outcome.Label(),
		})
	}

	res.Percent = Percent(res.Score, res.Total)
	return res
}

// Percent returns score/total*100, or 0 when total is 0.
func Percent(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(score) / float64(total) * 100
}

// CategoryFor classifies a capacity test percentage.
func CategoryFor(percent float64) model.Category {
	switch {
	case percent >= fastThreshold:
		return model.CategoryFast
	case percent >= averageThreshold:
		return model.CategoryAverage
	default:
		return model.CategorySlow
	}
}
