package model

import "testing"

func TestAnswerInOptions(t *testing.T) {
	tests := []struct {
		name string
		q    Question
		want bool
	}{
		{"match ignoring case", Question{Type: QuestionMultipleChoice, Options: []string{" Paris ", "Rome"}, Answer: "paris"}, true},
		{"no match", Question{Type: QuestionMultipleChoice, Options: []string{"Rome", "Oslo"}, Answer: "paris"}, false},
		{"no options", Question{Type: QuestionMultipleChoice, Answer: "paris"}, false},
		{"fill blank", Question{Type: QuestionFillBlank, Answer: "4"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.AnswerInOptions(); got != tt.want {
				t.Errorf("AnswerInOptions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPublicHidesAnswers(t *testing.T) {
	set := QuestionSet{Questions: []Question{
		{ID: 1, Text: "Capital of France?", Type: QuestionMultipleChoice, Options: []string{"Paris", "Rome"}, Answer: "paris"},
		{ID: 2, Text: "2 + 2 = ___", Type: QuestionFillBlank, Answer: "4"},
	}}

	pub := set.Public()
	if pub.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", pub.Len())
	}
	for _, q := range pub.Questions {
		if q.Answer != "" {
			t.Errorf("question %d leaks answer %q", q.ID, q.Answer)
		}
	}
	pub.Questions[0].Options[0] = "changed"
	if set.Questions[0].Options[0] != "Paris" || set.Questions[0].Answer != "paris" {
		t.Errorf("Public() modified the original set: %+v", set.Questions[0])
	}

	empty := QuestionSet{}.Public()
	if empty.Questions == nil {
		t.Error("Public() of an empty set should have a non-nil slice")
	}
}

func TestNormalizeAnswer(t *testing.T) {
	if got := NormalizeAnswer("  Paris\n"); got != "paris" {
		t.Errorf("NormalizeAnswer = %q, want paris", got)
	}
}
