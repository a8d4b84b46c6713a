package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/mentor/internal/model"
)

func TestParseQuestionSet(t *testing.T) {
	text := `{"questions":[
		{"id":1,"question":"Capital of France?","type":"multiple_choice","options":["Paris","Rome","Oslo"],"answer":" Paris "},
		{"id":"2","text":"2+2 = ___","type":"FILL_BLANK","answer":4},
		{"question":"no answer"},
		"not an object",
		{"id":1.5,"answer":true,"options":["a",2,null]}
	]}`

	set, err := ParseQuestionSet(text)
	require.NoError(t, err)
	require.Len(t, set.Questions, 5)

	assert.Equal(t, model.Question{
		ID: 1, Text: "Capital of France?", Type: model.QuestionMultipleChoice,
		Options: []string{"Paris", "Rome", "Oslo"}, Answer: "paris",
	}, set.Questions[0])

	assert.Equal(t, 2, set.Questions[1].ID)
	assert.Equal(t, "2+2 = ___", set.Questions[1].Text)
	assert.Equal(t, model.QuestionFillBlank, set.Questions[1].Type)
	assert.Equal(t, "4", set.Questions[1].Answer)

	assert.Equal(t, 3, set.Questions[2].ID, "missing id falls back to position")
	assert.Empty(t, set.Questions[2].Answer)

	assert.Equal(t, model.Question{ID: 4}, set.Questions[3])

	assert.Equal(t, 5, set.Questions[4].ID, "non-integral id falls back to position")
	assert.Equal(t, "true", set.Questions[4].Answer)
	assert.Equal(t, []string{"a", "2", ""}, set.Questions[4].Options)
}

func TestParseQuestionSetMalformed(t *testing.T) {
	inputs := map[string]string{
		"empty":               "",
		"prose":               "Sure! Here are your questions:",
		"truncated":           `{"questions":[{"id":1,`,
		"array at top level":  `[{"id":1}]`,
		"questions not array": `{"questions":{"id":1}}`,
		"questions string":    `{"questions":"none"}`,
		"number":              `42`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			set, err := ParseQuestionSet(in)
			var malformed *MalformedOutputError
			require.True(t, errors.As(err, &malformed), "want *MalformedOutputError, got %v", err)
			assert.NotNil(t, set.Questions)
			assert.Empty(t, set.Questions)
		})
	}
}

func TestParseQuestionSetMissingKey(t *testing.T) {
	set, err := ParseQuestionSet(`{"items":[1,2]}`)
	require.NoError(t, err)
	assert.Empty(t, set.Questions)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		replies  []string
		attempts int
		wantLen  int
		wantCall int
	}{
		{"fenced empty set", []string{"```json\n{\"questions\":[]}\n```"}, 1, 0, 1},
		{"fenced two questions", []string{"```json\n{\"questions\":[{\"answer\":\"Paris\"},{\"answer\":\"4\"}]}\n```"}, 1, 2, 1},
		{"model failure", []string{""}, 3, 0, 1},
		{"malformed without retry", []string{"not json", `{"questions":[{"answer":"a"}]}`}, 1, 0, 1},
		{"malformed with retry", []string{"not json", `{"questions":[{"answer":"a"}]}`}, 2, 1, 2},
		{"retries exhausted", []string{"nope", "still nope"}, 2, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := NewScriptedSender(tt.replies...)
			set := NewExtractor(sender, tt.attempts).Extract(context.Background(), "prompt")
			assert.NotNil(t, set.Questions)
			assert.Len(t, set.Questions, tt.wantLen)
			assert.Equal(t, tt.wantCall, sender.CallCount())
		})
	}
}

func TestExtractPassesPromptThrough(t *testing.T) {
	sender := NewScriptedSender(`{"questions":[]}`)
	NewExtractor(sender, 0).Extract(context.Background(), "generate please")
	require.Equal(t, []string{"generate please"}, sender.Prompts)
}

func TestExtractKeepsInconsistentChoice(t *testing.T) {
	sender := NewScriptedSender(`{"questions":[{"type":"multiple_choice","options":["a","b","c"],"answer":"d"}]}`)
	set := NewExtractor(sender, 1).Extract(context.Background(), "p")
	require.Len(t, set.Questions, 1)
	assert.Equal(t, "d", set.Questions[0].Answer)
	assert.False(t, set.Questions[0].AnswerInOptions())
}
