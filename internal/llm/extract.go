package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/pavelanni/mentor/internal/model"
)

const envelopeURL = "schema://question-set.json"

// The envelope is the only shape enforced on model output. Items are decoded
// leniently by decodeQuestion.
var envelopeDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"questions": map[string]any{"type": "array"},
	},
}

var envelopeSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(envelopeURL, envelopeDefinition); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(envelopeURL)
})

// ParseQuestionSet turns cleaned model text into a question set. It fails
// with *MalformedOutputError when the text is not a JSON object whose
// "questions" member (if present) is an array.
func ParseQuestionSet(text string) (model.QuestionSet, error) {
	empty := model.QuestionSet{Questions: []model.Question{}}

	var parsed any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return empty, &MalformedOutputError{Text: text, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := envelopeSchema()
	if err != nil {
		return empty, &MalformedOutputError{Text: text, Err: fmt.Errorf("compile envelope schema: %w", err)}
	}
	if err := schema.Validate(parsed); err != nil {
		return empty, &MalformedOutputError{Text: text, Err: fmt.Errorf("envelope validation failed: %w", err)}
	}

	items, _ := parsed.(map[string]any)["questions"].([]any)
	set := model.QuestionSet{Questions: make([]model.Question, 0, len(items))}
	for i, item := range items {
		set.Questions = append(set.Questions, decodeQuestion(i, item))
	}
	return set, nil
}

// decodeQuestion never fails. Missing or mistyped fields fall back to zero
// values; a non-object item becomes a question with an empty answer.
func decodeQuestion(idx int, item any) model.Question {
	q := model.Question{ID: idx + 1}
	fields, ok := item.(map[string]any)
	if !ok {
		return q
	}

	if id, ok := asInt(fields["id"]); ok {
		q.ID = id
	}
	q.Text = asString(fields["question"])
	if q.Text == "" {
		q.Text = asString(fields["text"])
	}
	q.Type = model.QuestionType(strings.ToLower(strings.TrimSpace(asString(fields["type"]))))
	if opts, ok := fields["options"].([]any); ok {
		q.Options = make([]string, 0, len(opts))
		for _, o := range opts {
			q.Options = append(q.Options, asString(o))
		}
	}
	q.Answer = model.NormalizeAnswer(asString(fields["answer"]))
	return q
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Extractor asks the model for a question set and degrades to an empty set
// instead of failing.
type Extractor struct {
	sender   Sender
	attempts int
}

// NewExtractor creates an Extractor. attempts is the number of model calls
// allowed when the output is malformed; values below 1 mean 1.
func NewExtractor(s Sender, attempts int) *Extractor {
	if attempts < 1 {
		attempts = 1
	}
	return &Extractor{sender: s, attempts: attempts}
}

// Extract sends prompt, strips code fences and parses the result. An empty
// model response is not retried.
func (e *Extractor) Extract(ctx context.Context, prompt string) model.QuestionSet {
	for attempt := 1; attempt <= e.attempts; attempt++ {
		text := StripFences(e.sender.Send(ctx, prompt))
		if strings.TrimSpace(text) == "" {
			slog.Warn("empty model output, returning no questions", "attempt", attempt)
			break
		}

		set, err := ParseQuestionSet(text)
		if err == nil {
			warnInconsistent(set)
			return set
		}

		var malformed *MalformedOutputError
		if errors.As(err, &malformed) {
			slog.Debug("malformed model output", "text", malformed.Text)
		}
		slog.Warn("could not parse question set", "attempt", attempt, "attempts", e.attempts, "error", err)
		if ctx.Err() != nil {
			break
		}
	}
	return model.QuestionSet{Questions: []model.Question{}}
}

func warnInconsistent(set model.QuestionSet) {
	for _, q := range set.Questions {
		if !q.AnswerInOptions() {
			slog.Warn("multiple-choice answer not among options", "question_id", q.ID, "answer", q.Answer)
		}
	}
}
