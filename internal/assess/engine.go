package assess

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/pavelanni/mentor/internal/llm"
	"github.com/pavelanni/mentor/internal/llm/prompts"
	"github.com/pavelanni/mentor/internal/model"
	"github.com/pavelanni/mentor/internal/session"
)

// Replies used when the model gives nothing back, or is not consulted at all.
const (
	FallbackFeedback  = "Your final exam has been graded. Please review your weak areas and study diligently!"
	FallbackChatReply = "I'm sorry, I could not process your request. Please try again later! 🤖"
	GreetingReply     = "Hey there! How can I help you today?"
)

var greetings = []string{"hi", "hey", "hello", "howdy"}

// Engine runs the assessment operations against one session at a time.
type Engine struct {
	sender    llm.Sender
	extractor *llm.Extractor
	config    model.AppConfig
}

// NewEngine creates an Engine.
func NewEngine(s llm.Sender, cfg model.AppConfig) *Engine {
	return &Engine{
		sender:    s,
		extractor: llm.NewExtractor(s, cfg.ParseAttempts),
		config:    cfg,
	}
}

// Bind derives the answer key of set and stores it as the session's key for
// kind, replacing any earlier key of the same kind.
func Bind(ctx context.Context, sc *session.Context, kind model.AssessmentKind, set model.QuestionSet) (model.AnswerKey, error) {
	key := NewAnswerKey(set)
	if err := sc.SetAnswerKey(ctx, kind, key); err != nil {
		return nil, fmt.Errorf("bind %s answer key: %w", kind, err)
	}
	return key, nil
}

// GenerateCapacityTest asks the model for a diagnostic test tailored to the
// session's profile and binds its answer key.
func (e *Engine) GenerateCapacityTest(ctx context.Context, sc *session.Context) (model.QuestionSet, error) {
	profile, _, err := sc.Profile(ctx)
	if err != nil {
		return model.QuestionSet{}, err
	}
	prompt, err := prompts.CapacityTest(profile, e.config.CapacityQuestions)
	if err != nil {
		return model.QuestionSet{}, err
	}
	return e.generate(ctx, sc, model.KindCapacity, prompt)
}

// GenerateFinalExam asks the model for a final exam on the session's goal and
// binds its answer key.
func (e *Engine) GenerateFinalExam(ctx context.Context, sc *session.Context) (model.QuestionSet, error) {
	goal, err := sc.Goal(ctx)
	if err != nil {
		return model.QuestionSet{}, err
	}
	prompt, err := prompts.FinalExam(goal, e.config.FinalQuestions, e.config.FinalChoiceQuestions)
	if err != nil {
		return model.QuestionSet{}, err
	}
	return e.generate(ctx, sc, model.KindFinal, prompt)
}

func (e *Engine) generate(ctx context.Context, sc *session.Context, kind model.AssessmentKind, prompt string) (model.QuestionSet, error) {
	set := e.extractor.Extract(ctx, prompt)
	if _, err := Bind(ctx, sc, kind, set); err != nil {
		return model.QuestionSet{}, err
	}
	slog.Info("assessment generated", "kind", kind, "questions", set.Len())
	if err := sc.AppendHistory(ctx, "%s questions fetched.", kind.Label()); err != nil {
		return model.QuestionSet{}, err
	}
	return set, nil
}

// GradeCapacityTest scores a capacity test submission and stores the score
// and the derived learner category.
func (e *Engine) GradeCapacityTest(ctx context.Context, sc *session.Context, submitted map[string]string) (model.SubmissionResult, error) {
	res, err := e.grade(ctx, sc, model.KindCapacity, submitted)
	if err != nil {
		return res, err
	}
	res.Category = CategoryFor(res.Percent)

	if err := sc.SetCapacityScore(ctx, res.Score); err != nil {
		return res, err
	}
	if err := sc.SetLearnerCategory(ctx, res.Category); err != nil {
		return res, err
	}
	if err := sc.AppendHistory(ctx, "Capacity Test: %d/%d - %s", res.Score, res.Total, res.Category); err != nil {
		return res, err
	}
	return res, nil
}

// GradeFinalExam scores a final exam submission and asks the model for
// mentor feedback on the result.
func (e *Engine) GradeFinalExam(ctx context.Context, sc *session.Context, submitted map[string]string) (model.SubmissionResult, error) {
	res, err := e.grade(ctx, sc, model.KindFinal, submitted)
	if err != nil {
		return res, err
	}

	goal, err := sc.Goal(ctx)
	if err != nil {
		return res, err
	}
	prompt, err := prompts.ExamFeedback(goal, res.Score, res.Total)
	if err != nil {
		return res, err
	}
	res.Feedback = e.reply(ctx, prompts.KindExamFeedback, prompt)
	if strings.TrimSpace(res.Feedback) == "" {
		res.Feedback = FallbackFeedback
	}

	if err := sc.AppendHistory(ctx, "Final Exam: %d/%d", res.Score, res.Total); err != nil {
		return res, err
	}
	return res, nil
}

func (e *Engine) grade(ctx context.Context, sc *session.Context, kind model.AssessmentKind, submitted map[string]string) (model.SubmissionResult, error) {
	key, err := sc.AnswerKey(ctx, kind)
	if err != nil {
		return model.SubmissionResult{}, err
	}
	res := Score(key, submitted)
	if err := sc.RecordAttempt(ctx, kind, res); err != nil {
		return res, err
	}
	slog.Info("assessment graded", "kind", kind, "score", res.Score, "total", res.Total)
	return res, nil
}

// reply sends a free-text prompt and cleans the reply for the prompt's output
// shape. JSON prompts go through the extractor instead.
func (e *Engine) reply(ctx context.Context, kind prompts.Kind, prompt string) string {
	out := e.sender.Send(ctx, prompt)
	if kind.Shape() == prompts.ShapeHTML {
		return llm.StripFences(out)
	}
	return out
}

// GenerateLearningPath asks the model for an HTML study plan for the
// session's goal and profile.
func (e *Engine) GenerateLearningPath(ctx context.Context, sc *session.Context) (string, error) {
	goal, err := sc.Goal(ctx)
	if err != nil {
		return "", err
	}
	profile, _, err := sc.Profile(ctx)
	if err != nil {
		return "", err
	}
	prompt, err := prompts.LearningPath(goal, e.config.Region, profile)
	if err != nil {
		return "", err
	}

	path := e.reply(ctx, prompts.KindLearningPath, prompt)
	if err := sc.AppendHistory(ctx, "Personalized learning path generated."); err != nil {
		return "", err
	}
	return path, nil
}

// Chat answers a free-form message. Greetings are answered without a model call.
func (e *Engine) Chat(ctx context.Context, sc *session.Context, message string) (string, error) {
	message = strings.TrimSpace(message)

	var reply string
	if slices.Contains(greetings, strings.ToLower(message)) {
		reply = GreetingReply
	} else {
		prompt, err := prompts.Chat(message)
		if err != nil {
			return "", err
		}
		reply = e.reply(ctx, prompts.KindChat, prompt)
		if reply == "" {
			reply = FallbackChatReply
		}
		reply = strings.ReplaceAll(reply, "#", "<br>")
	}

	if err := sc.AppendHistory(ctx, "Chat: %s | Bot: %s", message, reply); err != nil {
		return "", err
	}
	return reply, nil
}
