package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pavelanni/mentor/internal/model"
)

// Slot names as stored in the session.
const (
	keyProfile         = "profile"
	keyGoal            = "goal"
	keyUsername        = "username"
	keyLanguage        = "language"
	keyCapacityAnswers = "capacity_test_answers"
	keyFinalAnswers    = "final_exam_answers"
	keyCapacityScore   = "capacity_test_score"
	keyLearnerCategory = "learner_category"
	keyHistory         = "history"
	keyAttempts        = "attempts"
)

const historyTimeLayout = "2006-01-02T15:04:05"

// Context gives typed access to one user's session state.
type Context struct {
	store Store
	now   func() time.Time
}

// New wraps a Store.
func New(s Store) *Context {
	return &Context{store: s, now: time.Now}
}

// WithClock replaces the time source used for history timestamps.
func (c *Context) WithClock(now func() time.Time) *Context {
	c.now = now
	return c
}

func (c *Context) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("get session %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode session %s: %w", key, err)
	}
	return true, nil
}

func (c *Context) save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set session %s: %w", key, err)
	}
	return nil
}

// Profile returns the learner profile and whether one was stored.
func (c *Context) Profile(ctx context.Context) (model.Profile, bool, error) {
	var p model.Profile
	ok, err := c.load(ctx, keyProfile, &p)
	return p, ok, err
}

func (c *Context) SetProfile(ctx context.Context, p model.Profile) error {
	return c.save(ctx, keyProfile, p)
}

// Goal returns the selected goal, or model.DefaultGoal when none was selected.
func (c *Context) Goal(ctx context.Context) (string, error) {
	var g string
	ok, err := c.load(ctx, keyGoal, &g)
	if err != nil {
		return "", err
	}
	if !ok || g == "" {
		return model.DefaultGoal, nil
	}
	return g, nil
}

func (c *Context) SetGoal(ctx context.Context, goal string) error {
	return c.save(ctx, keyGoal, goal)
}

// Username returns the logged-in user, or "" for an anonymous session.
func (c *Context) Username(ctx context.Context) (string, error) {
	var u string
	_, err := c.load(ctx, keyUsername, &u)
	return u, err
}

func (c *Context) SetUsername(ctx context.Context, username string) error {
	return c.save(ctx, keyUsername, username)
}

// Language returns the session's UI language, or "" when unset.
func (c *Context) Language(ctx context.Context) (string, error) {
	var l string
	_, err := c.load(ctx, keyLanguage, &l)
	return l, err
}

func (c *Context) SetLanguage(ctx context.Context, lang string) error {
	return c.save(ctx, keyLanguage, lang)
}

func answerKeySlot(kind model.AssessmentKind) (string, error) {
	switch kind {
	case model.KindCapacity:
		return keyCapacityAnswers, nil
	case model.KindFinal:
		return keyFinalAnswers, nil
	default:
		return "", fmt.Errorf("unknown assessment kind %q", kind)
	}
}

// AnswerKey returns the key bound for kind; a missing key is empty.
func (c *Context) AnswerKey(ctx context.Context, kind model.AssessmentKind) (model.AnswerKey, error) {
	slot, err := answerKeySlot(kind)
	if err != nil {
		return nil, err
	}
	var key model.AnswerKey
	if _, err := c.load(ctx, slot, &key); err != nil {
		return nil, err
	}
	return key, nil
}

// SetAnswerKey replaces the key bound for kind.
func (c *Context) SetAnswerKey(ctx context.Context, kind model.AssessmentKind, key model.AnswerKey) error {
	slot, err := answerKeySlot(kind)
	if err != nil {
		return err
	}
	if key == nil {
		key = model.AnswerKey{}
	}
	return c.save(ctx, slot, key)
}

// CapacityScore returns the last capacity test score (0 if never graded).
func (c *Context) CapacityScore(ctx context.Context) (int, error) {
	var s int
	_, err := c.load(ctx, keyCapacityScore, &s)
	return s, err
}

func (c *Context) SetCapacityScore(ctx context.Context, score int) error {
	return c.save(ctx, keyCapacityScore, score)
}

// LearnerCategory returns the last derived category, or "" if never graded.
func (c *Context) LearnerCategory(ctx context.Context) (model.Category, error) {
	var cat model.Category
	_, err := c.load(ctx, keyLearnerCategory, &cat)
	return cat, err
}

func (c *Context) SetLearnerCategory(ctx context.Context, cat model.Category) error {
	return c.save(ctx, keyLearnerCategory, cat)
}

// History returns the timestamped activity entries, oldest first.
func (c *Context) History(ctx context.Context) ([]string, error) {
	var h []string
	_, err := c.load(ctx, keyHistory, &h)
	return h, err
}

// AppendHistory records an activity entry prefixed with the current time.
func (c *Context) AppendHistory(ctx context.Context, format string, args ...any) error {
	h, err := c.History(ctx)
	if err != nil {
		return err
	}
	entry := c.now().Format(historyTimeLayout) + " - " + fmt.Sprintf(format, args...)
	return c.save(ctx, keyHistory, append(h, entry))
}

// Attempts returns the graded attempt summaries, oldest first.
func (c *Context) Attempts(ctx context.Context) ([]model.AttemptSummary, error) {
	var a []model.AttemptSummary
	_, err := c.load(ctx, keyAttempts, &a)
	return a, err
}

// RecordAttempt appends a graded attempt summary.
func (c *Context) RecordAttempt(ctx context.Context, kind model.AssessmentKind, res model.SubmissionResult) error {
	a, err := c.Attempts(ctx)
	if err != nil {
		return err
	}
	a = append(a, model.AttemptSummary{
		Kind:    kind,
		Score:   res.Score,
		Total:   res.Total,
		Percent: res.Percent,
		At:      c.now(),
	})
	return c.save(ctx, keyAttempts, a)
}

// Clear drops all session state.
func (c *Context) Clear(ctx context.Context) error {
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

type ctxKey struct{}

// WithContext stores the session in a request context.
func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, sc)
}

// FromContext retrieves the session from a request context, or nil.
func FromContext(ctx context.Context) *Context {
	sc, _ := ctx.Value(ctxKey{}).(*Context)
	return sc
}
