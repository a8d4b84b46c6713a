package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/mentor/internal/model"
)

func newTestContext(t *testing.T) (*Context, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	return New(store).WithClock(func() time.Time { return fixed }), store
}

func TestProfileAndGoal(t *testing.T) {
	ctx := context.Background()
	sc, _ := newTestContext(t)

	_, ok, err := sc.Profile(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	goal, err := sc.Goal(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultGoal, goal)

	p := model.Profile{Type: "student", Level: "school", Grade: "8"}
	require.NoError(t, sc.SetProfile(ctx, p))
	require.NoError(t, sc.SetGoal(ctx, "Astronaut"))

	got, ok, err := sc.Profile(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, p, got)

	goal, err = sc.Goal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Astronaut", goal)
}

func TestAnswerKeySlotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	sc, _ := newTestContext(t)

	capKey := model.AnswerKey{{Slot: "q1", Answer: "paris"}}
	finalKey := model.AnswerKey{{Slot: "q1", Answer: "4"}, {Slot: "q2", Answer: "go"}}
	require.NoError(t, sc.SetAnswerKey(ctx, model.KindCapacity, capKey))
	require.NoError(t, sc.SetAnswerKey(ctx, model.KindFinal, finalKey))

	got, err := sc.AnswerKey(ctx, model.KindCapacity)
	require.NoError(t, err)
	assert.Equal(t, capKey, got)

	got, err = sc.AnswerKey(ctx, model.KindFinal)
	require.NoError(t, err)
	assert.Equal(t, finalKey, got)

	// Replacement discards the previous key entirely.
	require.NoError(t, sc.SetAnswerKey(ctx, model.KindCapacity, model.AnswerKey{}))
	got, err = sc.AnswerKey(ctx, model.KindCapacity)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = sc.AnswerKey(ctx, model.KindFinal)
	require.NoError(t, err)
	assert.Equal(t, finalKey, got)
}

func TestAnswerKeyUnknownKind(t *testing.T) {
	sc, _ := newTestContext(t)
	_, err := sc.AnswerKey(context.Background(), model.AssessmentKind("quiz"))
	assert.Error(t, err)
	assert.Error(t, sc.SetAnswerKey(context.Background(), model.AssessmentKind("quiz"), nil))
}

func TestAnswerKeyMissingIsEmpty(t *testing.T) {
	sc, _ := newTestContext(t)
	got, err := sc.AnswerKey(context.Background(), model.KindFinal)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	sc, _ := newTestContext(t)

	require.NoError(t, sc.AppendHistory(ctx, "%s logged in.", "asha"))
	require.NoError(t, sc.AppendHistory(ctx, "Goal Selected: %s", "Pilot"))

	h, err := sc.History(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2026-03-14T09:26:53 - asha logged in.",
		"2026-03-14T09:26:53 - Goal Selected: Pilot",
	}, h)
}

func TestScoresAndAttempts(t *testing.T) {
	ctx := context.Background()
	sc, _ := newTestContext(t)

	score, err := sc.CapacityScore(ctx)
	require.NoError(t, err)
	assert.Zero(t, score)

	require.NoError(t, sc.SetCapacityScore(ctx, 11))
	require.NoError(t, sc.SetLearnerCategory(ctx, model.CategoryFast))
	require.NoError(t, sc.RecordAttempt(ctx, model.KindCapacity, model.SubmissionResult{Score: 11, Total: 15, Percent: 73.3}))

	score, err = sc.CapacityScore(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, score)

	cat, err := sc.LearnerCategory(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFast, cat)

	attempts, err := sc.Attempts(ctx)
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, model.KindCapacity, attempts[0].Kind)
	assert.Equal(t, 15, attempts[0].Total)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	sc, store := newTestContext(t)

	require.NoError(t, sc.SetUsername(ctx, "asha"))
	require.NoError(t, sc.SetLanguage(ctx, "ru"))
	for _, key := range []string{"username", "language"} {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
	}

	require.NoError(t, sc.Clear(ctx))
	for _, key := range []string{"username", "language"} {
		_, ok, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	u, err := sc.Username(ctx)
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestCorruptValue(t *testing.T) {
	ctx := context.Background()
	sc, store := newTestContext(t)
	require.NoError(t, store.Set(ctx, keyCapacityAnswers, []byte("{not json")))

	_, err := sc.AnswerKey(ctx, model.KindCapacity)
	assert.Error(t, err)
}

func TestRequestContext(t *testing.T) {
	sc, _ := newTestContext(t)
	assert.Nil(t, FromContext(context.Background()))
	assert.Same(t, sc, FromContext(WithContext(context.Background(), sc)))
}
