package views

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"

	appI18n "github.com/pavelanni/mentor/internal/i18n"
	"github.com/pavelanni/mentor/internal/model"
)

func render(t *testing.T, lang string, c templ.Component) string {
	t.Helper()
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	ctx := appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer(lang))
	html, err := Render(ctx, c)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return html
}

func TestProfile(t *testing.T) {
	got := render(t, "en", Profile(model.Profile{Type: "student", Level: "school", Grade: "<9>"}))

	want := []string{
		"<h3>Profile Details</h3>",
		"<p><strong>Type:</strong> student</p>",
		"<p><strong>Level:</strong> school</p>",
		"<p><strong>Grade (if school):</strong> &lt;9&gt;</p>",
		"<p><strong>Stream (if college):</strong> N/A</p>",
		"<p><strong>Other:</strong> N/A</p>",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("profile missing %q in:\n%s", w, got)
		}
	}
}

func TestProfileUnset(t *testing.T) {
	got := render(t, "ru", Profile(model.Profile{}))

	for _, w := range []string{"<h3>Данные профиля</h3>", "<p><strong>Тип:</strong> Не указано</p>", "Н/Д"} {
		if !strings.Contains(got, w) {
			t.Errorf("profile missing %q in:\n%s", w, got)
		}
	}
}

func TestDashboard(t *testing.T) {
	empty := render(t, "en", Dashboard(NewProgress(nil)))
	if !strings.Contains(empty, "Quizzes Taken: 0") || !strings.Contains(empty, "Last Quiz: None yet") {
		t.Errorf("unexpected empty dashboard: %s", empty)
	}

	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	p := NewProgress([]model.AttemptSummary{
		{Kind: model.KindCapacity, Score: 7, Total: 10, Percent: 70, At: at},
		{Kind: model.KindFinal, Score: 1, Total: 2, Percent: 50, At: at.Add(time.Hour)},
	})
	got := render(t, "en", Dashboard(p))
	for _, w := range []string{"Quizzes Taken: 2", "Average Score: 60%", "Last Quiz: Final Exam - 50%"} {
		if !strings.Contains(got, w) {
			t.Errorf("dashboard missing %q in:\n%s", w, got)
		}
	}
}
