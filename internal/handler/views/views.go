// Package views renders the HTML fragments returned inside JSON responses.
package views

//go:generate templ generate

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	appI18n "github.com/pavelanni/mentor/internal/i18n"
	"github.com/pavelanni/mentor/internal/model"
)

// Progress is the dashboard summary of a session's graded attempts.
type Progress struct {
	QuizzesTaken int
	AverageScore float64
	LastQuiz     *model.AttemptSummary
}

// NewProgress summarizes attempts in the order they were recorded.
func NewProgress(attempts []model.AttemptSummary) Progress {
	p := Progress{QuizzesTaken: len(attempts)}
	if len(attempts) == 0 {
		return p
	}
	var sum float64
	for _, a := range attempts {
		sum += a.Percent
	}
	p.AverageScore = sum / float64(len(attempts))
	last := attempts[len(attempts)-1]
	p.LastQuiz = &last
	return p
}

// Render writes c to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func t(ctx context.Context, id string) string {
	return templ.EscapeString(appI18n.T(ctx, id))
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Profile renders the stored learner profile. Empty type and level show
// "Not Set", other empty fields "N/A".
func Profile(p model.Profile) templ.Component {
	return profileDetails([]profileRow{
		{label: "ProfileType", value: p.Type, fallback: "NotSet"},
		{label: "ProfileLevel", value: p.Level, fallback: "NotSet"},
		{label: "ProfileGrade", value: p.Grade, fallback: "NotApplicable"},
		{label: "ProfileStream", value: p.Stream, fallback: "NotApplicable"},
		{label: "ProfileField", value: p.Field, fallback: "NotApplicable"},
		{label: "ProfileOther", value: p.Other, fallback: "NotApplicable"},
	})
}

// profileRow is one line of the profile fragment. label and fallback are message IDs.
type profileRow struct {
	label    string
	value    string
	fallback string
}

// History renders the session's activity log.
func History(entries []string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h3>%s</h3><p>%s</p><ul>",
			t(ctx, "HistoryTitle"),
			templ.EscapeString(appI18n.Tp(ctx, "HistoryEntries", len(entries)))); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := fmt.Fprintf(w, "<li>%s</li>", templ.EscapeString(e)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>")
		return err
	})
}

// Leaderboard shows the learner's own capacity result.
func Leaderboard(username string, score int, category model.Category) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if username == "" {
			username = appI18n.T(ctx, "Anonymous")
		}
		_, err := fmt.Fprintf(w, "<h3>%s</h3><p>%s: %s</p><p>%s: %d</p>",
			t(ctx, "LeaderboardTitle"),
			t(ctx, "LeaderboardUser"), templ.EscapeString(username),
			t(ctx, "LeaderboardScore"), score)
		if err != nil {
			return err
		}
		if category != "" {
			_, err = fmt.Fprintf(w, "<p>%s: %s</p>", t(ctx, "LeaderboardCategory"), templ.EscapeString(string(category)))
		}
		return err
	})
}

// Dashboard renders progress computed from recorded attempts.
func Dashboard(p Progress) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		last := appI18n.T(ctx, "NoQuizzesYet")
		if p.LastQuiz != nil {
			last = fmt.Sprintf("%s - %.0f%%", p.LastQuiz.Kind.Label(), p.LastQuiz.Percent)
		}
		_, err := fmt.Fprintf(w,
			"<h3>%s</h3><ul><li>%s: %d</li><li>%s: %.0f%%</li><li>%s: %s</li></ul>",
			t(ctx, "DashboardTitle"),
			t(ctx, "QuizzesTaken"), p.QuizzesTaken,
			t(ctx, "AverageScore"), p.AverageScore,
			t(ctx, "LastQuiz"), templ.EscapeString(last))
		return err
	})
}

// Community renders the community landing text.
func Community() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<h3>%s</h3><p>%s</p>", t(ctx, "CommunityTitle"), t(ctx, "CommunityWelcome"))
		return err
	})
}

// Notes renders personal notes, newest last.
func Notes(notes []model.Note) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<h3>%s</h3><ul>", t(ctx, "NotesTitle")); err != nil {
			return err
		}
		for _, n := range notes {
			entry := n.CreatedAt.Format("2006-01-02T15:04:05") + " - " + n.Text
			if n.FileName != "" {
				entry += fmt.Sprintf(" [%s: %s]", appI18n.T(ctx, "NoteFile"), n.FileName)
			}
			if _, err := fmt.Fprintf(w, "<li>%s</li>", templ.EscapeString(entry)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</ul>")
		return err
	})
}
