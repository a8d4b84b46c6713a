package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"text/template"
	"unicode/utf8"

	"github.com/pavelanni/mentor/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const maxMessageRunes = 10000

var systemInstructionsRegex = regexp.MustCompile(`(?i)</?\s*system-instructions\b[^>]*>`)

// Kind identifies a prompt template.
type Kind string

const (
	KindCapacityTest Kind = "capacity_test"
	KindFinalExam    Kind = "final_exam"
	KindLearningPath Kind = "learning_path"
	KindExamFeedback Kind = "exam_feedback"
	KindChat         Kind = "chat"
)

// Shape is the output contract a template asks the model for. The caller
// picks the matching post-processing: the question set extractor for JSON,
// fence stripping for HTML.
type Shape string

const (
	ShapeJSON Shape = "json"
	ShapeHTML Shape = "html"
	ShapeText Shape = "text"
)

var shapes = map[Kind]Shape{
	KindCapacityTest: ShapeJSON,
	KindFinalExam:    ShapeJSON,
	KindLearningPath: ShapeHTML,
	KindExamFeedback: ShapeHTML,
	KindChat:         ShapeText,
}

// Shape returns the output contract of the template.
func (k Kind) Shape() Shape {
	return shapes[k]
}

// Data holds template parameters. Each template reads only the fields it needs.
type Data struct {
	Profile            model.Profile
	Goal               string
	Region             string
	NumQuestions       int
	NumChoiceQuestions int
	Score              int
	Total              int
	Message            string
}

// NumBlankQuestions is the number of fill-in-the-blank questions of a final exam.
func (d Data) NumBlankQuestions() int {
	return max(d.NumQuestions-d.NumChoiceQuestions, 0)
}

var loadTemplates = sync.OnceValues(func() (*template.Template, error) {
	return template.New("prompts").ParseFS(templateFS, "templates/*.tmpl")
})

// Build renders the template of the given kind.
func Build(kind Kind, data Data) (string, error) {
	if _, ok := shapes[kind]; !ok {
		return "", fmt.Errorf("unknown prompt kind %q", kind)
	}
	tmpl, err := loadTemplates()
	if err != nil {
		return "", fmt.Errorf("load prompt templates: %w", err)
	}
	if data.Goal == "" {
		data.Goal = model.DefaultGoal
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, string(kind)+".tmpl", data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", kind, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// CapacityTest builds the diagnostic test prompt for a profile.
func CapacityTest(profile model.Profile, numQuestions int) (string, error) {
	return Build(KindCapacityTest, Data{Profile: profile, NumQuestions: numQuestions})
}

// FinalExam builds the final exam prompt for a goal.
func FinalExam(goal string, numQuestions, numChoice int) (string, error) {
	return Build(KindFinalExam, Data{Goal: goal, NumQuestions: numQuestions, NumChoiceQuestions: numChoice})
}

// LearningPath builds the study plan prompt.
func LearningPath(goal, region string, profile model.Profile) (string, error) {
	return Build(KindLearningPath, Data{Goal: goal, Region: region, Profile: profile})
}

// ExamFeedback builds the mentor feedback prompt for a graded final exam.
func ExamFeedback(goal string, score, total int) (string, error) {
	return Build(KindExamFeedback, Data{Goal: goal, Score: score, Total: total})
}

// Chat builds the free-form mentor prompt.
func Chat(message string) (string, error) {
	return Build(KindChat, Data{Message: sanitizeMessage(message)})
}

func sanitizeMessage(msg string) string {
	msg = systemInstructionsRegex.ReplaceAllString(msg, "")
	msg = strings.TrimSpace(msg)

	if utf8.RuneCountInString(msg) > maxMessageRunes {
		runes := []rune(msg)
		msg = string(runes[:maxMessageRunes]) + "\n\n[Message truncated due to length]"
	}
	return msg
}
