package model

import (
	"slices"
	"strings"
	"time"
)

// Profile describes the learner. Which of Grade, Stream and Field is meaningful
// depends on Type and Level.
type Profile struct {
	Type   string `json:"type"`
	Level  string `json:"level"`
	Grade  string `json:"grade"`  // school students
	Stream string `json:"stream"` // college students
	Field  string `json:"field"`  // professionals
	Other  string `json:"other"`
}

// DefaultGoal is used when the learner has not selected a goal yet.
const DefaultGoal = "General"

// QuestionType is the answer format of a generated question.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionFillBlank      QuestionType = "fill_blank"
)

// Question is a single generated quiz or exam question.
// Answer is always stored lowercase and trimmed.
type Question struct {
	ID      int          `json:"id"`
	Text    string       `json:"question"`
	Type    QuestionType `json:"type"`
	Options []string     `json:"options,omitempty"`
	Answer  string       `json:"answer,omitempty"`
}

// AnswerInOptions reports whether a multiple-choice answer matches one of its
// options, ignoring case and surrounding whitespace. Other question types
// always report true.
func (q Question) AnswerInOptions() bool {
	if q.Type != QuestionMultipleChoice {
		return true
	}
	return slices.ContainsFunc(q.Options, func(o string) bool {
		return NormalizeAnswer(o) == q.Answer
	})
}

// QuestionSet is the ordered result of one extraction call.
type QuestionSet struct {
	Questions []Question `json:"questions"`
}

// Len returns the number of questions in the set.
func (s QuestionSet) Len() int { return len(s.Questions) }

// Public returns a copy of the set with answers removed, safe to send to the client.
func (s QuestionSet) Public() QuestionSet {
	out := QuestionSet{Questions: make([]Question, len(s.Questions))}
	for i, q := range s.Questions {
		q.Answer = ""
		q.Options = slices.Clone(q.Options)
		out.Questions[i] = q
	}
	return out
}

// NormalizeAnswer applies the comparison rule shared by answer keys and
// submissions: trim surrounding whitespace and lowercase.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// KeyEntry binds a question slot ("q1", "q2", ...) to its normalized expected answer.
type KeyEntry struct {
	Slot   string `json:"slot"`
	Answer string `json:"answer"`
}

// AnswerKey is the ordered mapping from slot to expected answer.
type AnswerKey []KeyEntry

// AssessmentKind names one of the two independent answer-key slots of a session.
type AssessmentKind string

const (
	KindCapacity AssessmentKind = "capacity"
	KindFinal    AssessmentKind = "final"
)

// Label is the human name of the assessment.
func (k AssessmentKind) Label() string {
	if k == KindFinal {
		return "Final Exam"
	}
	return "Capacity Test"
}

// Category is the learner classification derived from a capacity test.
type Category string

const (
	CategoryFast    Category = "Fast Learner"
	CategoryAverage Category = "Average Learner"
	CategorySlow    Category = "Slow Learner"
)

// Outcome is the per-question grading result.
type Outcome string

const (
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
)

// Label renders the outcome for display.
func (o Outcome) Label() string {
	if o == OutcomeCorrect {
		return "✅ Correct"
	}
	return "❌ Wrong"
}

// Placeholders shown in grading details for empty values.
const (
	PlaceholderNotAnswered = "(not answered)"
	PlaceholderNotProvided = "(not provided)"
)

// Detail is one row of the per-question grading breakdown.
type Detail struct {
	Question      string  `json:"question"`
	UserAnswer    string  `json:"user_answer"`
	CorrectAnswer string  `json:"correct_answer"`
	Outcome       Outcome `json:"outcome"`
	Result        string  `json:"result"`
}

// SubmissionResult is derived on every submission and never persisted.
type SubmissionResult struct {
	Score    int      `json:"score"`
	Total    int      `json:"total"`
	Percent  float64  `json:"percent"`
	Category Category `json:"category,omitempty"`
	Feedback string   `json:"feedback,omitempty"`
	Details  []Detail `json:"details"`
}

// AttemptSummary records a graded attempt in the session for the dashboard.
type AttemptSummary struct {
	Kind    AssessmentKind `json:"kind"`
	Score   int            `json:"score"`
	Total   int            `json:"total"`
	Percent float64        `json:"percent"`
	At      time.Time      `json:"at"`
}

// User is a registered learner.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// BrowserSession is the cookie-bound server-side session record.
type BrowserSession struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Note is a personal note, optionally referencing an uploaded file.
type Note struct {
	ID        int64     `json:"id" yaml:"id"`
	Owner     string    `json:"owner" yaml:"owner"`
	Text      string    `json:"text" yaml:"text"`
	FileName  string    `json:"file_name,omitempty" yaml:"file_name,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// AppConfig holds runtime parameters set via CLI flags, environment or config file.
type AppConfig struct {
	CapacityQuestions    int
	FinalQuestions       int
	FinalChoiceQuestions int
	Region               string // used by the learning path prompt
	ParseAttempts        int    // 1 means no retry on malformed model output
	UploadDir            string
	SessionTTL           time.Duration
	SecureCookies        bool
	DefaultLanguage      string
}
