package llm

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text unchanged", `{"questions":[]}`, `{"questions":[]}`},
		{"empty", "", ""},
		{"json fence", "```json\n{\"questions\":[]}\n```", `{"questions":[]}`},
		{"bare fence", "```\n<h1>Plan</h1>\n```", "<h1>Plan</h1>"},
		{"closing fence with trailing blank lines", "```html\n<p>a</p>\n```\n\n", "<p>a</p>"},
		{"closing fence with spaces", "```\nbody\n  ```  ", "body"},
		{"no closing fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"closing line not bare", "```\nbody\n```json", "body\n```json"},
		{"leading whitespace before fence", "\n  ```json\n{}\n```", "{}"},
		{"fence only", "```", ""},
		{"inner fences kept", "```md\ntext\n```go\ncode\n```\nmore\n```", "text\n```go\ncode\n```\nmore"},
		{"nested leading fences", "```\n```json\n{}\n```\n```", "{}"},
		{"fence not at start", "Here:\n```json\n{}\n```", "Here:\n```json\n{}\n```"},
		{"crlf", "```json\r\n{}\r\n```", "{}\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripFences(tt.in)
			if got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripFencesIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"```",
		"``` ```",
		"```json\n{}\n```",
		"```\n```\n```\n```",
		"```\n```json\n{\"questions\":[1]}\n```\n```",
		"   \n```html\n<b>x</b>\n```\n",
		"text\n```\n",
		"```a\n\n\n```b\n```",
		"````\nfour backticks\n````",
	}
	for _, in := range inputs {
		once := StripFences(in)
		twice := StripFences(once)
		if once != twice {
			t.Errorf("StripFences not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}
