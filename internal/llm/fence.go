package llm

import "strings"

const fence = "```"

// StripFences removes a markdown code fence wrapped around model output.
// When the text starts with a fence line (optionally carrying a language tag
// such as ```json or ```html), that line is dropped, and a bare closing fence
// on the last non-empty line is dropped too. Text that does not start with a
// fence is returned unchanged. Nested leading fences are peeled until none is
// left, so StripFences(StripFences(x)) == StripFences(x).
func StripFences(text string) string {
	for {
		trimmed := strings.TrimLeft(text, " \t\r\n")
		if !strings.HasPrefix(trimmed, fence) {
			return text
		}
		text = stripOnce(trimmed)
	}
}

func stripOnce(text string) string {
	lines := strings.Split(text, "\n")
	lines = lines[1:]

	last := len(lines) - 1
	for last >= 0 && strings.TrimSpace(lines[last]) == "" {
		last--
	}
	if last >= 0 && strings.TrimSpace(lines[last]) == fence {
		lines = lines[:last]
	}
	return strings.Join(lines, "\n")
}
