package llm

import (
	"context"
	"sync"
)

// ScriptedSender is a deterministic Sender for tests. It returns canned
// replies in FIFO order, then "" once the script is exhausted, and records
// every prompt it receives.
type ScriptedSender struct {
	mu      sync.Mutex
	replies []string
	Prompts []string
}

// NewScriptedSender creates a ScriptedSender with the given replies.
func NewScriptedSender(replies ...string) *ScriptedSender {
	return &ScriptedSender{replies: replies}
}

// Send returns the next canned reply.
func (s *ScriptedSender) Send(_ context.Context, prompt string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Prompts = append(s.Prompts, prompt)
	if len(s.replies) == 0 {
		return ""
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply
}

// CallCount returns the number of Send calls made.
func (s *ScriptedSender) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}
