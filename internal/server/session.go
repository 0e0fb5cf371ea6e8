package server

import (
	"context"
	_ "embed"
	"sync"
)

//go:embed prompts/quizbot.txt
var quizBotPrompt string

// SystemPrompt returns the embedded QuizBot instructions and prize data
func SystemPrompt() string {
	return quizBotPrompt
}

// Session is the single quiz context shared by every caller. Replies are
// serialized so each user turn is immediately followed by its answer.
type Session struct {
	mu        sync.Mutex
	completer Completer
	turns     []Turn
}

// NewSession starts a context seeded with systemPrompt
func NewSession(completer Completer, systemPrompt string) *Session {
	return &Session{
		completer: completer,
		turns:     []Turn{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Reply appends prompt as a user turn, asks the model and records its answer.
// On failure the user turn is dropped again.
func (s *Session) Reply(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns, Turn{Role: RoleUser, Content: prompt})

	answer, err := s.completer.Complete(ctx, s.copyTurns())
	if err != nil {
		s.turns = s.turns[:len(s.turns)-1]
		return "", err
	}

	s.turns = append(s.turns, Turn{Role: RoleAssistant, Content: answer})
	return answer, nil
}

// Turns returns a copy of the context
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyTurns()
}

// must be called with mu held
func (s *Session) copyTurns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}
