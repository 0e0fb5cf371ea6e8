package api

import (
	"context"
	"sync"
)

// MockQuizClient is a QuizAsker for tests in other packages.
// Responses maps a prompt to its answer; Err, when set, fails every call.
// Gates lets a test hold a specific prompt until it closes the channel.
type MockQuizClient struct {
	mu sync.Mutex

	Responses       map[string]string
	DefaultResponse string
	Err             error
	Gates           map[string]chan struct{}

	// Call recorders
	Prompts []string
}

// Ensure MockQuizClient implements QuizAsker
var _ QuizAsker = (*MockQuizClient)(nil)

// Ask records the prompt and returns the configured answer
func (m *MockQuizClient) Ask(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	gate := m.Gates[prompt]
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.Err != nil {
		return "", m.Err
	}
	if resp, ok := m.Responses[prompt]; ok {
		return resp, nil
	}
	return m.DefaultResponse, nil
}

// Calls returns a copy of the prompts received so far
func (m *MockQuizClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Prompts))
	copy(out, m.Prompts)
	return out
}
