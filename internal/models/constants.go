// Package models contains data types and constants shared by the QuizBot client and server.
package models

// Endpoints for the QuizBot backend
const (
	// DefaultEndpoint is where the web client and the TUI send prompts
	DefaultEndpoint = "http://localhost:8080/quiz"

	// QuizPath is the route served by the backend
	QuizPath = "/quiz"

	// DefaultListenAddr is the backend listen address
	DefaultListenAddr = ":8080"
)

// JSON field names of the /quiz exchange
const (
	FieldPrompt   = "prompt"
	FieldResponse = "response"
	FieldError    = "error"
)

// Chat model defaults used by the backend
const (
	DefaultChatModel   = "gpt-3.5-turbo"
	DefaultTemperature = 0.5
)

// DefaultHeaders returns the headers sent with every /quiz request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "quizbot/0.1",
	}
}
