package commands

import (
	"context"

	"github.com/diogo/quizbot/internal/api"
	"github.com/diogo/quizbot/internal/server"
	"github.com/diogo/quizbot/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, asker api.QuizAsker, endpoint string) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewAsker builds the /quiz client.
	NewAsker func(endpoint string, timeoutSeconds int) (api.QuizAsker, error)

	// NewCompleter builds the model backend for `serve`.
	NewCompleter func(cfg server.Config) server.Completer

	// TUI is the terminal user interface.
	TUI TUIInterface

	// StdoutIsTTY reports whether decorated output should be used.
	StdoutIsTTY func() bool
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, asker api.QuizAsker, endpoint string) error {
	return tui.RunChat(ctx, asker, endpoint)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewAsker: func(endpoint string, timeoutSeconds int) (api.QuizAsker, error) {
			return api.NewClient(
				api.WithEndpoint(endpoint),
				api.WithTimeoutSeconds(timeoutSeconds),
			)
		},
		NewCompleter: func(cfg server.Config) server.Completer {
			return server.NewOpenAICompleter(cfg)
		},
		TUI:         &DefaultTUI{},
		StdoutIsTTY: isStdoutTTY,
	}
}
