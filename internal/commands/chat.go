package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/quizbot/internal/logging"
	"github.com/diogo/quizbot/internal/render"
	"github.com/diogo/quizbot/internal/tui"
)

// NewChatCmd creates the chat command
func NewChatCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive quiz (default)",
		Long: `Start the interactive quiz chat.

Type "Go" to start. Every line you send is posted to the quiz endpoint and
QuizBot's answer appears below it. Type /quit or /exit, or press Esc or
Ctrl+C to leave. Ctrl+Y copies QuizBot's last answer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, flags)
		},
	}
}

func runChat(cmd *cobra.Command, deps *Dependencies, flags *globalFlags) error {
	cfg := loadConfig(flags, cmd.ErrOrStderr())
	if err := cfg.Validate(); err != nil {
		return err
	}

	if !render.SetTUITheme(cfg.TUITheme) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: unknown theme %q, using %s\n", cfg.TUITheme, render.GetTUITheme().Name)
	}
	tui.UpdateTheme()

	// the TUI owns the terminal, so diagnostics only go to the log file
	if err := initLogging(cfg, false); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	asker, err := deps.NewAsker(cfg.Endpoint, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	return deps.TUI.RunChat(cmd.Context(), asker, cfg.Endpoint)
}
