package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/quizbot/internal/config"
	apierrors "github.com/diogo/quizbot/internal/errors"
	"github.com/diogo/quizbot/internal/logging"
	"github.com/diogo/quizbot/internal/models"
	"github.com/diogo/quizbot/internal/render"
)

type askOptions struct {
	output   string
	file     string
	markdown bool
	raw      bool
}

// NewAskCmd creates the one-shot ask command
func NewAskCmd(deps *Dependencies, flags *globalFlags) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Send a single message and print QuizBot's answer",
		Long: `Send one message to the quiz endpoint and print the answer.

The message comes from the argument, from --file, or from stdin.
The backend keeps the quiz context between calls, so successive asks
continue the same quiz.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, opts.file, cmd.InOrStdin(), stdinIsPipe(cmd.InOrStdin()))
			if err != nil {
				return err
			}
			return runAsk(cmd.Context(), cmd, deps, flags, prompt, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the answer to a file")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the message from a file")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Render the answer as markdown")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print only the answer text")

	return cmd
}

// readPrompt picks the prompt source: --file, then the argument, then piped stdin
func readPrompt(args []string, file string, stdin io.Reader, piped bool) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return args[0], nil
	case piped:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	return "", apierrors.ErrEmptyPrompt
}

// stdinIsPipe reports whether r is a non-terminal file such as a pipe
func stdinIsPipe(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		// an injected reader always counts as piped input
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

func runAsk(ctx context.Context, cmd *cobra.Command, deps *Dependencies, flags *globalFlags, prompt string, opts *askOptions) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return apierrors.ErrEmptyPrompt
	}

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	cfg := loadConfig(flags, errOut)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.TUITheme != "" {
		render.SetTUITheme(cfg.TUITheme)
	}

	if err := initLogging(cfg, false); err != nil {
		fmt.Fprintf(errOut, "Warning: logging disabled: %v\n", err)
	}
	defer logging.Close()

	decorated := !opts.raw && deps.StdoutIsTTY()

	asker, err := deps.NewAsker(cfg.Endpoint, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	var spin *spinner
	if decorated {
		spin = newSpinner(errOut, "QuizBot is thinking")
		spin.start()
	}

	startTime := time.Now()
	answer, err := asker.Ask(ctx, prompt)
	if err != nil {
		if decorated {
			spin.stopWithError()
			fmt.Fprintln(errOut, formatErrorMessage(err, "Request failed"))
		}
		logging.Warn("ask failed", "endpoint", cfg.Endpoint, "error", err)
		return fmt.Errorf("request failed: %w", err)
	}
	if decorated {
		spin.stopWithSuccess("Done")
	}
	logging.Info("ask answered", "endpoint", cfg.Endpoint, "latency_ms", time.Since(startTime).Milliseconds())

	if cfg.CopyToClipboard {
		copyToClipboard(errOut, answer, decorated)
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(answer), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorated {
			fmt.Fprintln(errOut, successStyle().Render(fmt.Sprintf("✓ Answer saved to %s", opts.output)))
		}
		return nil
	}

	if !decorated {
		fmt.Fprintln(out, answer)
		return nil
	}

	printAnswer(out, cfg, answer, opts.markdown)
	return nil
}

// printAnswer writes the labelled answer bubble
func printAnswer(out io.Writer, cfg config.Config, answer string, markdown bool) {
	theme := render.GetTUITheme()

	bubbleWidth := getTerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	labelStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	bubbleStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Primary).
		Foreground(theme.Text).
		Padding(0, 1).
		MarginBottom(1)

	msg := models.BotMessage(answer)
	content := strings.Join(msg.Lines(), "\n")
	if markdown {
		rendered, err := render.Markdown(answer, render.OptionsFromConfig(cfg, contentWidth))
		if err == nil {
			content = rendered
		}
	}

	fmt.Fprintln(out, labelStyle.Render(msg.Sender.Label()))
	fmt.Fprintln(out, bubbleStyle.Width(bubbleWidth).Render(content))
}

func copyToClipboard(errOut io.Writer, text string, decorated bool) {
	if err := clipboard.WriteAll(text); err != nil {
		logging.Warn("clipboard copy failed", "error", err)
		if decorated {
			warn := lipgloss.NewStyle().Foreground(render.GetTUITheme().Error)
			fmt.Fprintln(errOut, warn.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		}
		return
	}
	if decorated {
		fmt.Fprintln(errOut, successStyle().Render("✓ Copied to clipboard"))
	}
}

func successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(render.GetTUITheme().Secondary)
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, action string) string {
	if err == nil {
		return ""
	}

	theme := render.GetTUITheme()
	errorStyle := lipgloss.NewStyle().Foreground(theme.Error)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", action, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Try again or raise request_timeout"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Is the quiz backend running? Start one with 'quizbot serve'"))
	case apierrors.IsParseError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The endpoint did not answer with {\"response\": ...}; check --endpoint"))
	case errors.Is(err, apierrors.ErrEmptyPrompt):
		sb.WriteString(dimStyle.Render("\n  Hint: Pass a message, use --file, or pipe text on stdin"))
	}

	return sb.String()
}
