// Package commands provides CLI commands for quizbot.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/quizbot/internal/config"
	"github.com/diogo/quizbot/internal/logging"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags override values from the config file
type globalFlags struct {
	endpoint string
	theme    string
	timeout  int
}

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	flags := &globalFlags{timeout: -1}

	cmd := &cobra.Command{
		Use:   "quizbot",
		Short: "Terminal client for the QuizBot Nobel Prize quiz",
		Long: `quizbot is a chat-style quiz client. It posts what you type to a
/quiz endpoint and shows QuizBot's answers.

Examples:
  quizbot                                  Start the quiz chat
  quizbot --endpoint http://host:8080/quiz Use another backend
  quizbot ask "Go"                         Send a single message
  echo "Go" | quizbot ask                  Read the message from stdin
  quizbot serve                            Run the /quiz backend (needs OPENAI_API_KEY)
  quizbot config                           Show the effective configuration`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "quizbot %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runChat(cmd, deps, flags)
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.endpoint, "endpoint", "e", "", "Quiz endpoint URL (default from config)")
	cmd.PersistentFlags().StringVar(&flags.theme, "theme", "", "TUI theme (quizbot, tokyonight, catppuccin, nord, dracula)")
	cmd.PersistentFlags().IntVar(&flags.timeout, "timeout", -1, "Request timeout in seconds, 0 waits indefinitely (default from config)")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewChatCmd(deps, flags))
	cmd.AddCommand(NewAskCmd(deps, flags))
	cmd.AddCommand(NewServeCmd(deps))
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

var rootCmd = NewRootCmd(NewDependencies())

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies flag overrides.
// A broken config file is reported on errOut and replaced by defaults.
func loadConfig(flags *globalFlags, errOut io.Writer) config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(errOut, "Warning: %v (using defaults)\n", err)
	}

	if flags != nil {
		if flags.endpoint != "" {
			cfg.Endpoint = flags.endpoint
		}
		if flags.theme != "" {
			cfg.TUITheme = flags.theme
		}
		if flags.timeout >= 0 {
			cfg.RequestTimeout = flags.timeout
		}
	}
	return cfg
}

// initLogging opens the diagnostic log configured in cfg
func initLogging(cfg config.Config, stderr bool) error {
	path, err := cfg.LogPath()
	if err != nil {
		return err
	}
	return logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		File:   path,
		Stderr: stderr,
	})
}
