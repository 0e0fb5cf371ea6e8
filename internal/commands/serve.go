package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/quizbot/internal/logging"
	"github.com/diogo/quizbot/internal/server"
)

// NewServeCmd creates the command running the /quiz backend
func NewServeCmd(deps *Dependencies) *cobra.Command {
	var (
		addr    string
		envFile string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the /quiz backend",
		Long: `Run the HTTP backend answering POST /quiz with a chat model.

Configuration comes from the environment (and .env):
  OPENAI_API_KEY              required
  OPENAI_API_BASE             OpenAI compatible base URL
  QUIZBOT_MODEL               default gpt-3.5-turbo
  QUIZBOT_TEMPERATURE         default 0.5
  QUIZBOT_ADDR                default :8080
  QUIZBOT_COMPLETION_TIMEOUT  default 2m
  QUIZBOT_MAX_RETRIES         default 2
  QUIZBOT_LOG_LEVEL           default info`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			cfg, err := server.LoadConfig(files...)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}

			if err := logging.Init(logging.Config{Level: cfg.LogLevel, Stderr: true}); err != nil {
				return fmt.Errorf("failed to init logging: %w", err)
			}
			defer logging.Close()

			srv := server.New(cfg, deps.NewCompleter(cfg))
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides QUIZBOT_ADDR)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load variables from this file instead of .env")

	return cmd
}
