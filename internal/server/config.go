// Package server implements the /quiz backend: one shared quiz conversation
// with a chat-completion model behind a small HTTP handler.
package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Config is read from the environment (and an optional .env file).
type Config struct {
	APIKey            string        `env:"OPENAI_API_KEY" validate:"required"`
	BaseURL           string        `env:"OPENAI_API_BASE" validate:"omitempty,url"`
	Model             string        `env:"QUIZBOT_MODEL,default=gpt-3.5-turbo" validate:"required"`
	Temperature       float64       `env:"QUIZBOT_TEMPERATURE,default=0.5" validate:"gte=0,lte=2"`
	Addr              string        `env:"QUIZBOT_ADDR,default=:8080" validate:"required"`
	CompletionTimeout time.Duration `env:"QUIZBOT_COMPLETION_TIMEOUT,default=2m" validate:"gt=0"`
	MaxRetries        int           `env:"QUIZBOT_MAX_RETRIES,default=2" validate:"gte=0,lte=10"`
	LogLevel          string        `env:"QUIZBOT_LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// LoadConfig loads envFiles (".env" when none are given, missing files are
// ignored), then reads and validates the environment. Variables already set
// in the environment win over file values.
func LoadConfig(envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return cfg, fmt.Errorf("server config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration, naming the offending variable on failure.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("server config: %w", err)
	}

	msgs := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		name := envName(fe.StructField())
		if fe.Tag() == "required" {
			return name + " is not set"
		}
		return fmt.Sprintf("%s=%v fails %q", name, fe.Value(), fe.ActualTag())
	})
	return fmt.Errorf("server config: %s", strings.Join(msgs, "; "))
}

func envName(field string) string {
	f, ok := reflect.TypeOf(Config{}).FieldByName(field)
	if !ok {
		return field
	}
	name, _, _ := strings.Cut(f.Tag.Get("env"), ",")
	return name
}
