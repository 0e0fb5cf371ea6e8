package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/samber/lo"

	"github.com/diogo/quizbot/internal/logging"
)

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the quiz context
type Turn struct {
	Role    string
	Content string
}

// Completer produces the next assistant turn for a conversation
type Completer interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

var errNoChoices = errors.New("no choices in response")

// OpenAICompleter talks to an OpenAI compatible chat completions API.
type OpenAICompleter struct {
	client      openai.Client
	model       string
	temperature float64
}

// Ensure OpenAICompleter implements Completer
var _ Completer = (*OpenAICompleter)(nil)

// NewOpenAICompleter builds a completer from cfg. Extra options are applied last.
func NewOpenAICompleter(cfg Config, opts ...oaioption.RequestOption) *OpenAICompleter {
	clientOpts := []oaioption.RequestOption{
		oaioption.WithAPIKey(cfg.APIKey),
		oaioption.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, oaioption.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &OpenAICompleter{
		client:      openai.NewClient(clientOpts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

// Complete sends the whole context and returns the first choice
func (c *OpenAICompleter) Complete(ctx context.Context, turns []Turn) (string, error) {
	start := time.Now()

	messages := lo.Map(turns, func(t Turn, _ int) openai.ChatCompletionMessageParamUnion {
		switch t.Role {
		case RoleSystem:
			return openai.SystemMessage(t.Content)
		case RoleAssistant:
			return openai.AssistantMessage(t.Content)
		default:
			return openai.UserMessage(t.Content)
		}
	})

	req := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(c.temperature),
	}

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: %w", errNoChoices)
	}

	choice := resp.Choices[0]
	logging.Debug("chat completion",
		"model", c.model,
		"turns", len(turns),
		"finishReason", choice.FinishReason,
		"promptTokens", resp.Usage.PromptTokens,
		"completionTokens", resp.Usage.CompletionTokens,
		"latencyMs", time.Since(start).Milliseconds(),
	)
	return choice.Message.Content, nil
}
