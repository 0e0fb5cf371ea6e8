// Package api implements the client side of the /quiz exchange.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	apierrors "github.com/diogo/quizbot/internal/errors"
	"github.com/diogo/quizbot/internal/logging"
	"github.com/diogo/quizbot/internal/models"
)

// httpDoer is the part of tls_client.HttpClient the quiz client needs
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// QuizAsker sends one prompt and returns the bot's answer
type QuizAsker interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// QuizClient posts prompts to a /quiz endpoint
type QuizClient struct {
	httpClient     httpDoer
	endpoint       string
	timeoutSeconds int
}

// Ensure QuizClient implements QuizAsker
var _ QuizAsker = (*QuizClient)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*QuizClient)

// WithEndpoint sets the /quiz URL
func WithEndpoint(endpoint string) ClientOption {
	return func(c *QuizClient) {
		c.endpoint = strings.TrimSpace(endpoint)
	}
}

// WithTimeoutSeconds sets the transport timeout; 0 disables it
func WithTimeoutSeconds(seconds int) ClientOption {
	return func(c *QuizClient) {
		c.timeoutSeconds = seconds
	}
}

// WithHTTPClient replaces the transport, mainly for tests
func WithHTTPClient(doer httpDoer) ClientOption {
	return func(c *QuizClient) {
		c.httpClient = doer
	}
}

// NewClient creates a new QuizClient
func NewClient(opts ...ClientOption) (*QuizClient, error) {
	client := &QuizClient{
		endpoint: models.DefaultEndpoint,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.endpoint == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(client.timeoutSeconds),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the URL prompts are posted to
func (c *QuizClient) Endpoint() string {
	return c.endpoint
}

// Ask posts {"prompt": prompt} and returns the "response" field of the answer.
// Every failure matches apierrors.ErrTransport.
func (c *QuizClient) Ask(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	body, err := BuildRequestBody(prompt)
	if err != nil {
		return "", apierrors.NewNetworkErrorWithEndpoint("build quiz request", c.endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(string(body)))
	if err != nil {
		return "", apierrors.NewNetworkErrorWithEndpoint("create quiz request", c.endpoint, err)
	}
	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}

	logging.Debug("quiz request", "endpoint", c.endpoint, "promptChars", len(prompt))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(ctx, err) {
			return "", fmt.Errorf("quiz request: %w", apierrors.NewTimeoutError(err.Error()))
		}
		return "", apierrors.NewNetworkErrorWithEndpoint("quiz request", c.endpoint, err)
	}
	defer func() {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierrors.NewNetworkErrorWithEndpoint("read quiz response", c.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apierrors.NewAPIErrorWithBody(resp.StatusCode, c.endpoint, "quiz request failed", string(data))
	}

	text, err := ParseResponse(data)
	if err != nil {
		return "", err
	}

	logging.Debug("quiz response",
		"endpoint", c.endpoint,
		"status", resp.StatusCode,
		"outputChars", len(text),
		"latencyMs", time.Since(start).Milliseconds(),
	)

	return text, nil
}

// BuildRequestBody encodes prompt as {"prompt": "..."}
func BuildRequestBody(prompt string) ([]byte, error) {
	return sjson.SetBytes([]byte(`{}`), models.FieldPrompt, prompt)
}

// ParseResponse extracts the "response" string from a /quiz answer
func ParseResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("body is not valid JSON", "")
	}

	result := gjson.GetBytes(body, models.FieldResponse)
	if !result.Exists() {
		return "", fmt.Errorf("%w: %w", apierrors.NewParseError("missing field", models.FieldResponse), apierrors.ErrNoContent)
	}
	if result.Type != gjson.String {
		return "", apierrors.NewParseError(fmt.Sprintf("expected string, got %s", result.Type), models.FieldResponse)
	}

	return result.String(), nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
