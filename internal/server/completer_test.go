package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const completionJSON = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-3.5-turbo",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "Question 1: ...\n1. Baker"},
    "finish_reason": "stop"
  }],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func TestOpenAICompleter_Complete(t *testing.T) {
	var gotBody string
	var gotAuth string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionJSON)
	}))
	defer api.Close()

	cfg := testConfig()
	cfg.BaseURL = api.URL + "/v1"
	c := NewOpenAICompleter(cfg)

	answer, err := c.Complete(context.Background(), []Turn{
		{Role: RoleSystem, Content: "be QuizBot"},
		{Role: RoleUser, Content: "Go"},
		{Role: RoleAssistant, Content: "Question 0"},
		{Role: RoleUser, Content: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Question 1: ...\n1. Baker", answer)

	assert.Equal(t, "Bearer test", gotAuth)
	assert.Equal(t, "gpt-3.5-turbo", gjson.Get(gotBody, "model").String())
	assert.Equal(t, 0.5, gjson.Get(gotBody, "temperature").Float())
	assert.Equal(t, []string{"system", "user", "assistant", "user"}, roles(gotBody))
	assert.Equal(t, "1", gjson.Get(gotBody, "messages.3.content").String())
}

func TestOpenAICompleter_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"message":"boom"}}`},
		{"no choices", http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer api.Close()

			cfg := testConfig()
			cfg.BaseURL = api.URL + "/v1"
			cfg.MaxRetries = 0

			_, err := NewOpenAICompleter(cfg).Complete(context.Background(), []Turn{{Role: RoleUser, Content: "Go"}})
			assert.Error(t, err)
		})
	}
}

func roles(body string) []string {
	var out []string
	for _, m := range gjson.Get(body, "messages").Array() {
		out = append(out, m.Get("role").String())
	}
	return out
}
