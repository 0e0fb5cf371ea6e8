package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// fakeCompleter answers from a function and records what it was sent
type fakeCompleter struct {
	mu    sync.Mutex
	calls [][]Turn
	reply func(turns []Turn) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, turns []Turn) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, turns)
	f.mu.Unlock()
	if f.reply == nil {
		return "ok", nil
	}
	return f.reply(turns)
}

func (f *fakeCompleter) lastCall() []Turn {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func testConfig() Config {
	return Config{
		APIKey:            "test",
		Model:             "gpt-3.5-turbo",
		Temperature:       0.5,
		Addr:              "127.0.0.1:0",
		CompletionTimeout: time.Second,
		LogLevel:          "info",
	}
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/quiz", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestQuiz_ReturnsResponseField(t *testing.T) {
	fake := &fakeCompleter{reply: func([]Turn) (string, error) {
		return "Question 1: ...\n1. Baker\n2. Hinton", nil
	}}
	srv := New(testConfig(), fake)

	rec := post(t, srv.Handler(), `{"prompt":"Go"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "Question 1: ...\n1. Baker\n2. Hinton", gjson.Get(rec.Body.String(), "response").String())

	sent := fake.lastCall()
	require.Len(t, sent, 2)
	assert.Equal(t, RoleSystem, sent[0].Role)
	assert.Contains(t, sent[0].Content, "QuizBot")
	assert.Equal(t, Turn{Role: RoleUser, Content: "Go"}, sent[1])
}

func TestQuiz_ContextIsSharedAcrossRequests(t *testing.T) {
	fake := &fakeCompleter{reply: func(turns []Turn) (string, error) {
		return "answer to " + turns[len(turns)-1].Content, nil
	}}
	srv := New(testConfig(), fake)

	post(t, srv.Handler(), `{"prompt":"Go"}`)
	post(t, srv.Handler(), `{"prompt":"1"}`)

	turns := srv.Session().Turns()
	require.Len(t, turns, 5)
	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "Go"},
		{Role: RoleAssistant, Content: "answer to Go"},
		{Role: RoleUser, Content: "1"},
		{Role: RoleAssistant, Content: "answer to 1"},
	}, turns[1:])
}

func TestQuiz_MissingPromptIsEmpty(t *testing.T) {
	fake := &fakeCompleter{}
	srv := New(testConfig(), fake)

	rec := post(t, srv.Handler(), `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, Turn{Role: RoleUser, Content: ""}, fake.lastCall()[1])
}

func TestQuiz_Errors(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		reply      func([]Turn) (string, error)
		wantStatus int
		wantError  string
	}{
		{"get not allowed", http.MethodGet, "", nil, http.StatusMethodNotAllowed, "method not allowed"},
		{"invalid json", http.MethodPost, `{"prompt":`, nil, http.StatusBadRequest, "not valid JSON"},
		{"empty body", http.MethodPost, ``, nil, http.StatusBadRequest, "not valid JSON"},
		{"array body", http.MethodPost, `["Go"]`, nil, http.StatusBadRequest, "JSON object"},
		{"numeric prompt", http.MethodPost, `{"prompt":1}`, nil, http.StatusBadRequest, "must be a string"},
		{
			"model failure", http.MethodPost, `{"prompt":"Go"}`,
			func([]Turn) (string, error) { return "", errors.New("rate limited") },
			http.StatusBadGateway, "quiz model unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(testConfig(), &fakeCompleter{reply: tt.reply})

			req := httptest.NewRequest(tt.method, "/quiz", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, gjson.Get(rec.Body.String(), "error").String(), tt.wantError)
			assert.False(t, gjson.Get(rec.Body.String(), "response").Exists())
		})
	}
}

func TestQuiz_FailedTurnIsNotKept(t *testing.T) {
	fail := true
	fake := &fakeCompleter{reply: func([]Turn) (string, error) {
		if fail {
			return "", errors.New("boom")
		}
		return "welcome", nil
	}}
	srv := New(testConfig(), fake)

	rec := post(t, srv.Handler(), `{"prompt":"Go"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Len(t, srv.Session().Turns(), 1)

	fail = false
	rec = post(t, srv.Handler(), `{"prompt":"Go"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, srv.Session().Turns(), 3)
}

func TestQuiz_Preflight(t *testing.T) {
	srv := New(testConfig(), &fakeCompleter{})

	req := httptest.NewRequest(http.MethodOptions, "/quiz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestQuiz_BodyTooLarge(t *testing.T) {
	srv := New(testConfig(), &fakeCompleter{})

	big := `{"prompt":"` + strings.Repeat("a", maxRequestBytes) + `"}`
	rec := post(t, srv.Handler(), big)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv := New(testConfig(), &fakeCompleter{reply: func([]Turn) (string, error) { return "hi", nil }})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/quiz"
	resp, err := http.Post(url, "application/json", strings.NewReader(`{"prompt":"Go"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
