package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/diogo/quizbot/internal/logging"
	"github.com/diogo/quizbot/internal/models"
)

const (
	maxRequestBytes = 64 << 10
	shutdownTimeout = 5 * time.Second
)

// Server serves POST /quiz on top of a shared Session.
type Server struct {
	cfg        Config
	session    *Session
	httpServer *http.Server
}

// New creates a server whose quiz context is seeded with the QuizBot prompt
func New(cfg Config, completer Completer) *Server {
	s := &Server{
		cfg:     cfg,
		session: NewSession(completer, SystemPrompt()),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Session returns the shared quiz context
func (s *Server) Session() *Session {
	return s.session
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(models.QuizPath, s.handleQuiz)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Run listens on the configured address and blocks until ctx is canceled
// or the listener fails. Shutdown waits for in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info("quiz server listening", "addr", ln.Addr().String(), "model", s.cfg.Model)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info("context canceled, shutting down")
	case serveErr = <-errCh:
		logging.Error("quiz server failed", "error", serveErr)
	}

	// the caller's context is already done
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	shutdownErr := s.httpServer.Shutdown(shutdownCtx)

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return shutdownErr
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSONField(w, http.StatusMethodNotAllowed, models.FieldError, "method not allowed")
		return
	}

	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONField(w, http.StatusRequestEntityTooLarge, models.FieldError, "request body too large")
			return
		}
		writeJSONField(w, http.StatusBadRequest, models.FieldError, "cannot read request body")
		return
	}

	prompt, err := parsePrompt(body)
	if err != nil {
		logging.Warn("bad quiz request", "request_id", requestID, "error", err)
		writeJSONField(w, http.StatusBadRequest, models.FieldError, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.CompletionTimeout)
	defer cancel()

	start := time.Now()
	answer, err := s.session.Reply(ctx, prompt)
	if err != nil {
		logging.Error("quiz completion failed", "request_id", requestID, "error", err)
		writeJSONField(w, http.StatusBadGateway, models.FieldError, "quiz model unavailable")
		return
	}

	logging.Info("quiz answered",
		"request_id", requestID,
		"prompt_chars", len(prompt),
		"answer_chars", len(answer),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	writeJSONField(w, http.StatusOK, models.FieldResponse, answer)
}

// parsePrompt reads the prompt field; a missing field is an empty prompt
func parsePrompt(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errors.New("request body is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return "", errors.New("request body must be a JSON object")
	}

	field := root.Get(models.FieldPrompt)
	switch {
	case !field.Exists():
		return "", nil
	case field.Type != gjson.String:
		return "", fmt.Errorf("%q must be a string", models.FieldPrompt)
	}
	return field.String(), nil
}

func setCORSHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSONField(w http.ResponseWriter, status int, field, value string) {
	body, err := sjson.SetBytes([]byte("{}"), field, value)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
