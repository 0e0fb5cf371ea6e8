package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/quizbot/internal/api"
	apierrors "github.com/diogo/quizbot/internal/errors"
	"github.com/diogo/quizbot/internal/models"
	"github.com/diogo/quizbot/internal/server"
)

// fakeTUI records the chat launch instead of taking over the terminal
type fakeTUI struct {
	called   bool
	endpoint string
	asker    api.QuizAsker
}

func (f *fakeTUI) RunChat(ctx context.Context, asker api.QuizAsker, endpoint string) error {
	f.called = true
	f.endpoint = endpoint
	f.asker = asker
	return nil
}

type testEnv struct {
	deps    *Dependencies
	mock    *api.MockQuizClient
	tui     *fakeTUI
	tty     bool
	timeout int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	env := &testEnv{mock: &api.MockQuizClient{DefaultResponse: "Question 1: ..."}, tui: &fakeTUI{}}
	env.deps = &Dependencies{
		NewAsker: func(endpoint string, timeoutSeconds int) (api.QuizAsker, error) {
			env.timeout = timeoutSeconds
			return env.mock, nil
		},
		NewCompleter: func(cfg server.Config) server.Completer { return nil },
		TUI:          env.tui,
		StdoutIsTTY:  func() bool { return env.tty },
	}
	return env
}

func (e *testEnv) run(stdin string, args ...string) (string, string, error) {
	cmd := NewRootCmd(e.deps)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_Version(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("", "--version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "quizbot "+Version) {
		t.Errorf("version output = %q", out)
	}
	if env.tui.called {
		t.Error("--version must not start the chat")
	}
}

func TestChat_Launch(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantEndpoint string
		wantTimeout  int
	}{
		{"default command", nil, models.DefaultEndpoint, 0},
		{"chat subcommand", []string{"chat"}, models.DefaultEndpoint, 0},
		{"endpoint flag", []string{"--endpoint", "http://quiz.local:9000/quiz"}, "http://quiz.local:9000/quiz", 0},
		{"timeout flag", []string{"chat", "--timeout", "30"}, models.DefaultEndpoint, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			if _, _, err := env.run("", tt.args...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !env.tui.called {
				t.Fatal("chat TUI not started")
			}
			if env.tui.endpoint != tt.wantEndpoint {
				t.Errorf("endpoint = %q, want %q", env.tui.endpoint, tt.wantEndpoint)
			}
			if env.timeout != tt.wantTimeout {
				t.Errorf("timeout = %d, want %d", env.timeout, tt.wantTimeout)
			}
			if env.tui.asker != env.mock {
				t.Error("chat got a different asker")
			}
		})
	}
}

func TestChat_InvalidEndpoint(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("", "--endpoint", "ftp://example.com/quiz")
	if err == nil {
		t.Fatal("expected error for non-http endpoint")
	}
	if env.tui.called {
		t.Error("chat started with an invalid endpoint")
	}
}

func TestChat_UnknownThemeWarns(t *testing.T) {
	env := newTestEnv(t)

	_, errOut, err := env.run("", "--theme", "solarized")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, `unknown theme "solarized"`) {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestAsk_PromptSources(t *testing.T) {
	dir := t.TempDir()
	promptFile := filepath.Join(dir, "prompt.txt")
	if err := os.WriteFile(promptFile, []byte("from file\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		stdin      string
		args       []string
		wantPrompt string
	}{
		{"argument", "", []string{"ask", "Go"}, "Go"},
		{"stdin", "1\n", []string{"ask"}, "1"},
		{"file", "", []string{"ask", "-f", promptFile}, "from file"},
		{"file wins over argument", "", []string{"ask", "-f", promptFile, "Go"}, "from file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			out, _, err := env.run(tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			calls := env.mock.Calls()
			if len(calls) != 1 || calls[0] != tt.wantPrompt {
				t.Errorf("prompts = %q, want [%q]", calls, tt.wantPrompt)
			}
			if out != "Question 1: ...\n" {
				t.Errorf("stdout = %q", out)
			}
		})
	}
}

func TestAsk_EmptyPrompt(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("   \n", "ask")
	if !errors.Is(err, apierrors.ErrEmptyPrompt) {
		t.Fatalf("err = %v, want ErrEmptyPrompt", err)
	}
	if len(env.mock.Calls()) != 0 {
		t.Error("blank prompt was sent")
	}
}

func TestAsk_TransportFailure(t *testing.T) {
	env := newTestEnv(t)
	env.mock.Err = apierrors.NewNetworkErrorWithEndpoint("post prompt", models.DefaultEndpoint, errors.New("connection refused"))

	out, _, err := env.run("", "ask", "Go")
	if !errors.Is(err, apierrors.ErrTransport) {
		t.Fatalf("err = %v, want a transport failure", err)
	}
	if out != "" {
		t.Errorf("nothing should be printed on stdout, got %q", out)
	}
}

func TestAsk_OutputFile(t *testing.T) {
	env := newTestEnv(t)
	env.mock.DefaultResponse = "A\nB"
	path := filepath.Join(t.TempDir(), "answer.txt")

	out, _, err := env.run("", "ask", "Go", "-o", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "A\nB" {
		t.Errorf("file content = %q", data)
	}
	if out != "" {
		t.Errorf("stdout = %q, want empty", out)
	}
}

func TestAsk_DecoratedOutput(t *testing.T) {
	env := newTestEnv(t)
	env.tty = true
	env.mock.DefaultResponse = "Question 1: Who?\n1. Baker\n2. Hinton"

	out, _, err := env.run("", "ask", "Go")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	labelAt := strings.Index(out, "QuizBot:")
	if labelAt < 0 {
		t.Fatalf("missing label in %q", out)
	}
	var last int
	for _, want := range []string{"Question 1: Who?", "1. Baker", "2. Hinton"} {
		i := strings.Index(out, want)
		if i < last {
			t.Errorf("%q missing or out of order in %q", want, out)
		}
		last = i
	}
}

func TestConfig_ShowAndInit(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run("", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "not created yet") || !strings.Contains(out, models.DefaultEndpoint) {
		t.Errorf("config output = %q", out)
	}

	out, _, err = env.run("", "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote") {
		t.Errorf("init output = %q", out)
	}

	if _, _, err := env.run("", "config", "init"); err == nil {
		t.Error("second init should refuse to overwrite")
	}
	if _, _, err := env.run("", "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestServe_RequiresAPIKey(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("OPENAI_API_KEY", "")
	os.Unsetenv("OPENAI_API_KEY")

	_, _, err := env.run("", "serve", "--env-file", filepath.Join(t.TempDir(), "none.env"))
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Fatalf("err = %v, want missing OPENAI_API_KEY", err)
	}
}

func TestServe_StopsWithContext(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCmd(env.deps)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0", "--env-file", filepath.Join(t.TempDir(), "none.env")})

	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve: %v", err)
	}
}
