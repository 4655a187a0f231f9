package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shennong-ai/shennong/internal/agent"
	"github.com/shennong-ai/shennong/internal/provider"
)

// testHome points SHENNONG_HOME at a pre-seeded temp dir so commands do
// not take the first-run onboarding path.
func testHome(t *testing.T) string {
	t.Helper()
	home := filepath.Join(t.TempDir(), ".shennong")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte("model = \"claude-sonnet-4-5\"\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}
	t.Setenv("SHENNONG_HOME", home)
	return home
}

func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// stubCompleter swaps the provider registry for a scripted completer.
func stubCompleter(t *testing.T, responses []*provider.ChatResponse) {
	t.Helper()
	prev := newCompleter
	t.Cleanup(func() { newCompleter = prev })
	newCompleter = func(_ *runtimeDeps) agent.Completer {
		return &scriptedCompleter{responses: responses}
	}
}

type scriptedCompleter struct {
	responses []*provider.ChatResponse
	calls     int
}

func (c *scriptedCompleter) Complete(_ context.Context, _ provider.ChatRequest) (*provider.ChatResponse, error) {
	if c.calls >= len(c.responses) {
		return c.responses[len(c.responses)-1], nil
	}
	resp := c.responses[c.calls]
	c.calls++
	return resp, nil
}

func TestRootHelpListsCommands(t *testing.T) {
	testHome(t)
	out, err := runCommand(t, "", "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, want := range []string{"ask", "repl", "models", "tools", "doctor", "keys", "config", "version"} {
		if !strings.Contains(out, want) {
			t.Fatalf("help missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	testHome(t)
	out, err := runCommand(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "Shennong") {
		t.Fatalf("output: %s", out)
	}
}

func TestModelsCommandListsCatalog(t *testing.T) {
	testHome(t)
	out, err := runCommand(t, "", "models")
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	for _, want := range []string{"anthropic", "deepseek", "claude-sonnet-4-5-20250929", "kimi-k2.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("models output missing %q:\n%s", want, out)
		}
	}
}

func TestToolsCommandListsStatus(t *testing.T) {
	testHome(t)
	out, err := runCommand(t, "", "tools")
	if err != nil {
		t.Fatalf("tools: %v", err)
	}
	if !strings.Contains(out, "interactions.check_herbs") {
		t.Fatalf("tools output missing interactions.check_herbs:\n%s", out)
	}
	// Literature tools run degraded without a configured client key, but
	// the built-in databases are ready.
	if !strings.Contains(out, "ready") {
		t.Fatalf("tools output missing ready status:\n%s", out)
	}
}

func TestDoctorReportsMissingCredentials(t *testing.T) {
	testHome(t)
	for _, env := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "DEEPSEEK_API_KEY", "MOONSHOT_API_KEY",
		"MINIMAX_API_KEY", "DASHSCOPE_API_KEY", "MISTRAL_API_KEY", "GROQ_API_KEY",
		"OPENROUTER_API_KEY", "GOOGLE_API_KEY",
	} {
		t.Setenv(env, "")
	}

	out, err := runCommand(t, "", "doctor")
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if !strings.Contains(out, "no provider credential configured") {
		t.Fatalf("doctor output:\n%s", out)
	}
	if !strings.Contains(out, "ready") {
		t.Fatalf("doctor output missing tool summary:\n%s", out)
	}
}

func TestConfigCommandPrintsMergedTOML(t *testing.T) {
	testHome(t)
	out, err := runCommand(t, "", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	for _, want := range []string{"claude-sonnet-4-5", "max_iterations", "language"} {
		if !strings.Contains(out, want) {
			t.Fatalf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestAskPrintsAnswerAndUsage(t *testing.T) {
	testHome(t)
	stubCompleter(t, []*provider.ChatResponse{
		{Content: "Ren Shen (ginseng) tonifies qi.", Usage: provider.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
	})

	out, err := runCommand(t, "", "ask", "what does ginseng do?")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !strings.Contains(out, "tonifies qi") {
		t.Fatalf("answer missing:\n%s", out)
	}
	if !strings.Contains(out, "10 in / 5 out tokens") {
		t.Fatalf("usage line missing:\n%s", out)
	}
}

func TestAskRejectsUnknownModel(t *testing.T) {
	testHome(t)
	_, err := runCommand(t, "", "ask", "-m", "not-a-model", "hello")
	if err == nil || !strings.Contains(err.Error(), "not-a-model") {
		t.Fatalf("expected unknown model error, got %v", err)
	}
}

func TestReplHandlesCommandsAndQuestions(t *testing.T) {
	home := testHome(t)
	stubCompleter(t, []*provider.ChatResponse{
		{Content: "四君子汤 tonifies spleen qi."},
	})

	stdin := "/model deepseek\n/lang zh\nwhat is 四君子汤?\n/usage\n/quit\n"
	out, err := runCommand(t, stdin, "repl")
	if err != nil {
		t.Fatalf("repl: %v", err)
	}
	if !strings.Contains(out, "switched to deepseek-v3.2") {
		t.Fatalf("model switch missing:\n%s", out)
	}
	if !strings.Contains(out, "language set to zh") {
		t.Fatalf("lang switch missing:\n%s", out)
	}
	if !strings.Contains(out, "tonifies spleen qi") {
		t.Fatalf("answer missing:\n%s", out)
	}

	// The exchange was persisted under sessions/.
	entries, err := os.ReadDir(filepath.Join(home, "sessions"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("session not persisted: %v", err)
	}
}

type failingCompleter struct{}

func (failingCompleter) Complete(_ context.Context, _ provider.ChatRequest) (*provider.ChatResponse, error) {
	return nil, errors.New("provider down")
}

func TestReplPersistsFailedExchange(t *testing.T) {
	home := testHome(t)
	prev := newCompleter
	t.Cleanup(func() { newCompleter = prev })
	newCompleter = func(_ *runtimeDeps) agent.Completer { return failingCompleter{} }

	out, err := runCommand(t, "what is 人参?\n/quit\n", "repl")
	if err != nil {
		t.Fatalf("repl: %v", err)
	}
	if !strings.Contains(out, "error:") {
		t.Fatalf("error note missing:\n%s", out)
	}

	sessionsDir := filepath.Join(home, "sessions")
	entries, err := os.ReadDir(sessionsDir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("failed exchange not persisted: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(sessionsDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read session: %v", err)
	}
	if !strings.Contains(string(data), "人参") {
		t.Fatalf("user turn missing from transcript:\n%s", data)
	}
}
