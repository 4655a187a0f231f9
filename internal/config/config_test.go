package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".shennong")
	t.Setenv("SHENNONG_HOME", home)
	writeConfig(t, home, `
model = "deepseek-v3.2"

[llm.deepseek]
api_key = "test-key"
max_tokens = 4096
request_timeout = "90s"

[agent]
max_iterations = 5

[ui]
language = "zh"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Model != "deepseek-v3.2" {
		t.Fatalf("model: %q", cfg.Model)
	}
	llm := cfg.LLM["deepseek"]
	if llm.APIKey != "test-key" || llm.MaxTokens != 4096 {
		t.Fatalf("deepseek profile: %+v", llm)
	}
	if llm.RequestTimeout != 90*time.Second {
		t.Fatalf("request timeout: %v", llm.RequestTimeout)
	}
	if cfg.Agent.MaxIterations != 5 {
		t.Fatalf("max iterations: %d", cfg.Agent.MaxIterations)
	}
	// Unset agent fields keep their defaults.
	if cfg.Agent.ValidationRetries != 2 {
		t.Fatalf("validation retries: %d", cfg.Agent.ValidationRetries)
	}
	if cfg.UI.Language != "zh" {
		t.Fatalf("language: %q", cfg.UI.Language)
	}
}

func TestLoadExpandsEnvVarsInStringValues(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".shennong")
	t.Setenv("SHENNONG_HOME", home)
	t.Setenv("DEEPSEEK_API_KEY", "expanded-key")
	writeConfig(t, home, `
[llm.deepseek]
api_key = "$DEEPSEEK_API_KEY"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LLM["deepseek"].APIKey != "expanded-key" {
		t.Fatalf("api key: %q", cfg.LLM["deepseek"].APIKey)
	}
}

func TestLoadDefaultsApplyWithoutConfigFile(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".shennong")
	t.Setenv("SHENNONG_HOME", home)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HomeDir != home {
		t.Fatalf("home dir: %q", cfg.HomeDir)
	}
	if cfg.Model != "claude-sonnet-4-5" {
		t.Fatalf("default model: %q", cfg.Model)
	}
	if cfg.Agent.MaxIterations != 12 || cfg.Agent.ValidationRetries != 2 {
		t.Fatalf("agent defaults: %+v", cfg.Agent)
	}
	if cfg.Agent.ToolTimeout != 30*time.Second || cfg.Agent.MaxParallelTools != 4 {
		t.Fatalf("agent defaults: %+v", cfg.Agent)
	}
	if cfg.Agent.RetryAttempts != 3 || cfg.Agent.RetryBaseDelay != 2*time.Second {
		t.Fatalf("retry defaults: %+v", cfg.Agent)
	}
	if cfg.UI.Language != "en" {
		t.Fatalf("default language: %q", cfg.UI.Language)
	}
	if cfg.UsagePath() != filepath.Join(home, "usage.jsonl") {
		t.Fatalf("usage path: %q", cfg.UsagePath())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadToolsSection(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".shennong")
	t.Setenv("SHENNONG_HOME", home)
	writeConfig(t, home, `
[tools]
code_timeout = "5s"
literature_base_url = "http://localhost:9999/eutils"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Tools.CodeTimeout != 5*time.Second {
		t.Fatalf("code timeout: %v", cfg.Tools.CodeTimeout)
	}
	if cfg.Tools.LiteratureBaseURL != "http://localhost:9999/eutils" {
		t.Fatalf("literature base url: %q", cfg.Tools.LiteratureBaseURL)
	}
	// Unset endpoints stay empty so the built-in defaults apply.
	if cfg.Tools.OpenTargetsBaseURL != "" || cfg.Tools.TrialsBaseURL != "" {
		t.Fatalf("unexpected endpoint overrides: %+v", cfg.Tools)
	}
}

func TestValidateRejectsBadLanguage(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".shennong")
	t.Setenv("SHENNONG_HOME", home)
	writeConfig(t, home, `
[ui]
language = "fr"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "ui.language") {
		t.Fatalf("expected language error, got %v", err)
	}
}

func TestProviderConfigsMapsProfiles(t *testing.T) {
	cfg := &Config{LLM: map[string]LLMProfileConfig{
		"qwen": {APIKey: "k", BaseURL: "https://example.test/v1", MaxTokens: 2048},
	}}
	got := cfg.ProviderConfigs()
	pc := got["qwen"]
	if pc.APIKey != "k" || pc.BaseURL != "https://example.test/v1" || pc.MaxTokens != 2048 {
		t.Fatalf("provider config: %+v", pc)
	}
}

func TestHTTPTimeoutUsesLongestProfile(t *testing.T) {
	cfg := &Config{LLM: map[string]LLMProfileConfig{
		"anthropic": {RequestTimeout: 30 * time.Second},
		"deepseek":  {RequestTimeout: 2 * time.Minute},
	}}
	if cfg.HTTPTimeout() != 2*time.Minute {
		t.Fatalf("timeout: %v", cfg.HTTPTimeout())
	}
	if (&Config{}).HTTPTimeout() != 60*time.Second {
		t.Fatalf("default timeout: %v", (&Config{}).HTTPTimeout())
	}
}

func TestHomeDirRespectsEnvVar(t *testing.T) {
	t.Setenv("SHENNONG_HOME", "/tmp/my-shennong")
	dir, err := HomeDir()
	if err != nil {
		t.Fatalf("home dir: %v", err)
	}
	if dir != "/tmp/my-shennong" {
		t.Fatalf("dir: %q", dir)
	}
}

func TestHomeDirDefaultsToUserHome(t *testing.T) {
	t.Setenv("SHENNONG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("user home: %v", err)
	}
	dir, err := HomeDir()
	if err != nil {
		t.Fatalf("home dir: %v", err)
	}
	if dir != filepath.Join(home, ".shennong") {
		t.Fatalf("dir: %q", dir)
	}
}

func TestDefaultUserConfigTOML(t *testing.T) {
	body, err := DefaultUserConfigTOML()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"$ANTHROPIC_API_KEY", "claude-sonnet-4-5", "[ui]", "[costs]"} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing %q in:\n%s", want, body)
		}
	}
}
