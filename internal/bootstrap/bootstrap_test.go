package bootstrap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shennong-ai/shennong/internal/config"
)

func TestInitializeCreatesHomeTree(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".shennong")
	cfg := &config.Config{HomeDir: home}

	if err := Initialize(cfg); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	for _, dir := range []string{
		home,
		filepath.Join(home, "sessions"),
		filepath.Join(home, "literature"),
		filepath.Join(home, "tmp"),
	} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("missing dir %q: %v", dir, err)
		}
	}

	body, err := os.ReadFile(filepath.Join(home, "config.toml"))
	if err != nil {
		t.Fatalf("read starter config: %v", err)
	}
	if !strings.Contains(string(body), "$ANTHROPIC_API_KEY") {
		t.Fatalf("starter config missing key placeholder:\n%s", body)
	}
	if _, err := os.Stat(filepath.Join(home, "usage.jsonl")); err != nil {
		t.Fatalf("usage ledger not seeded: %v", err)
	}
}

func TestInitializeKeepsExistingConfig(t *testing.T) {
	home := filepath.Join(t.TempDir(), ".shennong")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	custom := "model = \"deepseek-v3.2\"\n"
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(custom), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := Initialize(&config.Config{HomeDir: home}); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	body, err := os.ReadFile(filepath.Join(home, "config.toml"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != custom {
		t.Fatalf("existing config overwritten:\n%s", body)
	}
}
