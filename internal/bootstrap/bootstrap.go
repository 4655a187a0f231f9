// Package bootstrap prepares the Shennong home tree on first run.
package bootstrap

import (
	"fmt"
	"os"

	"github.com/shennong-ai/shennong/internal/config"
)

// Initialize creates the expected home tree if missing and seeds a
// starter config.toml. Existing files are never overwritten.
func Initialize(cfg *config.Config) error {
	dirs := []string{
		cfg.HomeDir,
		cfg.SessionsDir(),
		cfg.LiteratureDir(),
		cfg.TmpDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}

	starter, err := config.DefaultUserConfigTOML()
	if err != nil {
		return err
	}
	files := []struct {
		path    string
		content string
	}{
		{path: cfg.ConfigPath(), content: starter},
		{path: cfg.UsagePath(), content: ""},
	}
	for _, file := range files {
		if err := writeFileIfMissing(file.path, file.content); err != nil {
			return err
		}
	}
	return nil
}

func writeFileIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write file %q: %w", path, err)
	}
	return nil
}
