package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shennong-ai/shennong/internal/store"
)

// HomeDir returns the Shennong home directory. Uses SHENNONG_HOME if
// set, otherwise ~/.shennong.
func HomeDir() (string, error) {
	if dir := os.Getenv("SHENNONG_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".shennong"), nil
}

func homeConfigPath(home string) string {
	return filepath.Join(home, store.ConfigFilePath)
}

func (c *Config) ConfigPath() string {
	return homeConfigPath(c.HomeDir)
}

// UsagePath locates the usage ledger file. A relative costs.path is
// anchored under the home directory.
func (c *Config) UsagePath() string {
	path := c.Costs.Path
	if path == "" {
		path = store.UsageFilePath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.HomeDir, path)
}

func (c *Config) SessionsDir() string {
	return filepath.Join(c.HomeDir, store.SessionsDirPath)
}

func (c *Config) LiteratureDir() string {
	return filepath.Join(c.HomeDir, store.LiteratureDirPath)
}

func (c *Config) TmpDir() string {
	return filepath.Join(c.HomeDir, store.TmpDirPath)
}
