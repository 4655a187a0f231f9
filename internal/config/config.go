// Package config loads Shennong runtime configuration from a TOML file
// and environment variables, exposing typed structs for every section.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/shennong-ai/shennong/internal/provider"
)

// Config is the runtime configuration merged from defaults, config.toml,
// and environment variable expansion.
type Config struct {
	// HomeDir is runtime-resolved from SHENNONG_HOME and not read from config.
	HomeDir string `mapstructure:"-"`

	Model string                      `mapstructure:"model"`
	LLM   map[string]LLMProfileConfig `mapstructure:"llm"`
	Agent AgentConfig                 `mapstructure:"agent"`
	Tools ToolsConfig                 `mapstructure:"tools"`
	UI    UIConfig                    `mapstructure:"ui"`
	Costs CostsConfig                 `mapstructure:"costs"`
}

// LLMProfileConfig configures one vendor connection. Sections are keyed
// by vendor name ([llm.anthropic], [llm.deepseek], ...).
type LLMProfileConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// AgentConfig bounds the research loop and tool execution.
type AgentConfig struct {
	MaxIterations     int           `mapstructure:"max_iterations"`
	ValidationRetries int           `mapstructure:"validation_retries"`
	ToolTimeout       time.Duration `mapstructure:"tool_timeout"`
	MaxParallelTools  int           `mapstructure:"max_parallel_tools"`
	RetryAttempts     int           `mapstructure:"retry_attempts"`
	RetryBaseDelay    time.Duration `mapstructure:"retry_base_delay"`
}

// ToolsConfig configures the built-in tool set. Empty base URLs select
// the public endpoints.
type ToolsConfig struct {
	CodeTimeout        time.Duration `mapstructure:"code_timeout"`
	LiteratureBaseURL  string        `mapstructure:"literature_base_url"`
	OpenTargetsBaseURL string        `mapstructure:"open_targets_base_url"`
	TrialsBaseURL      string        `mapstructure:"trials_base_url"`
}

// UIConfig controls output rendering.
type UIConfig struct {
	Language string `mapstructure:"language"`
}

// CostsConfig locates the usage ledger sink.
type CostsConfig struct {
	Path string `mapstructure:"path"`
}

var defaultConfig = Config{
	Model: "claude-sonnet-4-5",
	LLM: map[string]LLMProfileConfig{
		"anthropic": {
			APIKey:         "",
			RequestTimeout: 60 * time.Second,
		},
	},
	Agent: AgentConfig{
		MaxIterations:     12,
		ValidationRetries: 2,
		ToolTimeout:       30 * time.Second,
		MaxParallelTools:  4,
		RetryAttempts:     3,
		RetryBaseDelay:    2 * time.Second,
	},
	Tools: ToolsConfig{
		CodeTimeout: 20 * time.Second,
	},
	UI: UIConfig{
		Language: "en",
	},
	Costs: CostsConfig{
		Path: "usage.jsonl",
	},
}

// Load merges hardcoded defaults and config file values in that order.
// Config is always at $SHENNONG_HOME/config.toml.
func Load() (*Config, error) {
	home, err := HomeDir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(homeConfigPath(home))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		expandEnvStringHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, func(c *mapstructure.DecoderConfig) {
		c.DecodeHook = decodeHook
	}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.HomeDir = home
	return &cfg, nil
}

// Validate checks startup configuration before any provider call is
// attempted and returns the first fatal error.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("model is required")
	}
	switch c.UI.Language {
	case "en", "zh", "bi":
	default:
		return fmt.Errorf("invalid ui.language %q (allowed: en, zh, bi)", c.UI.Language)
	}
	if c.Agent.MaxIterations < 0 {
		return errors.New("agent.max_iterations must be >= 0")
	}
	if c.Agent.ToolTimeout < 0 {
		return errors.New("agent.tool_timeout must be >= 0")
	}
	if c.Agent.MaxParallelTools < 0 {
		return errors.New("agent.max_parallel_tools must be >= 0")
	}
	if c.Tools.CodeTimeout < 0 {
		return errors.New("tools.code_timeout must be >= 0")
	}
	for name, llm := range c.LLM {
		if llm.MaxTokens < 0 {
			return fmt.Errorf("llm.%s.max_tokens must be >= 0", name)
		}
		if llm.RequestTimeout < 0 {
			return fmt.Errorf("llm.%s.request_timeout must be >= 0", name)
		}
	}
	return nil
}

// ProviderConfigs converts the llm sections into the provider registry's
// per-vendor configuration.
func (c *Config) ProviderConfigs() map[string]provider.ProviderConfig {
	out := make(map[string]provider.ProviderConfig, len(c.LLM))
	for name, llm := range c.LLM {
		out[name] = provider.ProviderConfig{
			APIKey:    llm.APIKey,
			BaseURL:   llm.BaseURL,
			MaxTokens: llm.MaxTokens,
		}
	}
	return out
}

// HTTPTimeout returns the per-request HTTP timeout for the shared
// client: the longest configured profile timeout, defaulting to 60s.
func (c *Config) HTTPTimeout() time.Duration {
	timeout := 60 * time.Second
	for _, llm := range c.LLM {
		if llm.RequestTimeout > timeout {
			timeout = llm.RequestTimeout
		}
	}
	return timeout
}

// Write renders the merged configuration (defaults overlaid by user
// config) to w in TOML format.
func Write(w io.Writer) error {
	if w == nil {
		return errors.New("writer is required")
	}

	home, err := HomeDir()
	if err != nil {
		return err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(homeConfigPath(home))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config file: %w", err)
		}
	}

	// Keep duration fields human-readable in generated TOML.
	v.Set("llm.anthropic.request_timeout", v.GetDuration("llm.anthropic.request_timeout").String())
	v.Set("agent.tool_timeout", v.GetDuration("agent.tool_timeout").String())
	v.Set("agent.retry_base_delay", v.GetDuration("agent.retry_base_delay").String())
	v.Set("tools.code_timeout", v.GetDuration("tools.code_timeout").String())

	if err := v.WriteConfigTo(w); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultUserConfigTOML renders the minimal bootstrap user config. It
// carries only the user-editable essentials, not the full default
// surface.
func DefaultUserConfigTOML() (string, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.Set("model", defaultConfig.Model)
	v.Set("llm.anthropic.api_key", "$ANTHROPIC_API_KEY")
	v.Set("llm.anthropic.request_timeout", defaultConfig.LLM["anthropic"].RequestTimeout.String())
	v.Set("ui.language", defaultConfig.UI.Language)
	v.Set("costs.path", defaultConfig.Costs.Path)

	var out bytes.Buffer
	if err := v.WriteConfigTo(&out); err != nil {
		return "", fmt.Errorf("write default user config: %w", err)
	}
	return out.String(), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model", defaultConfig.Model)

	v.SetDefault("llm.anthropic.api_key", defaultConfig.LLM["anthropic"].APIKey)
	v.SetDefault("llm.anthropic.request_timeout", defaultConfig.LLM["anthropic"].RequestTimeout)

	v.SetDefault("agent.max_iterations", defaultConfig.Agent.MaxIterations)
	v.SetDefault("agent.validation_retries", defaultConfig.Agent.ValidationRetries)
	v.SetDefault("agent.tool_timeout", defaultConfig.Agent.ToolTimeout)
	v.SetDefault("agent.max_parallel_tools", defaultConfig.Agent.MaxParallelTools)
	v.SetDefault("agent.retry_attempts", defaultConfig.Agent.RetryAttempts)
	v.SetDefault("agent.retry_base_delay", defaultConfig.Agent.RetryBaseDelay)

	v.SetDefault("tools.code_timeout", defaultConfig.Tools.CodeTimeout)
	v.SetDefault("tools.literature_base_url", defaultConfig.Tools.LiteratureBaseURL)
	v.SetDefault("tools.open_targets_base_url", defaultConfig.Tools.OpenTargetsBaseURL)
	v.SetDefault("tools.trials_base_url", defaultConfig.Tools.TrialsBaseURL)

	v.SetDefault("ui.language", defaultConfig.UI.Language)
	v.SetDefault("costs.path", defaultConfig.Costs.Path)
}

func expandEnvStringHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to.Kind() != reflect.String {
			return data, nil
		}
		value, ok := data.(string)
		if !ok {
			return data, nil
		}
		return os.ExpandEnv(value), nil
	}
}
