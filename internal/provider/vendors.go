package provider

import "os"

// vendorProfile captures the wire-level quirks of one vendor: where it
// lives, how the credential is injected, and which parameter constraints
// the adapter must normalize instead of surfacing as request errors.
type vendorProfile struct {
	name       string
	defaultURL string
	apiKeyEnv  string
	// maxTemperature is the upper bound the vendor accepts.
	maxTemperature float64
	// fixedTemperature, when non-nil, means the vendor rejects any other
	// value; the adapter silently rewrites the request to it. This is a
	// documented vendor quirk, not a user error.
	fixedTemperature *float64
}

var kimiTemperature = 1.0

// Vendors served by the OpenAI-compatible chat-completions adapter.
// Anthropic and Google have dedicated adapters and appear here only for
// credential-env resolution.
var vendorProfiles = map[string]vendorProfile{
	"anthropic": {
		name:           "anthropic",
		apiKeyEnv:      "ANTHROPIC_API_KEY",
		maxTemperature: 1.0,
	},
	"openai": {
		name:           "openai",
		defaultURL:     "https://api.openai.com/v1/chat/completions",
		apiKeyEnv:      "OPENAI_API_KEY",
		maxTemperature: 2.0,
	},
	"deepseek": {
		name:           "deepseek",
		defaultURL:     "https://api.deepseek.com/v1/chat/completions",
		apiKeyEnv:      "DEEPSEEK_API_KEY",
		maxTemperature: 2.0,
	},
	"kimi": {
		name:             "kimi",
		defaultURL:       "https://api.moonshot.cn/v1/chat/completions",
		apiKeyEnv:        "MOONSHOT_API_KEY",
		maxTemperature:   1.0,
		fixedTemperature: &kimiTemperature,
	},
	"minimax": {
		name:           "minimax",
		defaultURL:     "https://api.minimax.chat/v1/chat/completions",
		apiKeyEnv:      "MINIMAX_API_KEY",
		maxTemperature: 1.0,
	},
	"qwen": {
		name:           "qwen",
		defaultURL:     "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions",
		apiKeyEnv:      "DASHSCOPE_API_KEY",
		maxTemperature: 2.0,
	},
	"mistral": {
		name:           "mistral",
		defaultURL:     "https://api.mistral.ai/v1/chat/completions",
		apiKeyEnv:      "MISTRAL_API_KEY",
		maxTemperature: 1.0,
	},
	"groq": {
		name:           "groq",
		defaultURL:     "https://api.groq.com/openai/v1/chat/completions",
		apiKeyEnv:      "GROQ_API_KEY",
		maxTemperature: 2.0,
	},
	"openrouter": {
		name:           "openrouter",
		defaultURL:     "https://openrouter.ai/api/v1/chat/completions",
		apiKeyEnv:      "OPENROUTER_API_KEY",
		maxTemperature: 2.0,
	},
	"google": {
		name:           "google",
		defaultURL:     "https://generativelanguage.googleapis.com/v1beta",
		apiKeyEnv:      "GOOGLE_API_KEY",
		maxTemperature: 2.0,
	},
}

// resolveAPIKey prefers the configured key and falls back to the vendor's
// conventional environment variable.
func resolveAPIKey(configured string, profile vendorProfile) string {
	if configured != "" {
		return configured
	}
	if profile.apiKeyEnv == "" {
		return ""
	}
	return os.Getenv(profile.apiKeyEnv)
}
