package provider

import (
	"fmt"
	"sort"
	"strings"
)

// ModelInfo is one catalog entry for a supported model.
type ModelInfo struct {
	ID            string
	Provider      string
	DisplayName   string
	ContextWindow int
	// Prices are USD per million tokens. Zero means no published pricing;
	// the ledger records such calls at zero estimated cost.
	InputPrice  float64
	OutputPrice float64
	Description string
	Aliases     []string
}

// Catalog resolves user-supplied model strings to concrete catalog entries.
// Aliases fold onto canonical ids; unknown ids fall back to provider-prefix
// detection so newly released vendor models still route correctly.
type Catalog struct {
	byID    map[string]ModelInfo
	byAlias map[string]string
}

// NewCatalog returns the built-in model catalog.
func NewCatalog() *Catalog {
	c := &Catalog{
		byID:    make(map[string]ModelInfo, len(builtinModels)),
		byAlias: make(map[string]string),
	}
	for _, m := range builtinModels {
		c.byID[m.ID] = m
		for _, alias := range m.Aliases {
			c.byAlias[strings.ToLower(alias)] = m.ID
		}
	}
	return c
}

// Resolve maps a model id or alias to its catalog entry. Lookup order is
// exact id, alias, then provider-prefix detection; prefix matches return a
// synthesized entry with the given id and no pricing metadata. Resolution
// is deterministic for any fixed input.
func (c *Catalog) Resolve(modelOrAlias string) (ModelInfo, error) {
	name := strings.TrimSpace(modelOrAlias)
	if name == "" {
		return ModelInfo{}, &Error{Code: CodeUnknownModel, Provider: "catalog", Message: "model name is required"}
	}
	if info, ok := c.byID[name]; ok {
		return info, nil
	}
	if id, ok := c.byAlias[strings.ToLower(name)]; ok {
		return c.byID[id], nil
	}
	lower := strings.ToLower(name)
	for _, pp := range providerPrefixes {
		if strings.HasPrefix(lower, pp.prefix) {
			return ModelInfo{ID: name, Provider: pp.provider, DisplayName: name}, nil
		}
	}
	return ModelInfo{}, &Error{
		Code:     CodeUnknownModel,
		Provider: "catalog",
		Message:  fmt.Sprintf("no catalog entry or alias matches %q", name),
	}
}

// Models lists catalog entries, optionally filtered by provider, in stable
// id order.
func (c *Catalog) Models(providerName string) []ModelInfo {
	out := make([]ModelInfo, 0, len(c.byID))
	for _, m := range c.byID {
		if providerName != "" && m.Provider != providerName {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Pricing returns USD-per-million-token prices for a model, or ok=false
// when the catalog has no pricing metadata for it.
func (c *Catalog) Pricing(modelID string) (input, output float64, ok bool) {
	info, found := c.byID[modelID]
	if !found || (info.InputPrice == 0 && info.OutputPrice == 0) {
		return 0, 0, false
	}
	return info.InputPrice, info.OutputPrice, true
}

type providerPrefix struct {
	prefix   string
	provider string
}

// Ordered: first match wins, so resolution stays deterministic.
var providerPrefixes = []providerPrefix{
	{"claude-", "anthropic"},
	{"gpt-", "openai"},
	{"o1-", "openai"},
	{"o3-", "openai"},
	{"o4-", "openai"},
	{"deepseek-", "deepseek"},
	{"kimi-", "kimi"},
	{"minimax", "minimax"},
	{"qwen", "qwen"},
	{"gemini-", "google"},
	{"mistral-", "mistral"},
}

var builtinModels = []ModelInfo{
	{
		ID: "claude-sonnet-4-5-20250929", Provider: "anthropic", DisplayName: "Claude Sonnet 4.5",
		ContextWindow: 200_000, InputPrice: 3.00, OutputPrice: 15.00,
		Description: "Best balance of speed and intelligence",
		Aliases:     []string{"sonnet", "claude-sonnet"},
	},
	{
		ID: "claude-haiku-4-5-20251001", Provider: "anthropic", DisplayName: "Claude Haiku 4.5",
		ContextWindow: 200_000, InputPrice: 0.80, OutputPrice: 4.00,
		Description: "Fastest and most affordable",
		Aliases:     []string{"haiku", "claude-haiku"},
	},
	{
		ID: "claude-opus-4-6", Provider: "anthropic", DisplayName: "Claude Opus 4.6",
		ContextWindow: 200_000, InputPrice: 15.00, OutputPrice: 75.00,
		Description: "Most capable for complex research",
		Aliases:     []string{"opus", "claude-opus"},
	},
	{
		ID: "gpt-4o", Provider: "openai", DisplayName: "GPT-4o",
		ContextWindow: 128_000, InputPrice: 2.50, OutputPrice: 10.00,
		Description: "High-intelligence flagship model",
		Aliases:     []string{"4o"},
	},
	{
		ID: "gpt-4o-mini", Provider: "openai", DisplayName: "GPT-4o Mini",
		ContextWindow: 128_000, InputPrice: 0.15, OutputPrice: 0.60,
		Description: "Fast and affordable small model",
		Aliases:     []string{"4o-mini"},
	},
	{
		ID: "o3-mini", Provider: "openai", DisplayName: "o3-mini",
		ContextWindow: 200_000, InputPrice: 1.10, OutputPrice: 4.40,
		Description: "Reasoning model, good for analysis",
	},
	{
		ID: "gpt-4.1", Provider: "openai", DisplayName: "GPT-4.1",
		ContextWindow: 1_047_576, InputPrice: 2.00, OutputPrice: 8.00,
		Description: "Latest flagship with 1M context",
	},
	{
		ID: "gpt-4.1-mini", Provider: "openai", DisplayName: "GPT-4.1 Mini",
		ContextWindow: 1_047_576, InputPrice: 0.40, OutputPrice: 1.60,
		Description: "Balanced speed and intelligence",
	},
	{
		ID: "gpt-4.1-nano", Provider: "openai", DisplayName: "GPT-4.1 Nano",
		ContextWindow: 1_047_576, InputPrice: 0.10, OutputPrice: 0.40,
		Description: "Fastest, most cost-effective",
	},
	{
		ID: "deepseek-v3.2", Provider: "deepseek", DisplayName: "DeepSeek V3.2",
		ContextWindow: 128_000,
		Description:   "Latest general model",
		Aliases:       []string{"deepseek"},
	},
	{
		ID: "deepseek-r1", Provider: "deepseek", DisplayName: "DeepSeek R1",
		ContextWindow: 128_000,
		Description:   "Reasoning model",
		Aliases:       []string{"r1"},
	},
	{
		ID: "kimi-k2.5", Provider: "kimi", DisplayName: "Kimi K2.5",
		ContextWindow: 200_000,
		Description:   "Flagship Kimi model",
		Aliases:       []string{"kimi"},
	},
	{
		ID: "minimax-m2.5", Provider: "minimax", DisplayName: "MiniMax M2.5",
		ContextWindow: 200_000,
		Description:   "Flagship MiniMax model",
		Aliases:       []string{"minimax"},
	},
	{
		ID: "qwen3-max", Provider: "qwen", DisplayName: "Qwen3-Max",
		ContextWindow: 1_000_000,
		Description:   "Flagship Qwen model",
		Aliases:       []string{"qwen"},
	},
	{
		ID: "qwen-plus", Provider: "qwen", DisplayName: "Qwen-Plus",
		ContextWindow: 200_000,
		Description:   "Balanced speed/cost",
	},
	{
		ID: "gemini-2.5-pro", Provider: "google", DisplayName: "Gemini 2.5 Pro",
		ContextWindow: 1_048_576, InputPrice: 1.25, OutputPrice: 10.00,
		Description: "Most capable Gemini, best for complex reasoning",
		Aliases:     []string{"gemini-pro-latest"},
	},
	{
		ID: "gemini-2.5-flash", Provider: "google", DisplayName: "Gemini 2.5 Flash",
		ContextWindow: 1_048_576, InputPrice: 0.15, OutputPrice: 0.60,
		Description: "Fast mid-size multimodal model",
		Aliases:     []string{"gemini-flash-latest", "gemini"},
	},
	{
		ID: "gemini-2.5-flash-lite", Provider: "google", DisplayName: "Gemini 2.5 Flash-Lite",
		ContextWindow: 1_048_576, InputPrice: 0.075, OutputPrice: 0.30,
		Description: "Cost-efficient Gemini 2.5 model",
	},
	{
		ID: "gemini-2.0-flash", Provider: "google", DisplayName: "Gemini 2.0 Flash",
		ContextWindow: 1_048_576, InputPrice: 0.10, OutputPrice: 0.40,
		Description: "Fast, versatile next-gen multimodal model",
	},
	{
		ID: "gemini-2.0-flash-lite", Provider: "google", DisplayName: "Gemini 2.0 Flash-Lite",
		ContextWindow: 1_048_576, InputPrice: 0.075, OutputPrice: 0.30,
		Description: "Most cost-efficient Gemini 2.0 model",
	},
	{
		ID: "gemini-3-pro-preview", Provider: "google", DisplayName: "Gemini 3 Pro Preview",
		ContextWindow: 1_048_576,
		Description:   "Frontier Gemini 3 Pro, early access",
	},
	{
		ID: "gemini-3-flash-preview", Provider: "google", DisplayName: "Gemini 3 Flash Preview",
		ContextWindow: 1_048_576,
		Description:   "Frontier Gemini 3 Flash, early access",
	},
	{
		ID: "mistral-large-latest", Provider: "mistral", DisplayName: "Mistral Large",
		ContextWindow: 128_000,
		Description:   "Flagship Mistral model",
		Aliases:       []string{"mistral"},
	},
	{
		ID: "llama-3.1-70b-versatile", Provider: "groq", DisplayName: "Llama 3.1 70B (Groq)",
		ContextWindow: 128_000,
		Description:   "Fast Llama inference on Groq",
		Aliases:       []string{"groq-llama"},
	},
}

// DefaultModels maps each provider to its default model id, used when a
// profile configures a provider without pinning a model.
var DefaultModels = map[string]string{
	"anthropic": "claude-sonnet-4-5-20250929",
	"openai":    "gpt-4o",
	"deepseek":  "deepseek-v3.2",
	"kimi":      "kimi-k2.5",
	"minimax":   "minimax-m2.5",
	"qwen":      "qwen3-max",
	"google":    "gemini-2.5-flash",
	"mistral":   "mistral-large-latest",
	"groq":      "llama-3.1-70b-versatile",
}
