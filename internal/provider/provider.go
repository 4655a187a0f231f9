// Package provider normalizes incompatible LLM vendor APIs behind one
// canonical chat interface. Each adapter translates the canonical request
// into its vendor's wire format and the vendor's response back, so the
// agent loop never sees vendor-specific shapes.
package provider

import "context"

// Provider sends canonical chat requests to one LLM vendor.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Role is the author role for a chat message.
type Role string

const (
	// RoleUser is a user-authored message.
	RoleUser Role = "user"
	// RoleAssistant is an assistant-authored message.
	RoleAssistant Role = "assistant"
	// RoleTool is a tool-result message addressed to the model.
	RoleTool Role = "tool"
)

// ChatMessage is a single message in model conversation history.
type ChatMessage struct {
	Role       Role
	Content    string
	ToolCallID string
	ToolCalls  []ToolCall
}

// ToolDefinition describes a callable tool exposed to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a model request to execute a tool. Arguments is the raw
// JSON object produced by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// TokenUsage reports provider token accounting for one response.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// ChatRequest is the provider-agnostic request payload. Model is the
// canonical model id already resolved through the catalog. Temperature is
// clamped by each adapter to the bounds its vendor accepts.
type ChatRequest struct {
	Model        string
	SystemPrompt string
	Messages     []ChatMessage
	Tools        []ToolDefinition
	Temperature  float64
	MaxTokens    int
}

// ChatResponse is the provider-agnostic response payload.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     TokenUsage
}

const defaultMaxTokens = 8192

func resolveMaxTokens(requestMaxTokens, configuredMaxTokens int) int {
	if requestMaxTokens > 0 {
		return requestMaxTokens
	}
	if configuredMaxTokens > 0 {
		return configuredMaxTokens
	}
	return defaultMaxTokens
}

// clampTemperature bounds t to [0, max]. Negative requests collapse to 0.
func clampTemperature(t, max float64) float64 {
	if t < 0 {
		return 0
	}
	if t > max {
		return max
	}
	return t
}
