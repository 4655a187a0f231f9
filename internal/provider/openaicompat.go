package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// openAICompatProvider speaks the chat-completions dialect shared by
// OpenAI, DeepSeek, Moonshot/Kimi, MiniMax, DashScope/Qwen, Mistral, Groq
// and OpenRouter. The vendor profile supplies the endpoint, the credential
// env fallback, and parameter quirks.
type openAICompatProvider struct {
	profile    vendorProfile
	apiKey     string
	endpoint   string
	maxTokens  int
	httpClient *http.Client
}

func newOpenAICompatProvider(profile vendorProfile, apiKey, baseURL string, maxTokens int, httpClient *http.Client) (Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errAuth(profile.name, "%s api key is required (set %s)", profile.name, profile.apiKeyEnv)
	}
	endpoint := baseURL
	if endpoint == "" {
		endpoint = profile.defaultURL
	}
	if strings.TrimSpace(endpoint) == "" {
		return nil, fmt.Errorf("%s endpoint is required", profile.name)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &openAICompatProvider{
		profile:    profile,
		apiKey:     apiKey,
		endpoint:   endpoint,
		maxTokens:  maxTokens,
		httpClient: httpClient,
	}, nil
}

func (p *openAICompatProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	payload := oaiRequest{
		Model:       req.Model,
		Messages:    toOAIMessages(req.Messages),
		MaxTokens:   resolveMaxTokens(req.MaxTokens, p.maxTokens),
		Temperature: p.normalizeTemperature(req.Temperature),
	}
	if req.SystemPrompt != "" {
		payload.Messages = append([]oaiMessage{{
			Role:    "system",
			Content: req.SystemPrompt,
		}}, payload.Messages...)
	}
	if len(req.Tools) > 0 {
		payload.Tools = make([]oaiTool, 0, len(req.Tools))
		for _, tool := range req.Tools {
			payload.Tools = append(payload.Tools, oaiTool{
				Type: "function",
				Function: oaiFunction{
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.Parameters,
				},
			})
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", p.profile.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", p.profile.name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Code: CodeUnavailable, Provider: p.profile.name, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Code: CodeUnavailable, Provider: p.profile.name, Err: err}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, classifyHTTPStatus(p.profile.name, httpResp.StatusCode, strings.TrimSpace(string(respBody)), httpResp.Header)
	}

	var parsed oaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errMalformed(p.profile.name, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, &Error{Code: CodeMalformedResponse, Provider: p.profile.name, Message: "response has no choices"}
	}

	msg := parsed.Choices[0].Message
	toolCalls := make([]ToolCall, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		toolCalls = append(toolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return &ChatResponse{
		Content:   msg.Content,
		ToolCalls: toolCalls,
		Usage: TokenUsage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		},
	}, nil
}

// normalizeTemperature rewrites the requested temperature to what the
// vendor will actually accept. Kimi rejects anything but its fixed value,
// so the adapter pins it rather than surfacing a request error.
func (p *openAICompatProvider) normalizeTemperature(t float64) float64 {
	if p.profile.fixedTemperature != nil {
		return *p.profile.fixedTemperature
	}
	max := p.profile.maxTemperature
	if max <= 0 {
		max = 2.0
	}
	return clampTemperature(t, max)
}

type oaiRequest struct {
	Model       string       `json:"model"`
	Messages    []oaiMessage `json:"messages"`
	Tools       []oaiTool    `json:"tools,omitempty"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature"`
}

type oaiMessage struct {
	Role       string        `json:"role"`
	Content    string        `json:"content,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
	ToolCalls  []oaiToolCall `json:"tool_calls,omitempty"`
}

type oaiTool struct {
	Type     string      `json:"type"`
	Function oaiFunction `json:"function"`
}

type oaiFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Arguments   string         `json:"arguments,omitempty"`
}

type oaiToolCall struct {
	ID       string      `json:"id,omitempty"`
	Type     string      `json:"type,omitempty"`
	Function oaiFunction `json:"function"`
}

type oaiResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func toOAIMessages(messages []ChatMessage) []oaiMessage {
	out := make([]oaiMessage, 0, len(messages))
	for _, msg := range messages {
		m := oaiMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		if msg.Role == RoleTool {
			m.ToolCallID = msg.ToolCallID
		}
		if len(msg.ToolCalls) > 0 {
			m.ToolCalls = make([]oaiToolCall, 0, len(msg.ToolCalls))
			for _, tc := range msg.ToolCalls {
				m.ToolCalls = append(m.ToolCalls, oaiToolCall{
					ID:   tc.ID,
					Type: "function",
					Function: oaiFunction{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
		}
		out = append(out, m)
	}
	return out
}
