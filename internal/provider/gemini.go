package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// geminiProvider talks to the Generative Language API directly. The API
// keys the credential in a query parameter rather than a header, and its
// function-calling wire format names calls without ids, so the adapter
// mints ids and maps tool results back by function name.
type geminiProvider struct {
	apiKey     string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
}

func newGeminiProvider(apiKey, baseURL string, maxTokens int, httpClient *http.Client) (Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errAuth("google", "google api key is required (set %s)", vendorProfiles["google"].apiKeyEnv)
	}
	if baseURL == "" {
		baseURL = vendorProfiles["google"].defaultURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &geminiProvider{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxTokens:  maxTokens,
		httpClient: httpClient,
	}, nil
}

func (p *geminiProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	contents, err := toGeminiContents(req.Messages)
	if err != nil {
		return nil, errMalformed("google", err)
	}

	payload := geminiRequest{
		Contents: contents,
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     clampTemperature(req.Temperature, vendorProfiles["google"].maxTemperature),
			MaxOutputTokens: resolveMaxTokens(req.MaxTokens, p.maxTokens),
		},
	}
	if req.SystemPrompt != "" {
		payload.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: req.SystemPrompt}},
		}
	}
	if len(req.Tools) > 0 {
		decls := make([]geminiFunctionDeclaration, 0, len(req.Tools))
		for _, tool := range req.Tools {
			decls = append(decls, geminiFunctionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			})
		}
		payload.Tools = []geminiTool{{FunctionDeclarations: decls}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal google request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, req.Model, p.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build google request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Code: CodeUnavailable, Provider: "google", Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Code: CodeUnavailable, Provider: "google", Err: err}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, classifyHTTPStatus("google", httpResp.StatusCode, strings.TrimSpace(string(respBody)), httpResp.Header)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, errMalformed("google", err)
	}
	if len(parsed.Candidates) == 0 {
		return nil, &Error{Code: CodeMalformedResponse, Provider: "google", Message: "response has no candidates"}
	}

	var contentParts []string
	var calls []ToolCall
	for _, part := range parsed.Candidates[0].Content.Parts {
		if part.Text != "" {
			contentParts = append(contentParts, part.Text)
		}
		if part.FunctionCall != nil {
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return nil, errMalformed("google", err)
			}
			// The API returns calls without ids; mint one so the tool layer
			// can correlate results the same way as for every other vendor.
			calls = append(calls, ToolCall{
				ID:        "call_" + uuid.NewString(),
				Name:      part.FunctionCall.Name,
				Arguments: string(args),
			})
		}
	}

	return &ChatResponse{
		Content:   strings.Join(contentParts, "\n"),
		ToolCalls: calls,
		Usage: TokenUsage{
			InputTokens:  parsed.UsageMetadata.PromptTokenCount,
			OutputTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  parsed.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiFunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiFunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// toGeminiContents maps the canonical transcript onto the API's user/model
// role pair. Tool results travel as functionResponse parts keyed by name,
// so the assistant turn's call names are tracked to resolve each result's
// originating function.
func toGeminiContents(messages []ChatMessage) ([]geminiContent, error) {
	out := make([]geminiContent, 0, len(messages))
	callNames := make(map[string]string)
	for i := 0; i < len(messages); {
		msg := messages[i]
		switch msg.Role {
		case RoleUser:
			out = append(out, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: msg.Content}},
			})
			i++
		case RoleAssistant:
			var parts []geminiPart
			if msg.Content != "" {
				parts = append(parts, geminiPart{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				args := map[string]any{}
				if tc.Arguments != "" {
					if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
						return nil, fmt.Errorf("parse assistant tool call args for %s: %w", tc.Name, err)
					}
				}
				callNames[tc.ID] = tc.Name
				parts = append(parts, geminiPart{FunctionCall: &geminiFunctionCall{
					Name: tc.Name,
					Args: args,
				}})
			}
			if len(parts) == 0 {
				parts = append(parts, geminiPart{Text: ""})
			}
			out = append(out, geminiContent{Role: "model", Parts: parts})
			i++
		case RoleTool:
			var parts []geminiPart
			for i < len(messages) && messages[i].Role == RoleTool {
				name, ok := callNames[messages[i].ToolCallID]
				if !ok {
					return nil, fmt.Errorf("tool result %s has no matching call", messages[i].ToolCallID)
				}
				var response map[string]any
				if err := json.Unmarshal([]byte(messages[i].Content), &response); err != nil {
					response = map[string]any{"output": messages[i].Content}
				}
				parts = append(parts, geminiPart{FunctionResponse: &geminiFunctionResponse{
					Name:     name,
					Response: response,
				}})
				i++
			}
			out = append(out, geminiContent{Role: "user", Parts: parts})
		default:
			return nil, fmt.Errorf("unsupported message role %s", msg.Role)
		}
	}
	return out, nil
}
