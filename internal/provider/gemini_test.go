package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGeminiChat(t *testing.T) {
	var capturedPath string
	var captured geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path + "?" + r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "answer"}]}}],
			"usageMetadata": {"promptTokenCount": 20, "candidatesTokenCount": 8, "totalTokenCount": 28}
		}`))
	}))
	defer server.Close()

	p, err := newGeminiProvider("g-key", server.URL, 0, server.Client())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:        "gemini-2.5-flash",
		SystemPrompt: "be brief",
		Messages:     []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	if !strings.Contains(capturedPath, "/models/gemini-2.5-flash:generateContent") {
		t.Fatalf("unexpected path: %s", capturedPath)
	}
	if !strings.Contains(capturedPath, "key=g-key") {
		t.Fatalf("api key not in query: %s", capturedPath)
	}
	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "be brief" {
		t.Fatalf("system instruction missing: %+v", captured.SystemInstruction)
	}
	if resp.Content != "answer" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 28 {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
}

func TestGeminiMintsToolCallIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Tools) != 1 || req.Tools[0].FunctionDeclarations[0].Name != "lookup_herb" {
			t.Errorf("function declaration missing: %+v", req.Tools)
		}
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [
				{"functionCall": {"name": "lookup_herb", "args": {"name": "ren shen"}}}
			]}}],
			"usageMetadata": {"promptTokenCount": 15, "candidatesTokenCount": 4, "totalTokenCount": 19}
		}`))
	}))
	defer server.Close()

	p, err := newGeminiProvider("g-key", server.URL, 0, server.Client())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	resp, err := p.Chat(context.Background(), ChatRequest{
		Model:    "gemini-2.5-flash",
		Messages: []ChatMessage{{Role: RoleUser, Content: "look up ren shen"}},
		Tools:    []ToolDefinition{{Name: "lookup_herb"}},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(resp.ToolCalls))
	}
	call := resp.ToolCalls[0]
	if !strings.HasPrefix(call.ID, "call_") || len(call.ID) <= len("call_") {
		t.Fatalf("expected minted call id, got %q", call.ID)
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
		t.Fatalf("arguments not json: %v", err)
	}
	if args["name"] != "ren shen" {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestGeminiToolResultsMapToFunctionResponses(t *testing.T) {
	contents, err := toGeminiContents([]ChatMessage{
		{Role: RoleUser, Content: "look it up"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_a", Name: "lookup_herb", Arguments: `{"name":"ren shen"}`}}},
		{Role: RoleTool, ToolCallID: "call_a", Content: `{"found":true}`},
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	fr := contents[2].Parts[0].FunctionResponse
	if fr == nil || fr.Name != "lookup_herb" {
		t.Fatalf("function response not mapped: %+v", contents[2])
	}
	if fr.Response["found"] != true {
		t.Fatalf("unexpected response payload: %v", fr.Response)
	}
}

func TestGeminiToolResultWithoutCallFails(t *testing.T) {
	_, err := toGeminiContents([]ChatMessage{
		{Role: RoleTool, ToolCallID: "call_missing", Content: "{}"},
	})
	if err == nil {
		t.Fatal("expected error for orphan tool result")
	}
}

func TestGeminiClassifiesRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	p, err := newGeminiProvider("g-key", server.URL, 0, server.Client())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	_, err = p.Chat(context.Background(), ChatRequest{
		Model:    "gemini-2.5-flash",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	pe, ok := AsError(err)
	if !ok || pe.Code != CodeRateLimited {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if pe.RetryAfter.Seconds() != 3 {
		t.Fatalf("retry-after not parsed: %v", pe.RetryAfter)
	}
}
