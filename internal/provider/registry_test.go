package provider

import (
	"context"
	"testing"
	"time"

	"github.com/shennong-ai/shennong/internal/costs"
)

// scriptedProvider returns pre-programmed results in order, then repeats
// the last one.
type scriptedProvider struct {
	results []scriptedResult
	calls   int
}

type scriptedResult struct {
	resp *ChatResponse
	err  error
}

func (s *scriptedProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	idx := s.calls
	if idx >= len(s.results) {
		idx = len(s.results) - 1
	}
	s.calls++
	r := s.results[idx]
	return r.resp, r.err
}

func testRegistry(t *testing.T, stub Provider, retry RetryPolicy) (*Registry, *costs.Ledger, *[]time.Duration) {
	t.Helper()
	ledger := costs.NewLedger("")
	r := NewRegistry(RegistryOptions{
		Providers: map[string]ProviderConfig{"openai": {APIKey: "test"}},
		Retry:     retry,
		Ledger:    ledger,
	})
	r.adapters["openai"] = stub

	var delays []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return r, ledger, &delays
}

func TestCompleteRetriesTransientThenSucceeds(t *testing.T) {
	stub := &scriptedProvider{results: []scriptedResult{
		{err: &Error{Code: CodeRateLimited, Provider: "openai"}},
		{err: &Error{Code: CodeRateLimited, Provider: "openai"}},
		{resp: &ChatResponse{Content: "done", Usage: TokenUsage{InputTokens: 10, OutputTokens: 4, TotalTokens: 14}}},
	}}
	r, ledger, delays := testRegistry(t, stub, RetryPolicy{Attempts: 3, BaseDelay: 2 * time.Second})

	resp, err := r.Complete(context.Background(), ChatRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Content != "done" {
		t.Fatalf("unexpected content: %q", resp.Content)
	}
	if stub.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", stub.calls)
	}

	records := ledger.Records()
	if len(records) != 3 {
		t.Fatalf("expected 3 ledger records, got %d", len(records))
	}
	for i := 0; i < 2; i++ {
		if records[i].Status != string(CodeRateLimited) {
			t.Fatalf("record %d status %s, want %s", i, records[i].Status, CodeRateLimited)
		}
		if records[i].TotalTokens != 0 {
			t.Fatalf("failed attempt recorded tokens: %+v", records[i])
		}
	}
	last := records[2]
	if last.Status != costs.StatusOK || last.TotalTokens != 14 {
		t.Fatalf("unexpected final record: %+v", last)
	}
	if last.CostUSD == 0 {
		t.Fatal("expected non-zero estimated cost for gpt-4o")
	}

	if len(*delays) != 2 {
		t.Fatalf("expected 2 sleeps, got %d", len(*delays))
	}
	if (*delays)[0] != 2*time.Second || (*delays)[1] != 4*time.Second {
		t.Fatalf("backoff not exponential: %v", *delays)
	}
}

func TestCompleteHonorsRetryAfterHint(t *testing.T) {
	stub := &scriptedProvider{results: []scriptedResult{
		{err: &Error{Code: CodeRateLimited, Provider: "openai", RetryAfter: 9 * time.Second}},
		{resp: &ChatResponse{Content: "ok"}},
	}}
	r, _, delays := testRegistry(t, stub, RetryPolicy{Attempts: 3, BaseDelay: time.Second})

	if _, err := r.Complete(context.Background(), ChatRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(*delays) != 1 || (*delays)[0] != 9*time.Second {
		t.Fatalf("retry-after hint ignored: %v", *delays)
	}
}

func TestCompleteDoesNotRetryAuthErrors(t *testing.T) {
	stub := &scriptedProvider{results: []scriptedResult{
		{err: &Error{Code: CodeAuth, Provider: "openai", Message: "bad key"}},
	}}
	r, ledger, _ := testRegistry(t, stub, RetryPolicy{Attempts: 3, BaseDelay: time.Second})

	_, err := r.Complete(context.Background(), ChatRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	pe, ok := AsError(err)
	if !ok || pe.Code != CodeAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("auth error retried: %d attempts", stub.calls)
	}
	if len(ledger.Records()) != 1 {
		t.Fatalf("expected 1 ledger record, got %d", len(ledger.Records()))
	}
}

func TestCompleteExhaustsRetryBudget(t *testing.T) {
	stub := &scriptedProvider{results: []scriptedResult{
		{err: &Error{Code: CodeUnavailable, Provider: "openai"}},
	}}
	r, ledger, _ := testRegistry(t, stub, RetryPolicy{Attempts: 3, BaseDelay: time.Second})

	_, err := r.Complete(context.Background(), ChatRequest{
		Model:    "gpt-4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	pe, ok := AsError(err)
	if !ok || pe.Code != CodeUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if stub.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", stub.calls)
	}
	if len(ledger.Records()) != 3 {
		t.Fatalf("expected 3 ledger records, got %d", len(ledger.Records()))
	}
}

func TestCompleteUnknownModelLeavesLedgerEmpty(t *testing.T) {
	stub := &scriptedProvider{results: []scriptedResult{{resp: &ChatResponse{Content: "never"}}}}
	r, ledger, _ := testRegistry(t, stub, RetryPolicy{})

	_, err := r.Complete(context.Background(), ChatRequest{
		Model:    "no-such-model",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	pe, ok := AsError(err)
	if !ok || pe.Code != CodeUnknownModel {
		t.Fatalf("expected unknown model, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatal("adapter reached for unknown model")
	}
	if len(ledger.Records()) != 0 {
		t.Fatalf("ledger should stay empty, has %d records", len(ledger.Records()))
	}
}

func TestCompleteResolvesAliasBeforeDispatch(t *testing.T) {
	var seenModel string
	stub := &scriptedProvider{results: []scriptedResult{{resp: &ChatResponse{Content: "ok"}}}}
	r, _, _ := testRegistry(t, stub, RetryPolicy{})
	r.adapters["openai"] = providerFunc(func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		seenModel = req.Model
		return stub.Chat(ctx, req)
	})

	if _, err := r.Complete(context.Background(), ChatRequest{
		Model:    "4o",
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if seenModel != "gpt-4o" {
		t.Fatalf("alias not resolved before dispatch: %s", seenModel)
	}
}

type providerFunc func(ctx context.Context, req ChatRequest) (*ChatResponse, error)

func (f providerFunc) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	return f(ctx, req)
}
