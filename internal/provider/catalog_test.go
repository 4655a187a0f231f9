package provider

import (
	"errors"
	"testing"
)

func TestCatalogResolvesAlias(t *testing.T) {
	c := NewCatalog()

	info, err := c.Resolve("sonnet")
	if err != nil {
		t.Fatalf("resolve alias: %v", err)
	}
	if info.ID != "claude-sonnet-4-5-20250929" {
		t.Fatalf("unexpected id: %s", info.ID)
	}
	if info.Provider != "anthropic" {
		t.Fatalf("unexpected provider: %s", info.Provider)
	}
}

func TestCatalogResolutionIsIdempotent(t *testing.T) {
	c := NewCatalog()

	first, err := c.Resolve("r1")
	if err != nil {
		t.Fatalf("resolve alias: %v", err)
	}
	second, err := c.Resolve(first.ID)
	if err != nil {
		t.Fatalf("resolve id: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("resolution not stable: %s vs %s", first.ID, second.ID)
	}
}

func TestCatalogAliasIsCaseInsensitive(t *testing.T) {
	c := NewCatalog()

	info, err := c.Resolve("Haiku")
	if err != nil {
		t.Fatalf("resolve alias: %v", err)
	}
	if info.ID != "claude-haiku-4-5-20251001" {
		t.Fatalf("unexpected id: %s", info.ID)
	}
}

func TestCatalogPrefixFallback(t *testing.T) {
	c := NewCatalog()

	tests := []struct {
		model    string
		provider string
	}{
		{"claude-next-99", "anthropic"},
		{"gpt-99-turbo", "openai"},
		{"deepseek-v99", "deepseek"},
		{"gemini-99-ultra", "google"},
		{"qwen99-hyper", "qwen"},
	}
	for _, tc := range tests {
		info, err := c.Resolve(tc.model)
		if err != nil {
			t.Fatalf("resolve %s: %v", tc.model, err)
		}
		if info.Provider != tc.provider {
			t.Fatalf("%s routed to %s, want %s", tc.model, info.Provider, tc.provider)
		}
		if info.ID != tc.model {
			t.Fatalf("prefix fallback rewrote id to %s", info.ID)
		}
	}
}

func TestCatalogUnknownModel(t *testing.T) {
	c := NewCatalog()

	_, err := c.Resolve("definitely-not-a-model")
	if err == nil {
		t.Fatal("expected error")
	}
	pe, ok := AsError(err)
	if !ok {
		t.Fatalf("expected classified error, got %T", err)
	}
	if pe.Code != CodeUnknownModel {
		t.Fatalf("unexpected code: %s", pe.Code)
	}
}

func TestCatalogModelsFilterAndOrder(t *testing.T) {
	c := NewCatalog()

	google := c.Models("google")
	if len(google) == 0 {
		t.Fatal("expected google models")
	}
	for i, m := range google {
		if m.Provider != "google" {
			t.Fatalf("filter leaked %s", m.ID)
		}
		if i > 0 && google[i-1].ID >= m.ID {
			t.Fatalf("models out of order: %s before %s", google[i-1].ID, m.ID)
		}
	}
}

func TestCatalogPricing(t *testing.T) {
	c := NewCatalog()

	in, out, ok := c.Pricing("gpt-4o")
	if !ok {
		t.Fatal("expected pricing for gpt-4o")
	}
	if in != 2.50 || out != 10.00 {
		t.Fatalf("unexpected pricing: %v / %v", in, out)
	}

	if _, _, ok := c.Pricing("kimi-k2.5"); ok {
		t.Fatal("expected no pricing for kimi-k2.5")
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(&Error{Code: CodeRateLimited}) {
		t.Fatal("rate limited should be transient")
	}
	if !IsTransient(&Error{Code: CodeUnavailable}) {
		t.Fatal("unavailable should be transient")
	}
	if IsTransient(&Error{Code: CodeAuth}) {
		t.Fatal("auth should not be transient")
	}
	if IsTransient(&Error{Code: CodeMalformedResponse}) {
		t.Fatal("malformed should not be transient")
	}
	if !IsTransient(errors.New("plain transport error")) {
		t.Fatal("unclassified errors should be transient")
	}
}
