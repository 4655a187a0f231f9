package tools

import (
	"context"
	"testing"
)

func execTool(t *testing.T, reg *Registry, name string, args map[string]any) map[string]any {
	t.Helper()
	tool, _, ok := reg.Lookup(name)
	if !ok {
		t.Fatalf("tool %s not registered", name)
	}
	result, err := tool.Execute(context.Background(), args)
	if err != nil {
		t.Fatalf("%s: %v", name, err)
	}
	payload, ok := result.(map[string]any)
	if !ok {
		t.Fatalf("%s returned %T", name, result)
	}
	return payload
}

func builtinRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := BuildRegistry(RegistryOptions{})
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return reg
}

func TestCheckHerbsFlagsGinsengVeratrum(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "interactions.check_herbs", map[string]any{
		"herbs": "人参, 藜芦",
	})
	if payload["status"] != "warnings" {
		t.Fatalf("expected warnings, got %v", payload["status"])
	}
	warnings := payload["warnings"].([]map[string]any)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	w := warnings[0]
	if w["severity"] != "contraindicated" {
		t.Fatalf("severity: %v", w["severity"])
	}
	if w["type"] != "十八反 (18 Incompatibilities)" {
		t.Fatalf("type: %v", w["type"])
	}
}

func TestCheckHerbsFlagsMutualFear(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "interactions.check_herbs", map[string]any{
		"herbs": "人参, 五灵脂",
	})
	if payload["status"] != "warnings" {
		t.Fatalf("expected warnings, got %v", payload["status"])
	}
	warnings := payload["warnings"].([]map[string]any)
	if warnings[0]["severity"] != "caution" {
		t.Fatalf("severity: %v", warnings[0]["severity"])
	}
}

func TestCheckHerbsSafeCombination(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "interactions.check_herbs", map[string]any{
		"herbs": "人参, 白术, 茯苓, 甘草",
	})
	if payload["status"] != "safe" {
		t.Fatalf("expected safe, got %v", payload["status"])
	}
}

func TestHerbDrugInteraction(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "interactions.herb_drug", map[string]any{
		"herb": "当归", "drug": "warfarin",
	})
	if payload["status"] != "found" {
		t.Fatalf("expected found, got %v", payload["status"])
	}
	matches := payload["interactions"].([]herbDrugInteraction)
	if matches[0].Severity != "major" {
		t.Fatalf("severity: %s", matches[0].Severity)
	}

	miss := execTool(t, reg, "interactions.herb_drug", map[string]any{
		"herb": "茯苓", "drug": "aspirin",
	})
	if miss["status"] != "not_found" {
		t.Fatalf("expected not_found, got %v", miss["status"])
	}
}

func TestFormulaSafetyWrapsHerbCheck(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "interactions.formula_safety", map[string]any{
		"herbs": "甘草, 甘遂",
	})
	if payload["status"] != "complete" {
		t.Fatalf("status: %v", payload["status"])
	}
	inner := payload["herb_interactions"].(map[string]any)
	if inner["status"] != "warnings" {
		t.Fatalf("inner status: %v", inner["status"])
	}
}
