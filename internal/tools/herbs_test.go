package tools

import "testing"

func TestHerbLookupAcrossNamingSystems(t *testing.T) {
	reg := builtinRegistry(t)

	for _, query := range []string{"人参", "rén shēn", "ginseng", "Radix et Rhizoma Ginseng"} {
		payload := execTool(t, reg, "herbs.lookup", map[string]any{"query": query})
		if payload["status"] != "found" {
			t.Fatalf("lookup %q: %v", query, payload["status"])
		}
		herb := payload["herb"].(map[string]any)
		if herb["chinese_name"] != "人参" {
			t.Fatalf("lookup %q resolved to %v", query, herb["chinese_name"])
		}
	}

	miss := execTool(t, reg, "herbs.lookup", map[string]any{"query": "nonexistent"})
	if miss["status"] != "not_found" {
		t.Fatalf("expected not_found, got %v", miss["status"])
	}
}

func TestHerbProperties(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "herbs.properties", map[string]any{"herb_name": "黄连"})
	if payload["status"] != "found" {
		t.Fatalf("status: %v", payload["status"])
	}
	if payload["nature"] != "寒 (Cold)" {
		t.Fatalf("nature: %v", payload["nature"])
	}
}

func TestHerbsByCategory(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "herbs.by_category", map[string]any{"category": "补气药"})
	if payload["status"] != "found" {
		t.Fatalf("status: %v", payload["status"])
	}
	// 人参, 黄芪, 甘草, 白术 are the qi tonics in the offline set.
	if payload["count"].(int) != 4 {
		t.Fatalf("count: %v", payload["count"])
	}
}

func TestHerbsByMeridian(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "herbs.by_meridian", map[string]any{"meridian": "Kidney"})
	if payload["status"] != "found" {
		t.Fatalf("status: %v", payload["status"])
	}
	if payload["count"].(int) < 2 {
		t.Fatalf("count: %v", payload["count"])
	}
}

func TestPregnancyCheck(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "safety.pregnancy_check", map[string]any{
		"herbs": "附子, 丹参, 人参",
	})
	if payload["status"] != "contraindicated" {
		t.Fatalf("status: %v", payload["status"])
	}
	if got := payload["contraindicated"].([]string); len(got) != 1 || got[0] != "附子" {
		t.Fatalf("contraindicated: %v", got)
	}
	if got := payload["caution"].([]string); len(got) != 1 || got[0] != "丹参" {
		t.Fatalf("caution: %v", got)
	}
	if got := payload["safe"].([]string); len(got) != 1 || got[0] != "人参" {
		t.Fatalf("safe: %v", got)
	}
}

func TestToxicityCheck(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "safety.toxicity_check", map[string]any{"herb_name": "马钱子"})
	if payload["status"] != "toxic" {
		t.Fatalf("status: %v", payload["status"])
	}
	benign := execTool(t, reg, "safety.toxicity_check", map[string]any{"herb_name": "茯苓"})
	if benign["status"] != "not_toxic" {
		t.Fatalf("status: %v", benign["status"])
	}
}

func TestFormulaSearch(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "formulas.search", map[string]any{"query": "Four Gentlemen Decoction"})
	if payload["status"] != "found" {
		t.Fatalf("status: %v", payload["status"])
	}
	formula := payload["formula"].(map[string]any)
	if formula["chinese_name"] != "四君子汤" {
		t.Fatalf("resolved to %v", formula["chinese_name"])
	}
}

func TestSyndromeIdentifyRanksByScore(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "syndromes.identify", map[string]any{
		"symptoms": "便溏, 神疲乏力, 腹胀",
	})
	if payload["status"] != "found" {
		t.Fatalf("status: %v", payload["status"])
	}
	matches := payload["matches"].([]map[string]any)
	if matches[0]["syndrome"] != "脾气虚" {
		t.Fatalf("top match: %v", matches[0]["syndrome"])
	}
}

func TestMeridiansByElement(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "meridians.by_element", map[string]any{"element": "Fire"})
	if payload["status"] != "found" {
		t.Fatalf("status: %v", payload["status"])
	}
	if got := len(payload["meridians"].([]map[string]any)); got != 4 {
		t.Fatalf("fire meridians: %d", got)
	}
}
