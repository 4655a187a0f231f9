package tools

import "testing"

func TestCompoundsSearchByName(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "compounds.search", map[string]any{"query": "berberine"})
	if payload["status"] != "found" {
		t.Fatalf("status: %v", payload["status"])
	}
	compound := payload["compound"].(compoundRecord)
	if compound.Name != "Berberine" {
		t.Fatalf("compound: %v", compound.Name)
	}
	if compound.MolecularFormula != "C20H18NO4+" {
		t.Fatalf("formula: %v", compound.MolecularFormula)
	}
}

func TestCompoundsSearchByHerbSource(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "compounds.search", map[string]any{"query": "黄芪"})
	if payload["status"] != "found" {
		t.Fatalf("status: %v", payload["status"])
	}
	if payload["compound"].(compoundRecord).Name != "Astragaloside IV" {
		t.Fatalf("compound: %v", payload["compound"])
	}
}

func TestCompoundsSearchNotFound(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "compounds.search", map[string]any{"query": "unobtainium"})
	if payload["status"] != "not_found" {
		t.Fatalf("status: %v", payload["status"])
	}
}

func TestCompoundsTargets(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "compounds.targets", map[string]any{"compound_name": "ginsenoside rg1"})
	if payload["status"] != "found" {
		t.Fatalf("status: %v", payload["status"])
	}
	targets := payload["targets"].([]string)
	if len(targets) != 4 || targets[0] != "ESR1" {
		t.Fatalf("targets: %v", targets)
	}
}

func TestCompoundsAdmetScreensKnownCompound(t *testing.T) {
	reg := builtinRegistry(t)
	payload := execTool(t, reg, "compounds.admet", map[string]any{"compound_name": "berberine"})
	if payload["status"] != "info" {
		t.Fatalf("status: %v", payload["status"])
	}
	props := payload["known_properties"].(map[string]any)
	// Berberine clears both TCMSP screening thresholds.
	if props["passes_ob"] != true || props["passes_dl"] != true {
		t.Fatalf("screening: %v", props)
	}

	payload = execTool(t, reg, "compounds.admet", map[string]any{"compound_name": "unknownium"})
	if _, ok := payload["known_properties"]; ok {
		t.Fatal("unknown compound should not report properties")
	}
	if _, ok := payload["general_criteria"]; !ok {
		t.Fatal("general criteria missing")
	}
}
