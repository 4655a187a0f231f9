package agent

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shennong-ai/shennong/internal/tools"
)

func obsWithPayload(tool, payload string) tools.Observation {
	return tools.Observation{Tool: tool, OK: true, Payload: json.RawMessage(payload)}
}

func TestValidateFabricatedCitation(t *testing.T) {
	draft := "人参 restores qi (tool: herbs.lookup) and calms shen (tool: syndromes.identify)."
	verdict := Validate(draft, []tools.Observation{
		obsWithPayload("herbs.lookup", `{"status": "found"}`),
	})
	if verdict.Pass() {
		t.Fatal("expected flag for uncited tool")
	}
	if len(verdict.Flags) != 1 || !strings.Contains(verdict.Flags[0], "syndromes.identify") {
		t.Fatalf("flags: %v", verdict.Flags)
	}
}

func TestValidateDroppedContraindication(t *testing.T) {
	obs := obsWithPayload("interactions.check_herbs",
		`{"status": "warnings", "warnings": [{"severity": "contraindicated", "herbs": ["人参", "藜芦"]}]}`)

	silent := Validate("These herbs work well together (tool: interactions.check_herbs).", []tools.Observation{obs})
	if silent.Pass() {
		t.Fatal("dropped contraindication not flagged")
	}

	honest := Validate("人参 and 藜芦 are contraindicated together (tool: interactions.check_herbs).", []tools.Observation{obs})
	if !honest.Pass() {
		t.Fatalf("acknowledged contraindication flagged: %v", honest.Flags)
	}

	chinese := Validate("人参与藜芦属十八反，禁忌同用 (tool: interactions.check_herbs)。", []tools.Observation{obs})
	if !chinese.Pass() {
		t.Fatalf("chinese acknowledgement flagged: %v", chinese.Flags)
	}
}

func TestValidateIgnoresFailedObservations(t *testing.T) {
	failed := tools.Observation{Tool: "interactions.check_herbs", OK: false, Code: tools.CodeTimedOut}
	verdict := Validate("No interaction data was available.", []tools.Observation{failed})
	if !verdict.Pass() {
		t.Fatalf("failed observation should not gate the draft: %v", verdict.Flags)
	}
}

func TestValidatePassWithoutCitations(t *testing.T) {
	verdict := Validate("I could not gather tool evidence for this question.", nil)
	if !verdict.Pass() {
		t.Fatalf("flags: %v", verdict.Flags)
	}
}
