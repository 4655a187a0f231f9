package agent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shennong-ai/shennong/internal/tools"
)

// ValidationResult gates the transition from Validating to
// Synthesizing. An empty Flags slice is a pass.
type ValidationResult struct {
	Flags []string
}

func (v ValidationResult) Pass() bool { return len(v.Flags) == 0 }

var citationPattern = regexp.MustCompile(`\(tool:\s*([A-Za-z0-9_.-]+)\)`)

// Validate runs structural checks on a draft answer: every cited tool
// must have an observation in the session, and an explicit
// contraindication reported by a tool must be acknowledged rather than
// silently dropped. Observations are never modified.
func Validate(draft string, observations []tools.Observation) ValidationResult {
	var flags []string

	observed := make(map[string]bool, len(observations))
	for _, obs := range observations {
		observed[obs.Tool] = true
	}
	seen := map[string]bool{}
	for _, match := range citationPattern.FindAllStringSubmatch(draft, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		if !observed[name] {
			flags = append(flags, fmt.Sprintf("cited tool %q has no observation in this session", name))
		}
	}

	for _, obs := range observations {
		if !obs.OK {
			continue
		}
		if !payloadFlagsContraindication(obs.Payload) {
			continue
		}
		if !mentionsContraindication(draft) {
			flags = append(flags, fmt.Sprintf("tool %q reported a contraindication the draft does not acknowledge", obs.Tool))
		}
	}

	return ValidationResult{Flags: flags}
}

func payloadFlagsContraindication(payload []byte) bool {
	if gjson.GetBytes(payload, "status").String() == "contraindicated" {
		return true
	}
	for _, severity := range gjson.GetBytes(payload, "warnings.#.severity").Array() {
		if severity.String() == "contraindicated" {
			return true
		}
	}
	return false
}

func mentionsContraindication(draft string) bool {
	lower := strings.ToLower(draft)
	for _, marker := range []string{"contraindicat", "incompatib", "禁忌", "相反", "不可同用"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
