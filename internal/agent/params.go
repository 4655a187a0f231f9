package agent

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/shennong-ai/shennong/internal/provider"
	"github.com/shennong-ai/shennong/internal/tools"
)

// resolveCallRefs substitutes "$stepN.output.<path>" argument values
// with data from the Nth prior observation. Unresolvable references are
// left as-is so the tool's schema check reports them.
func resolveCallRefs(calls []provider.ToolCall, observations []tools.Observation) []provider.ToolCall {
	out := make([]provider.ToolCall, len(calls))
	for i, call := range calls {
		out[i] = call
		out[i].Arguments = resolveStepRefs(call.Arguments, observations)
	}
	return out
}

func resolveStepRefs(arguments string, observations []tools.Observation) string {
	if arguments == "" || !gjson.Valid(arguments) {
		return arguments
	}
	resolved := arguments
	gjson.Parse(arguments).ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.String {
			return true
		}
		ref := value.String()
		if !strings.HasPrefix(ref, "$step") {
			return true
		}
		replacement, ok := lookupStepRef(ref, observations)
		if !ok {
			return true
		}
		if updated, err := sjson.Set(resolved, key.String(), replacement); err == nil {
			resolved = updated
		}
		return true
	})
	return resolved
}

// lookupStepRef resolves "$stepN" or "$stepN.output.<path>" against the
// observation list. Step numbers are 1-based in request order; failed
// observations never resolve.
func lookupStepRef(ref string, observations []tools.Observation) (any, bool) {
	rest := strings.TrimPrefix(ref, "$step")
	head, path, _ := strings.Cut(rest, ".")
	n, err := strconv.Atoi(head)
	if err != nil || n < 1 || n > len(observations) {
		return nil, false
	}
	obs := observations[n-1]
	if !obs.OK {
		return nil, false
	}
	if path == "" {
		return gjson.ParseBytes(obs.Payload).Value(), true
	}
	path = strings.TrimPrefix(path, "output.")
	result := gjson.GetBytes(obs.Payload, path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}
