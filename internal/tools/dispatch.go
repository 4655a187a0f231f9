package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shennong-ai/shennong/internal/logging"
	"github.com/shennong-ai/shennong/internal/provider"
)

// Failure codes for dispatched tool calls.
const (
	CodeUnknownTool        = "unknown_tool"
	CodeToolUnavailable    = "tool_unavailable"
	CodeSchemaViolation    = "schema_violation"
	CodeTimedOut           = "timed_out"
	CodeToolExecutionError = "tool_execution_error"
)

// Observation is the canonical result of one tool invocation, success or
// failure. The loop appends these to the transcript and never aborts on a
// failed one.
type Observation struct {
	Tool     string          `json:"tool"`
	CallID   string          `json:"call_id"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	OK       bool            `json:"ok"`
	Code     string          `json:"code,omitempty"`
	Err      string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration_ns"`
}

// Content renders the observation as the tool-result message fed back to
// the model.
func (o Observation) Content() string {
	if o.OK {
		return string(o.Payload)
	}
	return fmt.Sprintf(`{"error":%q,"code":%q}`, o.Err, o.Code)
}

const defaultToolTimeout = 30 * time.Second

// Dispatcher validates and executes tool calls against the registry,
// converting every failure mode into a structured Observation.
type Dispatcher struct {
	registry    *Registry
	health      *HealthMonitor
	timeout     time.Duration
	maxParallel int
}

// NewDispatcher builds a dispatcher. maxParallel caps concurrent
// executions in DispatchAll; values below 1 mean sequential.
func NewDispatcher(registry *Registry, health *HealthMonitor, timeout time.Duration, maxParallel int) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	if maxParallel < 1 {
		maxParallel = 1
	}
	return &Dispatcher{
		registry:    registry,
		health:      health,
		timeout:     timeout,
		maxParallel: maxParallel,
	}
}

// Definitions returns the tool definitions currently offered to the
// model: ready tools minus any the health monitor has suppressed.
func (d *Dispatcher) Definitions() []provider.ToolDefinition {
	return d.registry.ReadyDefinitions(d.health.SuppressedSet())
}

// Dispatch runs one tool call to completion. It never panics outward and
// never returns an error: every failure is a failed Observation so the
// loop can keep planning with partial evidence.
func (d *Dispatcher) Dispatch(ctx context.Context, call provider.ToolCall) Observation {
	start := time.Now()
	fail := func(code, msg string) Observation {
		return Observation{
			Tool:     call.Name,
			CallID:   call.ID,
			Code:     code,
			Err:      msg,
			Duration: time.Since(start),
		}
	}

	tool, status, ok := d.registry.Lookup(call.Name)
	if !ok {
		return fail(CodeUnknownTool, fmt.Sprintf("no tool named %q is registered", call.Name))
	}
	if status != StatusReady {
		return fail(CodeToolUnavailable, fmt.Sprintf("tool %q is %s", call.Name, status))
	}
	if d.health.Suppressed(call.Name) {
		return fail(CodeToolUnavailable, fmt.Sprintf("tool %q is temporarily suppressed after repeated failures", call.Name))
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return fail(CodeSchemaViolation, fmt.Sprintf("arguments are not a JSON object: %v", err))
		}
	}
	if err := validateArgs(tool.Schema(), args); err != nil {
		return fail(CodeSchemaViolation, err.Error())
	}

	result, err := d.execute(ctx, tool, args)
	elapsed := time.Since(start)
	if err != nil {
		code := CodeToolExecutionError
		if errors.Is(err, context.DeadlineExceeded) {
			code = CodeTimedOut
		}
		d.health.RecordFailure(call.Name)
		logging.Logger().Warn("tool call failed",
			"tool", call.Name, "code", code, "error", err, "duration", elapsed)
		obs := fail(code, err.Error())
		obs.Duration = elapsed
		return obs
	}

	payload, err := json.Marshal(result)
	if err != nil {
		d.health.RecordFailure(call.Name)
		obs := fail(CodeToolExecutionError, fmt.Sprintf("tool result not serializable: %v", err))
		obs.Duration = elapsed
		return obs
	}

	d.health.RecordSuccess(call.Name)
	return Observation{
		Tool:     call.Name,
		CallID:   call.ID,
		Payload:  payload,
		OK:       true,
		Duration: elapsed,
	}
}

type toolResult struct {
	value any
	err   error
}

// execute runs the tool under its timeout with panic containment. The
// goroutine owns its result until it hands it over the buffered channel,
// so a call abandoned on timeout can finish later without touching
// anything the dispatcher still reads.
func (d *Dispatcher) execute(ctx context.Context, tool Tool, args map[string]any) (any, error) {
	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan toolResult, 1)
	go func() {
		var res toolResult
		defer func() {
			if rec := recover(); rec != nil {
				res = toolResult{err: fmt.Errorf("tool panicked: %v", rec)}
			}
			done <- res
		}()
		res.value, res.err = tool.Execute(runCtx, args)
	}()

	select {
	case res := <-done:
		if res.err == nil && runCtx.Err() != nil {
			return nil, runCtx.Err()
		}
		return res.value, res.err
	case <-runCtx.Done():
		return nil, runCtx.Err()
	}
}

// DispatchAll executes the calls with at most maxParallel in flight and
// returns observations in the original request order regardless of
// completion timing.
func (d *Dispatcher) DispatchAll(ctx context.Context, calls []provider.ToolCall) []Observation {
	if len(calls) == 0 {
		return nil
	}
	if len(calls) == 1 {
		return []Observation{d.Dispatch(ctx, calls[0])}
	}

	out := make([]Observation, len(calls))
	sem := make(chan struct{}, d.maxParallel)
	done := make(chan int, len(calls))

	for i, call := range calls {
		go func(idx int, c provider.ToolCall) {
			sem <- struct{}{}
			defer func() { <-sem }()
			out[idx] = d.Dispatch(ctx, c)
			done <- idx
		}(i, call)
	}
	for range calls {
		<-done
	}
	return out
}
