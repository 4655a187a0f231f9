// Package agent drives the research loop: plan with the model, execute
// tool calls, validate the draft answer against the collected
// observations, then render the answer in the session language.
package agent

import (
	"context"
	"errors"

	"github.com/shennong-ai/shennong/internal/provider"
	"github.com/shennong-ai/shennong/internal/tools"
)

// State names the loop phases. Failed is terminal and reachable from
// any phase.
type State string

const (
	StatePlanning     State = "planning"
	StateExecuting    State = "executing"
	StateValidating   State = "validating"
	StateSynthesizing State = "synthesizing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

var (
	// ErrIterationBudget means the plan/execute round trips hit the
	// configured cap without producing a final answer.
	ErrIterationBudget = errors.New("iteration budget exceeded")
	// ErrValidationRecovery means the validator kept flagging redrafts
	// until the recovery budget ran out.
	ErrValidationRecovery = errors.New("validation recovery exhausted")
)

// Completer is the provider side of the loop. *provider.Registry
// satisfies it.
type Completer interface {
	Complete(ctx context.Context, req provider.ChatRequest) (*provider.ChatResponse, error)
}

const (
	defaultMaxIterations     = 12
	defaultValidationRetries = 2
	planningTemperature      = 0.1
)

// Config bounds one research run.
type Config struct {
	MaxIterations     int
	ValidationRetries int
}

func (c Config) withDefaults() Config {
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaultMaxIterations
	}
	if c.ValidationRetries <= 0 {
		c.ValidationRetries = defaultValidationRetries
	}
	return c
}

// Agent binds a completer and a tool dispatcher. It carries no
// per-conversation state; that lives in the Session passed to Run.
type Agent struct {
	completer  Completer
	dispatcher *tools.Dispatcher
	cfg        Config
}

func New(completer Completer, dispatcher *tools.Dispatcher, cfg Config) *Agent {
	return &Agent{completer: completer, dispatcher: dispatcher, cfg: cfg.withDefaults()}
}

// Result is the outcome of one query. On Failed it still carries the
// best partial answer and the full observation record.
type Result struct {
	Answer       string
	State        State
	FailReason   string
	Flags        []string
	Observations []tools.Observation
	Usage        provider.TokenUsage
}
