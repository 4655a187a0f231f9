package agent

import (
	"context"

	"github.com/shennong-ai/shennong/internal/logging"
	"github.com/shennong-ai/shennong/internal/provider"
	"github.com/shennong-ai/shennong/internal/session"
)

// Run answers one query. The transcript grows on the session as the
// loop proceeds, so a failed run still leaves a resumable record.
//
// For a fixed transcript and fixed provider responses the transitions
// are deterministic: tool observations re-enter the transcript in
// request order, never completion order.
func (a *Agent) Run(ctx context.Context, sess *session.Session, query string) (*Result, error) {
	sess.AppendUser(query)

	res := &Result{State: StatePlanning}
	var (
		draft           string
		roundTrips      int
		validationTries int
	)

	for {
		if err := ctx.Err(); err != nil {
			return a.fail(res, draft, err)
		}

		defs := a.dispatcher.Definitions()
		logging.Logger().Info(
			"planning request",
			"model", sess.Model(),
			"turns", sess.Len(),
			"tools", len(defs),
			"round_trip", roundTrips,
		)
		resp, err := a.completer.Complete(ctx, provider.ChatRequest{
			Model:        sess.Model(),
			SystemPrompt: plannerPrompt(sess.Language()),
			Messages:     sess.History(),
			Tools:        defs,
			Temperature:  planningTemperature,
		})
		if err != nil {
			// Retry policy already ran inside the completer.
			return a.fail(res, draft, err)
		}
		addUsage(&res.Usage, resp.Usage)

		if len(resp.ToolCalls) > 0 {
			sess.AppendAssistant(resp.Content, resp.ToolCalls)
			roundTrips++
			if roundTrips > a.cfg.MaxIterations {
				if draft == "" {
					draft = resp.Content
				}
				return a.fail(res, draft, ErrIterationBudget)
			}

			res.State = StateExecuting
			calls := resolveCallRefs(resp.ToolCalls, res.Observations)
			for _, obs := range a.dispatcher.DispatchAll(ctx, calls) {
				sess.AppendObservation(obs)
				res.Observations = append(res.Observations, obs)
				logging.Logger().Info(
					"tool observation",
					"tool", obs.Tool,
					"ok", obs.OK,
					"code", obs.Code,
					"duration_ms", obs.Duration.Milliseconds(),
				)
			}
			res.State = StatePlanning
			continue
		}

		draft = resp.Content
		sess.AppendAssistant(draft, nil)

		res.State = StateValidating
		verdict := Validate(draft, res.Observations)
		if len(verdict.Flags) > 0 {
			validationTries++
			res.Flags = verdict.Flags
			logging.Logger().Warn("draft flagged", "flags", verdict.Flags, "attempt", validationTries)
			if validationTries > a.cfg.ValidationRetries {
				return a.fail(res, draft, ErrValidationRecovery)
			}
			sess.AppendUser(correctiveInstruction(verdict.Flags))
			res.State = StatePlanning
			continue
		}
		res.Flags = nil

		res.State = StateSynthesizing
		answer, flags, err := a.synthesize(ctx, sess, draft, &res.Usage)
		if err != nil {
			return a.fail(res, draft, err)
		}
		res.Answer = answer
		res.Flags = append(res.Flags, flags...)
		res.State = StateDone
		return res, nil
	}
}

// fail finalizes a run with the best partial answer attached.
func (a *Agent) fail(res *Result, draft string, cause error) (*Result, error) {
	res.State = StateFailed
	res.FailReason = cause.Error()
	res.Answer = draft
	return res, cause
}

func addUsage(total *provider.TokenUsage, u provider.TokenUsage) {
	total.InputTokens += u.InputTokens
	total.OutputTokens += u.OutputTokens
	total.TotalTokens += u.TotalTokens
}
