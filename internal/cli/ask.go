package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shennong-ai/shennong/internal/agent"
	"github.com/shennong-ai/shennong/internal/config"
	"github.com/shennong-ai/shennong/internal/session"
)

func newAskCmd() *cobra.Command {
	var (
		model string
		lang  string
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one research question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			deps, err := buildRuntime(cfg)
			if err != nil {
				return err
			}

			if model == "" {
				model = cfg.Model
			}
			if lang == "" {
				lang = cfg.UI.Language
			}
			language, err := session.ParseLanguage(lang)
			if err != nil {
				return err
			}
			// Resolve up front so a bad model name fails before any network call.
			if _, err := deps.providers.Catalog().Resolve(model); err != nil {
				return err
			}

			sess := session.New(model, language)
			res, runErr := deps.newAgent().Run(cmd.Context(), sess, strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if res != nil && res.Answer != "" {
				fmt.Fprintln(out, res.Answer)
			}
			if runErr != nil {
				if res != nil && res.Answer != "" {
					color.New(color.FgYellow).Fprintf(out, "\npartial answer shown; run failed: %s\n", res.FailReason)
				}
				return runErr
			}
			for _, flag := range res.Flags {
				color.New(color.FgYellow).Fprintf(out, "note: %s\n", flag)
			}
			color.New(color.Faint).Fprintf(out, "\n%s\n", usageLine(res, deps))
			return nil
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model id or alias (default from config)")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Output language: en, zh, or bi")

	return cmd
}

func usageLine(res *agent.Result, deps *runtimeDeps) string {
	var cost float64
	for _, g := range deps.ledger.Summary() {
		cost += g.CostUSD
	}
	return fmt.Sprintf(
		"%d tool calls · %d in / %d out tokens · est. $%.4f",
		len(res.Observations), res.Usage.InputTokens, res.Usage.OutputTokens, cost,
	)
}
