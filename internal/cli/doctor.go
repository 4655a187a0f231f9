package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shennong-ai/shennong/internal/config"
	"github.com/shennong-ai/shennong/internal/session"
	"github.com/shennong-ai/shennong/internal/tools"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, credentials, and tool health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.Load()
			if err != nil {
				reportBad(out, "config", err.Error())
				return err
			}
			reportOK(out, "home", cfg.HomeDir)

			if err := cfg.Validate(); err != nil {
				reportBad(out, "config", err.Error())
			} else {
				reportOK(out, "config", cfg.ConfigPath())
			}

			deps, err := buildRuntime(cfg)
			if err != nil {
				reportBad(out, "runtime", err.Error())
				return err
			}

			if info, err := deps.providers.Catalog().Resolve(cfg.Model); err != nil {
				reportBad(out, "model", fmt.Sprintf("%q does not resolve: %v", cfg.Model, err))
			} else {
				reportOK(out, "model", fmt.Sprintf("%s -> %s (%s)", cfg.Model, info.ID, info.Provider))
			}

			checkCredentials(out, deps)
			checkTools(out, deps)

			if _, err := os.Stat(cfg.UsagePath()); err != nil {
				reportWarn(out, "usage ledger", fmt.Sprintf("%s not present yet", cfg.UsagePath()))
			} else {
				reportOK(out, "usage ledger", cfg.UsagePath())
			}

			if ids, err := session.List(cfg.HomeDir); err != nil {
				reportWarn(out, "sessions", err.Error())
			} else {
				reportOK(out, "sessions", fmt.Sprintf("%d saved", len(ids)))
			}

			if _, err := exec.LookPath("python3"); err != nil {
				reportWarn(out, "python3", "not on PATH; code.python_exec will fail")
			} else {
				reportOK(out, "python3", "available")
			}
			return nil
		},
	}
}

func checkCredentials(out io.Writer, deps *runtimeDeps) {
	seen := map[string]bool{}
	anyCredential := false
	for _, m := range deps.providers.Catalog().Models("") {
		if seen[m.Provider] {
			continue
		}
		seen[m.Provider] = true
		if deps.providers.HasCredential(m.Provider) {
			reportOK(out, "credential", m.Provider)
			anyCredential = true
		} else {
			reportWarn(out, "credential", fmt.Sprintf("%s missing (set %s)", m.Provider, deps.providers.KeyEnvVar(m.Provider)))
		}
	}
	if !anyCredential {
		reportBad(out, "credential", "no provider credential configured; every query will fail")
	}
}

func checkTools(out io.Writer, deps *runtimeDeps) {
	ready, degraded, unavailable := 0, 0, 0
	for _, info := range deps.toolReg.List() {
		switch info.Status {
		case tools.StatusReady:
			ready++
		case tools.StatusDegraded:
			degraded++
			reportWarn(out, "tool", fmt.Sprintf("%s degraded", info.Name))
		default:
			unavailable++
			reportBad(out, "tool", fmt.Sprintf("%s unavailable", info.Name))
		}
	}
	reportOK(out, "tools", fmt.Sprintf("%d ready, %d degraded, %d unavailable", ready, degraded, unavailable))
}

func reportOK(out io.Writer, what, detail string) {
	fmt.Fprintf(out, "%s %-14s %s\n", color.GreenString("ok "), what, detail)
}

func reportWarn(out io.Writer, what, detail string) {
	fmt.Fprintf(out, "%s %-14s %s\n", color.YellowString("warn"), what, detail)
}

func reportBad(out io.Writer, what, detail string) {
	fmt.Fprintf(out, "%s %-14s %s\n", color.RedString("fail"), what, detail)
}
