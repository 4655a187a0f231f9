package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shennong-ai/shennong/internal/config"
	"github.com/shennong-ai/shennong/internal/tools"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List registered research tools and their status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			deps, err := buildRuntime(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, info := range deps.toolReg.List() {
				fmt.Fprintf(out, "%-34s %s  %s\n", info.Name, statusBadge(info.Status), info.Description)
			}
			return nil
		},
	}
}

func statusBadge(status tools.Status) string {
	switch status {
	case tools.StatusReady:
		return color.New(color.FgGreen).Sprintf("%-11s", status)
	case tools.StatusDegraded:
		return color.New(color.FgYellow).Sprintf("%-11s", status)
	default:
		return color.New(color.FgRed).Sprintf("%-11s", status)
	}
}
