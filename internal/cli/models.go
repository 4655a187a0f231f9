package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shennong-ai/shennong/internal/config"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List supported models and aliases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			deps, err := buildRuntime(cfg)
			if err != nil {
				return err
			}
			writeModelTable(cmd.OutOrStdout(), deps)
			return nil
		},
	}
}

func writeModelTable(out io.Writer, deps *runtimeDeps) {
	vendorHeading := color.New(color.Bold)
	missing := color.New(color.FgYellow)

	lastProvider := ""
	for _, m := range deps.providers.Catalog().Models("") {
		if m.Provider != lastProvider {
			lastProvider = m.Provider
			credential := ""
			if !deps.providers.HasCredential(m.Provider) {
				credential = missing.Sprintf("  (no credential, set %s)", deps.providers.KeyEnvVar(m.Provider))
			}
			vendorHeading.Fprintf(out, "%s%s\n", m.Provider, credential)
		}

		price := "pricing n/a"
		if in, outPrice, ok := deps.providers.Catalog().Pricing(m.ID); ok {
			price = fmt.Sprintf("$%.2f/$%.2f per 1M", in, outPrice)
		}
		alias := ""
		if len(m.Aliases) > 0 {
			alias = " [" + strings.Join(m.Aliases, ", ") + "]"
		}
		fmt.Fprintf(out, "  %-28s %-20s %7dk ctx  %s%s\n",
			m.ID, m.DisplayName, m.ContextWindow/1000, price, alias)
	}
}
