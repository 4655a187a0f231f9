package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/shennong-ai/shennong/internal/config"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage provider API keys",
	}
	cmd.AddCommand(newKeysSetCmd())
	return cmd
}

func newKeysSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider>",
		Short: "Store an API key for a provider in config.toml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			providerName := strings.ToLower(strings.TrimSpace(args[0]))
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			key, err := readSecret(cmd, fmt.Sprintf("API key for %s: ", providerName))
			if err != nil {
				return err
			}
			if key == "" {
				return fmt.Errorf("empty key")
			}

			v := viper.New()
			v.SetConfigFile(cfg.ConfigPath())
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("read config file: %w", err)
			}
			v.Set("llm."+providerName+".api_key", key)
			if err := v.WriteConfigAs(cfg.ConfigPath()); err != nil {
				return fmt.Errorf("write config file: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stored key for %s in %s\n", providerName, cfg.ConfigPath())
			return nil
		},
	}
}

// readSecret reads the key without echo on a terminal, falling back to
// plain line input when stdin is piped.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}

	var line string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
