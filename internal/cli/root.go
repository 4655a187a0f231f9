// Package cli wires Cobra subcommands to application dependencies; it
// is a thin controller with no research logic of its own.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shennong-ai/shennong/internal/bootstrap"
	"github.com/shennong-ai/shennong/internal/config"
	"github.com/shennong-ai/shennong/internal/logging"
)

// NewRootCmd creates the root command and registers all subcommands.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "shennong",
		Short: "Shennong TCM research agent",
		// Let main handle fatal error rendering through structured logs.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				logging.SetLevel(slog.LevelInfo)
			} else {
				logging.SetLevel(slog.LevelWarn)
			}

			// Introspection commands only read state and should not
			// trigger first-run onboarding.
			switch cmd.Name() {
			case "config", "version", "help":
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			firstRun := false
			if _, err := os.Stat(cfg.ConfigPath()); errors.Is(err, os.ErrNotExist) {
				firstRun = true
			} else if err != nil {
				return fmt.Errorf("stat config file %q: %w", cfg.ConfigPath(), err)
			}

			if err := bootstrap.Initialize(cfg); err != nil {
				return err
			}

			if firstRun {
				// Onboarding, not a fatal error: print guidance and exit
				// cleanly so logs do not report failures.
				fmt.Fprintf(
					cmd.ErrOrStderr(),
					"First run setup complete.\nEdit config file: %s\nSet an API key (for example ANTHROPIC_API_KEY) and run shennong again.\n",
					cfg.ConfigPath(),
				)
				os.Exit(0)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the interactive REPL when no subcommand is given.
			replCmd, _, err := cmd.Find([]string{"repl"})
			if err != nil {
				return err
			}
			replCmd.SetContext(cmd.Context())
			return replCmd.RunE(replCmd, args)
		},
	}

	root.AddCommand(newAskCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newModelsCmd())
	root.AddCommand(newToolsCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newKeysCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging (info level)")

	return root
}
