// Package commands defines all Cobra CLI commands for the kompow binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/kompow/kompow-go/internal/audit"
	"github.com/kompow/kompow-go/internal/config"
	"github.com/kompow/kompow-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kompow",
		Short: "kompow — a personal learning pipeline powered by LLMs",
		Long: `kompow turns the content you collect into study material.

Web pages and notes go into a per-user knowledge base backed by a vector
store. The learning pipeline then analyzes your interests, researches the
topics it finds, and generates flashcards from the results.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.kompow/config.yaml).
See 'kompow --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.kompow/config.yaml)")

	root.AddCommand(
		NewLearnCmd(),
		NewIngestCmd(),
		NewAddCmd(),
		NewFlashcardsCmd(),
		NewTopicsCmd(),
		NewRunsCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}
