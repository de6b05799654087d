package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/wikilink/internal/config"
	"github.com/rshade/wikilink/internal/logging"
)

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

type configKey struct{}

// contextWithConfig stores the effective configuration for subcommands.
func contextWithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFromContext returns the configuration loaded by the root command, or defaults.
func configFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
		return cfg
	}
	return config.New()
}

// NewRootCmd creates the root Cobra command for the wikilink CLI.
// It loads configuration, wires up logging, and registers the resolve,
// properties and config subcommands.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.LogPathResult
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "wikilink",
		Short: "Resolve Wikidata properties for lists of entity codes",
		Long: `wikilink reads a CSV of record numbers and Wikidata Q-codes, looks up one
property (for example P245, the ULAN identifier) for every code in batches
against a SPARQL endpoint, and writes the values and their canonical URLs
to a results CSV.`,
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			result := setupLogging(cmd, cfg)
			logResult = &result
			cmd.SetContext(contextWithConfig(cmd.Context(), cfg))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "",
		fmt.Sprintf("config file (default $%s/config.yaml or ~/.wikilink/config.yaml)", config.EnvHome))
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	cmd.AddCommand(NewResolveCmd(), NewPropertiesCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Resolve ULAN identifiers (P245) for source.csv into results.csv
  wikilink resolve

  # Resolve VIAF identifiers with custom files
  wikilink resolve -p P214 --input objects.csv --output viaf.csv

  # Add a URL prefix for a property that has none built in
  wikilink resolve -p P350 --prefix P350=https://www.rijksmuseum.nl/collectie/

  # Show the URL prefix table
  wikilink properties

  # Write a default configuration file
  wikilink config init`

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigShowCmd(), NewConfigValidateCmd())
	return cmd
}
