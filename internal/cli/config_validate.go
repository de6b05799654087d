package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration (config file plus WIKILINK_*
environment overrides):
- SPARQL endpoint is an absolute URL
- Property ids (resolve.property and prefix keys) look like P123
- Batch size is within 1-1000
- Pause and timeout are not negative`,
		Example: `  # Validate current configuration
  wikilink config validate

  # Validate and show the effective settings
  wikilink config validate --verbose`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := configFromContext(cmd.Context())

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "Configuration is valid")

	if verbose {
		_, _ = fmt.Fprintf(out, "  Config file: %s\n", cfg.ConfigPath())
		_, _ = fmt.Fprintf(out, "  Endpoint:    %s\n", cfg.SPARQL.Endpoint)
		_, _ = fmt.Fprintf(out, "  Property:    %s\n", cfg.Resolve.Property)
		_, _ = fmt.Fprintf(out, "  Batch size:  %d\n", cfg.Resolve.BatchSize)
		_, _ = fmt.Fprintf(out, "  Pause:       %s\n", cfg.Resolve.Pause)
		_, _ = fmt.Fprintf(out, "  Prefixes:    %d\n", len(cfg.PrefixTable()))
	}

	return nil
}
