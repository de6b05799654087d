package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/wikilink/internal/config"
	"github.com/rshade/wikilink/internal/engine"
	"github.com/rshade/wikilink/internal/engine/batch"
	"github.com/rshade/wikilink/internal/ingest"
	"github.com/rshade/wikilink/internal/logging"
	"github.com/rshade/wikilink/internal/output"
	"github.com/rshade/wikilink/internal/sparql"
)

// resolveParams holds the flag values of the resolve command.
type resolveParams struct {
	property  string
	input     string
	output    string
	endpoint  string
	userAgent string
	batchSize int
	pause     time.Duration
	timeout   time.Duration
	prefixes  []string
}

// NewResolveCmd creates the "resolve" command, which runs the full
// load → batch resolve → write pipeline.
//
// Registered flags:
//   - -p/--property: Wikidata property id to resolve (default from config, P245)
//   - --input / --output: CSV paths (default source.csv / results.csv)
//   - --batch-size: codes per SPARQL query (1-1000, default 50)
//   - --pause: wait between batches (default 500ms)
//   - --endpoint, --user-agent, --timeout: SPARQL client settings
//   - --prefix: repeatable P123=https://base/ URL prefix entries
func NewResolveCmd() *cobra.Command {
	var params resolveParams

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Look up a Wikidata property for every Q-code in a CSV",
		Long: `Reads record numbers and Q-codes from the input CSV (columns "recordnumber"
and "qcode"), queries the SPARQL endpoint in batches for the requested property
and writes recordnumber, qcode, prop_uri and full_url to the output CSV.

Batches are sent one at a time with a pause in between to respect the
endpoint's rate limits. A failed query stops the run; rows of earlier batches
remain in the output file.`,
		Example: resolveExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return executeResolve(cmd, params)
		},
	}

	cmd.Flags().StringVarP(&params.property, "property", "p", "",
		"Wikidata property ID including the P prefix (default from config, P245)")
	cmd.Flags().StringVar(&params.input, "input", "", "input CSV path (default source.csv)")
	cmd.Flags().StringVar(&params.output, "output", "", "output CSV path (default results.csv)")
	cmd.Flags().StringVar(&params.endpoint, "endpoint", "", "SPARQL endpoint URL")
	cmd.Flags().StringVar(&params.userAgent, "user-agent", "", "User-Agent header sent to the endpoint")
	cmd.Flags().IntVar(&params.batchSize, "batch-size", batch.DefaultBatchSize, "number of codes per query")
	cmd.Flags().DurationVar(&params.pause, "pause", batch.DefaultPause, "pause between batches")
	cmd.Flags().DurationVar(&params.timeout, "timeout", sparql.DefaultTimeout, "timeout for a single query")
	cmd.Flags().StringArrayVar(&params.prefixes, "prefix", nil,
		"URL prefix for a property as P123=https://example.org/ (repeatable)")

	return cmd
}

const resolveExample = `  # ULAN identifiers for source.csv
  wikilink resolve

  # RKDartists identifiers
  wikilink resolve -p P650

  # Smaller batches with a longer pause
  wikilink resolve --batch-size 20 --pause 2s`

// applyResolveFlags overlays explicitly set flags onto cfg.
func applyResolveFlags(cmd *cobra.Command, cfg *config.Config, params resolveParams) error {
	flags := cmd.Flags()
	if flags.Changed("property") {
		cfg.Resolve.Property = strings.TrimSpace(params.property)
	}
	if flags.Changed("input") {
		cfg.Input.Path = params.input
	}
	if flags.Changed("output") {
		cfg.Output.Path = params.output
	}
	if flags.Changed("endpoint") {
		cfg.SPARQL.Endpoint = params.endpoint
	}
	if flags.Changed("user-agent") {
		cfg.SPARQL.UserAgent = params.userAgent
	}
	if flags.Changed("batch-size") {
		cfg.Resolve.BatchSize = params.batchSize
	}
	if flags.Changed("pause") {
		cfg.Resolve.Pause = params.pause
	}
	if flags.Changed("timeout") {
		cfg.SPARQL.Timeout = params.timeout
	}
	for _, entry := range params.prefixes {
		property, base, ok := strings.Cut(entry, "=")
		if !ok || strings.TrimSpace(property) == "" {
			return fmt.Errorf("invalid --prefix %q: expected P123=https://example.org/", entry)
		}
		cfg.SetPrefix(strings.TrimSpace(property), strings.TrimSpace(base))
	}
	return nil
}

// executeResolve runs the pipeline for the resolve command. The output file is
// closed on every exit path once it has been created.
func executeResolve(cmd *cobra.Command, params resolveParams) (err error) {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	cfg := configFromContext(ctx).Clone()
	if err = applyResolveFlags(cmd, cfg, params); err != nil {
		return err
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Using SPARQL endpoint: %s\n", cfg.SPARQL.Endpoint)
	_, _ = fmt.Fprintf(out, "Checking property: %s\n", cfg.Resolve.Property)

	records, err := ingest.LoadRecordsWithContext(ctx, cfg.Input.Path, cfg.Columns())
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("input_path", cfg.Input.Path).Msg("failed to load input")
		return fmt.Errorf("loading input: %w", err)
	}

	client := sparql.NewClient(cfg.SPARQL.Endpoint)
	client.UserAgent = cfg.SPARQL.UserAgent
	client.HTTPClient.Timeout = cfg.SPARQL.Timeout

	resolver, err := engine.NewResolver(client, engine.Options{
		Property:   cfg.Resolve.Property,
		BatchSize:  cfg.Resolve.BatchSize,
		Pacer:      batch.NewFixedPause(cfg.Resolve.Pause),
		Prefixes:   cfg.PrefixTable(),
		OnProgress: newBatchProgress(cmd.ErrOrStderr()),
	})
	if err != nil {
		return err
	}

	sink, err := output.CreateCSVFile(cfg.Output.Path)
	if err != nil {
		log.Error().Ctx(ctx).Err(err).Str("output_path", cfg.Output.Path).Msg("failed to create output")
		return err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	log.Info().Ctx(ctx).
		Str("property", cfg.Resolve.Property).
		Int("records", len(records)).
		Int("batches", batch.TotalBatches(len(records), cfg.Resolve.BatchSize)).
		Str("output_path", cfg.Output.Path).
		Msg("resolving records")

	transcript := output.NewTranscript(out, output.IsTerminal(out))
	summary, err := resolver.Resolve(ctx, records, output.Tee{sink, transcript})
	if err != nil {
		return fmt.Errorf("resolving %s: %w", cfg.Resolve.Property, err)
	}

	_, _ = fmt.Fprintf(out, "Resolved %d records (%d with %s) in %d batches; results written to %s\n",
		summary.Records, summary.Matched, cfg.Resolve.Property, summary.Batches, cfg.Output.Path)

	return nil
}
