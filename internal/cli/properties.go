package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewPropertiesCmd creates the "properties" command, which prints the
// effective URL prefix table (built-in entries merged with configuration).
func NewPropertiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "properties",
		Short: "List properties with a known URL prefix",
		Long: `Lists every property for which full_url can be built, with its base URL.
Properties not listed are still resolved, but their full_url column stays empty.
Add entries under "prefixes:" in the config file or with resolve --prefix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configFromContext(cmd.Context())
			table := cfg.PrefixTable()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "PROPERTY\tBASE URL")
			for _, property := range table.Properties() {
				marker := ""
				if property == cfg.Resolve.Property {
					marker = " (default)"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s%s\n", property, table.Base(property), marker)
			}
			return tw.Flush()
		},
	}
}
