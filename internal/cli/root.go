package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/fluxkeys/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Journal is the default journal database, from FLUXKEYS_JOURNAL.
	Journal string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. cfg supplies flag defaults.
func NewRootCommand(cfg config.Config) *cobra.Command {
	opts := &RootOptions{Journal: cfg.Journal}

	format := cfg.Format
	if format == "" {
		format = "text"
	}

	cmd := &cobra.Command{
		Use:   "fluxkeys",
		Short: "fluxkeys - typed accessors for namespaced stores",
		Long: `Tooling for typed store accessors: list and validate the qualified
keys a store registers, run accessor scenarios, and inspect journaled calls.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", format, "output format (json|text)")

	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}
