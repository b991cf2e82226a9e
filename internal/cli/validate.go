package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/fluxkeys/internal/manifest"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Keys   int                        `json:"keys"`
	Errors []manifest.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Check a manifest for key collisions and bad names",
		Long: `Validate a key manifest without running the store.

Reports every finding at once: empty names, names containing "/", names or
namespaces not in Unicode NFC form, duplicate names within a module, and
qualified keys registered by more than one module.

Exit codes:
  0 - Manifest is valid
  1 - Validation findings
  2 - Manifest could not be loaded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	m, err := manifest.Load(path)
	if err != nil {
		return commandError(formatter, ErrCodeLoad, "failed to load manifest", err)
	}

	formatter.VerboseLog("Validating %d module(s) from %s", len(m.Modules), m.Source)
	findings := m.Validate()
	result := ValidationResult{
		Valid:  len(findings) == 0,
		Keys:   len(m.Keys()),
		Errors: findings,
	}

	if !result.Valid {
		message := fmt.Sprintf("validation failed with %d error(s)", len(findings))
		if opts.Format != "json" {
			fmt.Fprintln(formatter.Writer, "✗ Validation failed")
			fmt.Fprintln(formatter.Writer)
			for _, f := range findings {
				fmt.Fprintf(formatter.Writer, "  %s\n", f.Error())
			}
		}
		return formatter.Failure(ExitFailure, ErrCodeValidation, message, result)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Manifest valid (%d keys)\n", result.Keys)
	return nil
}
