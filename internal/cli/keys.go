package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/fluxkeys/internal/manifest"
)

// KeysResult lists the qualified keys of a manifest.
type KeysResult struct {
	Source string         `json:"source"`
	Keys   []manifest.Key `json:"keys"`
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "keys <manifest>",
		Short: "List qualified store keys",
		Long: `List the qualified key of every handler a manifest declares.

The manifest may be a YAML or JSON file, a CUE file, or a directory holding
a CUE package. Keys are listed in module order, then kind, then declaration
order.

Examples:
  fluxkeys keys ./store.yaml
  fluxkeys keys ./manifests --kind getter
  fluxkeys keys ./store.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(rootOpts, args[0], kind, cmd)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list one kind (mutation|action|getter)")

	return cmd
}

func runKeys(opts *RootOptions, path, kind string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	switch manifest.Kind(kind) {
	case "", manifest.KindMutation, manifest.KindAction, manifest.KindGetter:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid kind %q: must be mutation, action or getter", kind))
	}

	m, err := manifest.Load(path)
	if err != nil {
		return commandError(formatter, ErrCodeLoad, "failed to load manifest", err)
	}
	formatter.VerboseLog("Loaded %d module(s) from %s", len(m.Modules), m.Source)

	keys := make([]manifest.Key, 0)
	for _, k := range m.Keys() {
		if kind == "" || k.Kind == manifest.Kind(kind) {
			keys = append(keys, k)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(KeysResult{Source: m.Source, Keys: keys})
	}

	w := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%s\t%s\n", k.Kind, k.Module, k.Qualified)
	}
	return w.Flush()
}
