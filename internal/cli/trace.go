package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/fluxkeys/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string // optional - only this session
	Key      string // optional - only this qualified key
	Op       string // optional - commit or dispatch
}

// SessionTrace is the journaled calls of one session.
type SessionTrace struct {
	Session string          `json:"session"`
	Entries []journal.Entry `json:"entries"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	Calls      int `json:"calls"`
	Commits    int `json:"commits"`
	Dispatches int `json:"dispatches"`
	Resolved   int `json:"resolved"`
	Rejected   int `json:"rejected"`
	Pending    int `json:"pending"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Sessions []SessionTrace `json:"sessions"`
	Stats    TraceStats     `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show journaled store calls",
		Long: `Show the commits and dispatches recorded in a call journal, grouped
by session in the order they reached the store. Dispatches show how they
settled; a dispatch nobody awaited is shown as pending.

Examples:
  fluxkeys trace --db ./calls.db
  fluxkeys trace --db ./calls.db --session 0190b1c2-...
  fluxkeys trace --db ./calls.db --key cart/addItem --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Journal, "path to the journal database (default $FLUXKEYS_JOURNAL)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "only show this session")
	cmd.Flags().StringVar(&opts.Key, "key", "", "only show calls of this qualified key")
	cmd.Flags().StringVar(&opts.Op, "op", "", "only show commit or dispatch calls")

	return cmd
}

func runTrace(ctx context.Context, opts *TraceOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Database == "" {
		return NewExitError(ExitCommandError, "no journal: pass --db or set FLUXKEYS_JOURNAL")
	}
	switch journal.Op(opts.Op) {
	case "", journal.OpCommit, journal.OpDispatch:
	default:
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid op %q: must be commit or dispatch", opts.Op))
	}
	// Open would create a missing database.
	if _, err := os.Stat(opts.Database); err != nil {
		return commandError(formatter, ErrCodeJournal, "journal not found", err)
	}

	j, err := journal.Open(opts.Database)
	if err != nil {
		return commandError(formatter, ErrCodeJournal, "failed to open journal", err)
	}
	defer j.Close()

	entries, err := j.Entries(ctx, journal.Filter{
		Session: opts.Session,
		Key:     opts.Key,
		Op:      journal.Op(opts.Op),
	})
	if err != nil {
		return commandError(formatter, ErrCodeJournal, "failed to read journal", err)
	}

	result := buildTrace(entries)
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputTraceText(formatter, result)
}

// buildTrace groups entries by session, keeping sessions in order of their
// first call.
func buildTrace(entries []journal.Entry) TraceResult {
	result := TraceResult{Sessions: []SessionTrace{}}
	index := make(map[string]int)

	for _, e := range entries {
		i, ok := index[e.Session]
		if !ok {
			i = len(result.Sessions)
			index[e.Session] = i
			result.Sessions = append(result.Sessions, SessionTrace{Session: e.Session})
		}
		result.Sessions[i].Entries = append(result.Sessions[i].Entries, e)

		result.Stats.Calls++
		if e.Op == journal.OpCommit {
			result.Stats.Commits++
			continue
		}
		result.Stats.Dispatches++
		switch {
		case e.Result == nil:
			result.Stats.Pending++
		case e.Result.Outcome == journal.OutcomeRejected:
			result.Stats.Rejected++
		default:
			result.Stats.Resolved++
		}
	}
	return result
}

func outputTraceText(f *OutputFormatter, result TraceResult) error {
	w := f.Writer
	if result.Stats.Calls == 0 {
		fmt.Fprintln(w, "No calls found.")
		return nil
	}

	for _, s := range result.Sessions {
		fmt.Fprintf(w, "Session %s\n", s.Session)
		for _, e := range s.Entries {
			fmt.Fprintf(w, "  [%d] %-8s %s %s", e.Seq, e.Op, e.Key, e.Payload)
			if !e.Root {
				fmt.Fprint(w, " (local)")
			}
			if e.Op == journal.OpDispatch {
				switch {
				case e.Result == nil:
					fmt.Fprint(w, " -> pending")
				case e.Result.Outcome == journal.OutcomeRejected:
					fmt.Fprintf(w, " -> rejected: %s", e.Result.Error)
				default:
					fmt.Fprintf(w, " -> resolved %s", e.Result.Value)
				}
			}
			fmt.Fprintln(w)
		}
		f.VerboseLog("%d call(s) in session %s", len(s.Entries), s.Session)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d call(s): %d commit(s), %d dispatch(es) (%d resolved, %d rejected, %d pending)\n",
		result.Stats.Calls, result.Stats.Commits, result.Stats.Dispatches,
		result.Stats.Resolved, result.Stats.Rejected, result.Stats.Pending)
	return nil
}
