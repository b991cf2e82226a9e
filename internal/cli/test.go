package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fluxkeys/internal/harness"
	"github.com/roach88/fluxkeys/internal/journal"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update  bool   // regenerate golden files
	Filter  string // scenario filter (glob pattern)
	Journal string // journal database to record runs in
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name    string   `json:"name"`
	Pass    bool     `json:"pass"`
	Session string   `json:"session,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios>",
		Short: "Run accessor scenarios",
		Long: `Run accessor scenarios from a YAML file or a directory of them.

Each scenario builds real accessors for the handlers it names, invokes them
against a recording store, and checks expect clauses and assertions. When
golden/<scenario>.golden exists next to a scenario file, the trace must
match it byte for byte.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, unreadable journal, etc.)

Examples:
  fluxkeys test ./scenarios
  fluxkeys test ./scenarios --filter "cart-*"
  fluxkeys test ./scenarios --update
  fluxkeys test ./scenarios --journal ./calls.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.Journal, "journal", rootOpts.Journal, "record forwarded calls in this journal database")

	return cmd
}

func runTests(opts *TestOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios not found: %s", path))
	}

	files, err := harness.FindScenarios(path, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(files) == 0 {
		if opts.Format == "json" {
			return formatter.Success(TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	var runOpts []harness.Option
	if opts.Journal != "" {
		j, err := journal.Open(opts.Journal)
		if err != nil {
			return commandError(formatter, ErrCodeJournal, "failed to open journal", err)
		}
		defer j.Close()
		runOpts = append(runOpts, harness.WithJournal(j))
		formatter.VerboseLog("Recording calls in %s", opts.Journal)
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(files)),
		Total:     len(files),
	}
	for _, file := range files {
		sr := runScenario(cmd.Context(), file, opts, runOpts)
		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if opts.Format != "json" {
			printScenario(formatter, sr)
		}
	}

	if result.Failed > 0 {
		message := fmt.Sprintf("%d scenario(s) failed", result.Failed)
		if opts.Format != "json" {
			fmt.Fprintln(formatter.Writer)
			fmt.Fprintf(formatter.Writer, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
		}
		return formatter.Failure(ExitFailure, ErrCodeTestFailed, message, result)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	fmt.Fprintln(formatter.Writer, "✓ All scenarios passed")
	return nil
}

// runScenario loads, runs and golden-checks one scenario file.
func runScenario(ctx context.Context, file string, opts *TestOptions, runOpts []harness.Option) ScenarioResult {
	if ctx == nil {
		ctx = context.Background()
	}

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return ScenarioResult{
			Name:   filepath.Base(file),
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(ctx, scenario, runOpts...)
	if err != nil {
		return ScenarioResult{
			Name:   scenario.Name,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	sr := ScenarioResult{
		Name:    scenario.Name,
		Pass:    result.Pass,
		Session: result.Session,
		Errors:  result.Errors,
	}

	snapshot, err := harness.Snapshot(scenario, result)
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to render trace: %v", err))
		return sr
	}

	goldenPath := goldenFilePath(file)
	if opts.Update {
		if err := writeGolden(goldenPath, snapshot); err != nil {
			sr.Pass = false
			sr.Errors = append(sr.Errors, fmt.Sprintf("failed to update golden file: %v", err))
		}
		return sr
	}

	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		return sr
	}
	if err != nil {
		sr.Pass = false
		sr.Errors = append(sr.Errors, fmt.Sprintf("failed to read golden file: %v", err))
		return sr
	}
	if !bytes.Equal(golden, snapshot) {
		sr.Pass = false
		sr.Errors = append(sr.Errors, "trace does not match golden file (run with --update to regenerate)")
	}
	return sr
}

func printScenario(f *OutputFormatter, sr ScenarioResult) {
	if sr.Pass {
		fmt.Fprintf(f.Writer, "✓ %s\n", sr.Name)
		if sr.Session != "" {
			f.VerboseLog("  session %s", sr.Session)
		}
		return
	}
	fmt.Fprintf(f.Writer, "✗ %s\n", sr.Name)
	for _, e := range sr.Errors {
		for _, line := range strings.Split(strings.TrimRight(e, "\n"), "\n") {
			fmt.Fprintf(f.Writer, "  %s\n", line)
		}
	}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}
