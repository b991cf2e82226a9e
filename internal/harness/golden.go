package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden-file form of a run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Target       string       `json:"target"`
	Trace        []TraceEvent `json:"trace"`
}

// Snapshot renders the trace of result as indented JSON with a trailing
// newline. Map keys are sorted by encoding/json, so output is stable.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	target := scenario.Target
	if target == "" {
		target = TargetStore
	}
	data, err := json.MarshalIndent(TraceSnapshot{
		ScenarioName: scenario.Name,
		Target:       target,
		Trace:        result.Trace,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden executes a scenario and compares the trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against the scenario's golden
// file without re-running it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenario, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return nil
}
