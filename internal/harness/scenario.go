package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/fluxkeys/internal/manifest"
)

// Scenario drives generated accessors against a recording store and checks
// what reached the store.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Manifest is the path of a key manifest, relative to the scenario file.
	// Exactly one of Manifest and Modules must be set.
	Manifest string `yaml:"manifest,omitempty"`

	// Modules declares the store modules inline.
	Modules []manifest.Module `yaml:"modules,omitempty"`

	// Target selects the call target: "store" (default) or "context".
	Target string `yaml:"target,omitempty"`

	// Getters is the getter table served by the store, by qualified key.
	Getters map[string]any `yaml:"getters,omitempty"`

	// Dispatch holds canned dispatch outcomes by qualified key. Keys
	// without an entry resolve to nil.
	Dispatch map[string]Outcome `yaml:"dispatch,omitempty"`

	// Steps are the accessor invocations, run in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the recorded calls after all steps ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Outcome is the settlement of a dispatched key.
type Outcome struct {
	Value any    `yaml:"value,omitempty"`
	Error string `yaml:"error,omitempty"`
}

// Step invokes one accessor.
type Step struct {
	// Op is the accessor kind: commit, commit_no_payload, dispatch,
	// dispatch_no_payload or read.
	Op string `yaml:"op"`

	// Handler names the handler as "<module>.<handler>", where module is
	// the module name or namespace.
	Handler string `yaml:"handler"`

	// Payload is passed to commit and dispatch.
	Payload any `yaml:"payload,omitempty"`

	// Expect checks the step outcome. Only dispatch and read steps
	// produce a value.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step.
type Expect struct {
	// Key is the qualified key the accessor must resolve to.
	Key string `yaml:"key,omitempty"`

	// Value is compared with the dispatch result or getter value.
	Value any `yaml:"value,omitempty"`

	// Error is the expected rejection message of a dispatch.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the recorded calls.
type Assertion struct {
	// Type is call_count, call_order or called_with.
	Type string `yaml:"type"`

	// Key is the qualified key (call_count, called_with).
	Key string `yaml:"key,omitempty"`

	// Op restricts call_count to commits or dispatches.
	Op string `yaml:"op,omitempty"`

	// Count is the expected number of calls (call_count).
	Count int `yaml:"count,omitempty"`

	// Keys is the expected key order (call_order).
	Keys []string `yaml:"keys,omitempty"`

	// Payload is matched against recorded payloads (called_with).
	// Maps match as subsets.
	Payload any `yaml:"payload,omitempty"`
}

// Step operations.
const (
	OpCommit            = "commit"
	OpCommitNoPayload   = "commit_no_payload"
	OpDispatch          = "dispatch"
	OpDispatchNoPayload = "dispatch_no_payload"
	OpRead              = "read"
)

// Call targets.
const (
	TargetStore   = "store"
	TargetContext = "context"
)

// Assertion types.
const (
	AssertCallCount  = "call_count"
	AssertCallOrder  = "call_order"
	AssertCalledWith = "called_with"
)

// LoadScenario reads and parses a scenario YAML file.
// A relative manifest path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Manifest != "" && !filepath.IsAbs(scenario.Manifest) {
		scenario.Manifest = filepath.Join(filepath.Dir(path), scenario.Manifest)
	}
	if scenario.Manifest != "" {
		if _, err := os.Stat(scenario.Manifest); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: manifest not found: %s", scenario.Manifest)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Unknown fields are rejected so typos
// fail loudly.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// FindScenarios returns the scenario files under path in lexical order.
// A file path is returned as is. filter, when set, is a glob matched
// against file names without extension.
func FindScenarios(path, filter string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "golden" && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(p)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Manifest == "" && len(s.Modules) == 0 {
		return fmt.Errorf("either manifest or modules is required")
	}
	if s.Manifest != "" && len(s.Modules) > 0 {
		return fmt.Errorf("manifest and modules are mutually exclusive")
	}
	switch s.Target {
	case "", TargetStore, TargetContext:
	default:
		return fmt.Errorf("unknown target %q (want store or context)", s.Target)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s *Step) error {
	switch s.Op {
	case OpCommit, OpDispatch:
	case OpCommitNoPayload, OpDispatchNoPayload, OpRead:
		if s.Payload != nil {
			return fmt.Errorf("steps[%d]: %s takes no payload", index, s.Op)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}
	if _, _, ok := splitHandler(s.Handler); !ok {
		return fmt.Errorf("steps[%d]: handler must be <module>.<handler>, got %q", index, s.Handler)
	}
	if s.Expect != nil && s.Expect.Error != "" && s.Op != OpDispatch && s.Op != OpDispatchNoPayload {
		return fmt.Errorf("steps[%d].expect: error only applies to dispatch steps", index)
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertCallCount:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for call_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for call_count", index)
		}
		if a.Op != "" && a.Op != OpCommit && a.Op != OpDispatch {
			return fmt.Errorf("assertions[%d]: op must be commit or dispatch", index)
		}
	case AssertCallOrder:
		if len(a.Keys) == 0 {
			return fmt.Errorf("assertions[%d]: keys list is required for call_order", index)
		}
	case AssertCalledWith:
		if a.Key == "" {
			return fmt.Errorf("assertions[%d]: key is required for called_with", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// splitHandler splits "<module>.<handler>" at the last dot. The module part
// may be empty to address the root module.
func splitHandler(ref string) (module, name string, ok bool) {
	i := strings.LastIndex(ref, ".")
	if i < 0 || i == len(ref)-1 {
		return "", "", false
	}
	return ref[:i], ref[i+1:], true
}
