package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"

	"github.com/roach88/fluxkeys/internal/accessor"
	"github.com/roach88/fluxkeys/internal/journal"
	"github.com/roach88/fluxkeys/internal/manifest"
	"github.com/roach88/fluxkeys/internal/testutil"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger  *slog.Logger
	journal *journal.Journal
}

// WithLogger sets the logger for step progress. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithJournal records every forwarded call of the run in j under a fresh
// session.
func WithJournal(j *journal.Journal) Option {
	return func(c *runConfig) {
		c.journal = j
	}
}

// Harness executes scenario steps through generated accessors.
type Harness struct {
	manifest *manifest.Manifest
	recorder *testutil.Recorder
	target   accessor.Target
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each step builds a real accessor for the named handler. Handlers are
// function literals tagged with accessor.WithName, so every key goes
// through the resolver the way production code does. Calls land in a fresh
// testutil.Recorder seeded with the scenario's getters and dispatch
// outcomes.
//
// A returned error means the scenario could not run (bad manifest, unknown
// handler). Failed expectations are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := scenarioManifest(scenario)
	if err != nil {
		return nil, err
	}
	if findings := m.Validate(); len(findings) > 0 {
		errs := make([]error, len(findings))
		for i, f := range findings {
			errs[i] = f
		}
		return nil, fmt.Errorf("invalid manifest: %w", errors.Join(errs...))
	}

	rec := testutil.NewRecorder(scenario.Getters)
	for key, out := range scenario.Dispatch {
		var rejection error
		if out.Error != "" {
			rejection = errors.New(out.Error)
		}
		rec.SetOutcome(key, out.Value, rejection)
	}

	result := NewResult()
	var session string
	if cfg.journal != nil {
		session = cfg.journal.NewSession()
		result.Session = session
	}

	h := &Harness{
		manifest: m,
		recorder: rec,
		target:   buildTarget(rec, scenario.Target, cfg.journal, session),
		logger:   cfg.logger,
	}

	for i, step := range scenario.Steps {
		event, err := h.execute(ctx, i, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s %s): %w", i, step.Op, step.Handler, err)
		}
		result.Trace = append(result.Trace, event)
		checkExpect(i, step, event, result)
	}

	for _, c := range rec.Calls() {
		result.Calls = append(result.Calls, CallRecord{
			Op:      c.Op,
			Key:     c.Key,
			Payload: c.Payload,
			Root:    c.Options.Root,
		})
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

func scenarioManifest(s *Scenario) (*manifest.Manifest, error) {
	if s.Manifest != "" {
		m, err := manifest.Load(s.Manifest)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return &manifest.Manifest{Modules: s.Modules}, nil
}

func buildTarget(rec *testutil.Recorder, kind string, j *journal.Journal, session string) accessor.Target {
	if kind == TargetContext {
		ac := rec.Context()
		if j != nil {
			ac = journal.WrapContext(ac, j, session)
		}
		return accessor.FromContext(ac)
	}
	s := rec.Store()
	if j != nil {
		s = journal.WrapStore(s, j, session)
	}
	return accessor.FromStore(s)
}

// module finds a module by name, falling back to its namespace.
func (h *Harness) module(ref string) (manifest.Module, error) {
	for _, mod := range h.manifest.Modules {
		if mod.Name != "" && mod.Name == ref {
			return mod, nil
		}
	}
	if mod, ok := h.manifest.Module(ref); ok {
		return mod, nil
	}
	return manifest.Module{}, fmt.Errorf("no module named %q", ref)
}

func kindOf(op string) manifest.Kind {
	switch op {
	case OpCommit, OpCommitNoPayload:
		return manifest.KindMutation
	case OpDispatch, OpDispatchNoPayload:
		return manifest.KindAction
	}
	return manifest.KindGetter
}

// execute runs one step and returns its trace event.
func (h *Harness) execute(ctx context.Context, index int, step Step) (TraceEvent, error) {
	event := TraceEvent{Step: index, Op: step.Op}

	ref, name, _ := splitHandler(step.Handler)
	mod, err := h.module(ref)
	if err != nil {
		return event, err
	}
	kind := kindOf(step.Op)
	if !slices.Contains(mod.Names(kind), name) {
		return event, fmt.Errorf("%s %q is not declared by module %s", kind, name, mod.Label())
	}

	acc := accessor.New[any, any](mod.Namespace, accessor.WithLogger(h.logger))
	tag := accessor.WithName(name)
	before := len(h.recorder.Calls())

	switch step.Op {
	case OpCommit:
		commit, err := accessor.Commit(acc, func(state, payload any) {}, tag)
		if err != nil {
			return event, err
		}
		commit(h.target, step.Payload)

	case OpCommitNoPayload:
		commit, err := accessor.CommitNoPayload(acc, func(state any) {}, tag)
		if err != nil {
			return event, err
		}
		commit(h.target)

	case OpDispatch:
		dispatch, err := accessor.Dispatch(acc, func(ctx context.Context, ac accessor.ActionContext, payload any) (any, error) {
			return nil, nil
		}, tag)
		if err != nil {
			return event, err
		}
		event.Value, event.Error = settle(ctx, dispatch(h.target, step.Payload))

	case OpDispatchNoPayload:
		dispatch, err := accessor.DispatchNoPayload(acc, func(ctx context.Context, ac accessor.ActionContext) (any, error) {
			return nil, nil
		}, tag)
		if err != nil {
			return event, err
		}
		event.Value, event.Error = settle(ctx, dispatch(h.target))

	case OpRead:
		getter := func(state, rootState any) any { return nil }
		read, err := accessor.Read(acc, getter, tag)
		if err != nil {
			return event, err
		}
		event.Value = read(h.target)
		if event.Key, err = acc.Key(getter, tag); err != nil {
			return event, err
		}
	}

	if calls := h.recorder.Calls(); len(calls) > before {
		c := calls[len(calls)-1]
		event.Key = c.Key
		event.Payload = c.Payload
		event.Root = c.Options.Root
	}

	h.logger.Info("step completed",
		"step", index,
		"op", step.Op,
		"key", event.Key,
	)
	return event, nil
}

func settle(ctx context.Context, d *accessor.Deferred[any]) (any, string) {
	v, err := d.Await(ctx)
	if err != nil {
		return nil, err.Error()
	}
	return v, ""
}

// checkExpect compares a step's event against its expect clause.
func checkExpect(index int, step Step, event TraceEvent, result *Result) {
	exp := step.Expect
	if exp == nil {
		return
	}
	if exp.Key != "" && exp.Key != event.Key {
		result.AddError(fmt.Sprintf("steps[%d]: expected key %q, got %q", index, exp.Key, event.Key))
	}
	if exp.Error != "" {
		if event.Error != exp.Error {
			result.AddError(fmt.Sprintf("steps[%d]: expected rejection %q, got %q", index, exp.Error, event.Error))
		}
		return
	}
	if event.Error != "" {
		result.AddError(fmt.Sprintf("steps[%d]: unexpected rejection: %s", index, event.Error))
		return
	}
	if exp.Value != nil && !reflect.DeepEqual(exp.Value, event.Value) {
		result.AddError(fmt.Sprintf("steps[%d]: expected value %v (%T), got %v (%T)",
			index, exp.Value, exp.Value, event.Value, event.Value))
	}
}
