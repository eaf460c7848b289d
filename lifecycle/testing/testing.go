// Package testing provides testing utilities for lifecycle-driven commands.
//
//nolint:err113,varnamelen // Test helpers use dynamic errors; short names idiomatic
package testing

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amp-labs/amp-lifecycle/command"
	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

// Trace entry phases.
const (
	PhaseStarted   = "started"
	PhaseCompleted = "completed"
	PhaseFailed    = "failed"
	PhaseCallback  = "callback"
)

// TestDefinition wraps Definition with trace recording and assertions.
type TestDefinition struct {
	*command.Definition

	t          *testing.T
	trace      *traceRecorder
	assertions []Assertion
	lastRun    *command.Run
}

// TraceEntry records a single dispatch or callback event.
type TraceEntry struct {
	Timestamp  time.Time
	Phase      string
	Transition string
	From       lifecycle.State
	To         lifecycle.State
	Kind       lifecycle.Kind
	Callback   string
	Duration   time.Duration
	Error      error
}

// Assertion represents a test assertion.
type Assertion struct {
	Name   string
	Passed bool
	Error  error
}

// NewTestDefinition creates a definition that records every dispatch for inspection.
func NewTestDefinition(t *testing.T, name string, opts ...command.DefinitionOption) *TestDefinition {
	t.Helper()

	trace := &traceRecorder{}
	opts = append(opts, command.WithLogger(trace))

	def, err := command.New(name, opts...)
	require.NoError(t, err, "failed to create definition")

	return &TestDefinition{
		Definition: def,
		t:          t,
		trace:      trace,
		assertions: make([]Assertion, 0),
	}
}

// NewTestDefinitionWithConfig creates a test definition backed by a custom machine config.
func NewTestDefinitionWithConfig(
	t *testing.T, name string, config *lifecycle.Config, opts ...command.DefinitionOption,
) *TestDefinition {
	t.Helper()

	machine, err := config.Machine()
	require.NoError(t, err, "failed to build machine")

	return NewTestDefinition(t, name, append(opts, command.WithMachine(machine))...)
}

// Execute creates a run for handler and drives it to completion, recording the trace.
func (d *TestDefinition) Execute(
	ctx context.Context, handler command.Handler, opts ...command.RunOption,
) (*command.Run, error) {
	d.t.Helper()

	run := d.NewRun(handler, opts...)
	d.lastRun = run

	return run, run.Execute(ctx)
}

// LastRun returns the most recent run started through Execute.
func (d *TestDefinition) LastRun() *command.Run {
	return d.lastRun
}

// AssertStateVisited checks if a state was visited during execution.
func (d *TestDefinition) AssertStateVisited(state lifecycle.State) {
	d.t.Helper()

	visited := stateVisited(d.trace.snapshot(), state)

	assertion := Assertion{
		Name:   fmt.Sprintf("State '%s' was visited", state),
		Passed: visited,
	}

	if !visited {
		assertion.Error = fmt.Errorf("%w: '%s'", ErrStateNotVisited, state)
	}

	d.assertions = append(d.assertions, assertion)
	require.True(d.t, visited, "state '%s' should have been visited", state)
}

// AssertTransitionTaken checks if a transition completed during execution.
func (d *TestDefinition) AssertTransitionTaken(transition string) {
	d.t.Helper()

	taken := transitionTaken(d.trace.snapshot(), transition)

	assertion := Assertion{
		Name:   fmt.Sprintf("Transition '%s' was taken", transition),
		Passed: taken,
	}

	if !taken {
		assertion.Error = fmt.Errorf("%w: '%s'", ErrTransitionNotTaken, transition)
	}

	d.assertions = append(d.assertions, assertion)
	require.True(d.t, taken, "transition '%s' should have been taken", transition)
}

// AssertCallbackRan checks if a named callback executed.
func (d *TestDefinition) AssertCallbackRan(name string) {
	d.t.Helper()

	ran := callbackRan(d.trace.snapshot(), name)

	assertion := Assertion{
		Name:   fmt.Sprintf("Callback '%s' ran", name),
		Passed: ran,
	}

	if !ran {
		assertion.Error = fmt.Errorf("%w: '%s'", ErrCallbackNotRun, name)
	}

	d.assertions = append(d.assertions, assertion)
	require.True(d.t, ran, "callback '%s' should have run", name)
}

// AssertFinalState checks the state of the most recent run.
func (d *TestDefinition) AssertFinalState(expected lifecycle.State) {
	d.t.Helper()

	if d.lastRun == nil {
		d.t.Fatal("no run executed")
	}

	actual := d.lastRun.State()

	assertion := Assertion{
		Name:   fmt.Sprintf("Final state is '%s'", expected),
		Passed: actual == expected,
	}

	if actual != expected {
		assertion.Error = fmt.Errorf("expected final state '%s', got '%s'", expected, actual)
	}

	d.assertions = append(d.assertions, assertion)
	require.Equal(d.t, expected, actual, "final state should be '%s'", expected)
}

// AssertExecutionTime checks the total time spent in completed dispatches.
func (d *TestDefinition) AssertExecutionTime(maxDuration time.Duration) {
	d.t.Helper()

	totalDuration := dispatchDuration(d.trace.snapshot())

	assertion := Assertion{
		Name:   fmt.Sprintf("Execution time < %s", maxDuration),
		Passed: totalDuration <= maxDuration,
	}

	if totalDuration > maxDuration {
		assertion.Error = fmt.Errorf("%w: took %s, max %s", ErrDispatchTooSlow, totalDuration, maxDuration)
	}

	d.assertions = append(d.assertions, assertion)
	require.LessOrEqual(d.t, totalDuration, maxDuration,
		"dispatches should take less than %s, took %s", maxDuration, totalDuration)
}

// Check evaluates matchers against the recorded execution and records the outcomes.
func (d *TestDefinition) Check(matchers ...Matcher) {
	d.t.Helper()

	for _, matcher := range matchers {
		matched, err := matcher.Match(d)

		d.assertions = append(d.assertions, Assertion{
			Name:   matcher.Description(),
			Passed: matched && err == nil,
			Error:  err,
		})

		require.NoError(d.t, err, "matcher failed: %s", matcher.Description())
		require.True(d.t, matched, "expected: %s", matcher.Description())
	}
}

// GetTrace returns the recorded dispatch trace for inspection.
func (d *TestDefinition) GetTrace() []TraceEntry {
	return d.trace.snapshot()
}

// GetAssertions returns all assertions made.
func (d *TestDefinition) GetAssertions() []Assertion {
	return d.assertions
}

func stateVisited(trace []TraceEntry, state lifecycle.State) bool {
	for _, entry := range trace {
		switch entry.Phase {
		case PhaseStarted:
			if entry.From == state {
				return true
			}
		case PhaseCompleted:
			if entry.To == state {
				return true
			}
		}
	}

	return false
}

func transitionTaken(trace []TraceEntry, transition string) bool {
	for _, entry := range trace {
		if entry.Phase == PhaseCompleted && entry.Transition == transition {
			return true
		}
	}

	return false
}

func callbackRan(trace []TraceEntry, name string) bool {
	for _, entry := range trace {
		if entry.Phase == PhaseCallback && entry.Callback == name {
			return true
		}
	}

	return false
}

// dispatchDuration sums completed dispatch durations. Callback durations are
// contained in their dispatch and are not counted again.
func dispatchDuration(trace []TraceEntry) time.Duration {
	total := time.Duration(0)

	for _, entry := range trace {
		if entry.Phase == PhaseCompleted {
			total += entry.Duration
		}
	}

	return total
}

// traceRecorder implements lifecycle.Logger and captures every dispatch event.
type traceRecorder struct {
	mu      sync.Mutex
	entries []TraceEntry
}

func (r *traceRecorder) record(entry TraceEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry.Timestamp = time.Now()
	r.entries = append(r.entries, entry)
}

func (r *traceRecorder) snapshot() []TraceEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]TraceEntry, len(r.entries))
	copy(out, r.entries)

	return out
}

func (r *traceRecorder) TransitionStarted(
	_ context.Context, _, transition string, from, to lifecycle.State,
) {
	r.record(TraceEntry{Phase: PhaseStarted, Transition: transition, From: from, To: to})
}

func (r *traceRecorder) TransitionCompleted(
	_ context.Context, _, transition string, from, to lifecycle.State, duration time.Duration,
) {
	r.record(TraceEntry{Phase: PhaseCompleted, Transition: transition, From: from, To: to, Duration: duration})
}

func (r *traceRecorder) TransitionFailed(
	_ context.Context, _, transition string, from, to lifecycle.State, err error,
) {
	r.record(TraceEntry{Phase: PhaseFailed, Transition: transition, From: from, To: to, Error: err})
}

func (r *traceRecorder) CallbackStarted(context.Context, lifecycle.Kind, string) {}

func (r *traceRecorder) CallbackCompleted(
	_ context.Context, kind lifecycle.Kind, name string, duration time.Duration, err error,
) {
	r.record(TraceEntry{Phase: PhaseCallback, Kind: kind, Callback: name, Duration: duration, Error: err})
}
