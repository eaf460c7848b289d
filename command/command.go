// Package command binds the lifecycle dispatch engine to command-style
// objects. A Definition owns the machine, callback registry, and dispatcher
// for one command family and carries the registration DSL; a Run is a single
// command instance that moves through validate, execute, and the terminal
// transitions with full hook dispatch on every edge.
package command

import (
	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

// States of the default command machine.
const (
	// StateInitialized is the state a fresh run starts in.
	StateInitialized lifecycle.State = "initialized"
	// StateValidating means validation passed and execution has not started.
	StateValidating lifecycle.State = "validating"
	// StateExecuting means the handler ran and its result is committed.
	StateExecuting lifecycle.State = "executing"
	// StateSucceeded is the successful terminal state.
	StateSucceeded lifecycle.State = "succeeded"
	// StateFailed is the failure terminal state.
	StateFailed lifecycle.State = "failed"
)

// Transitions of the default command machine. A custom machine supplied via
// WithMachine must declare the same four names for Run's phase methods to
// drive it.
const (
	TransitionValidate = "validate"
	TransitionExecute  = "execute"
	TransitionSucceed  = "succeed"
	TransitionFail     = "fail"
)

// DefaultConfig declares the standard five-state command machine for a
// family. The fail transition is declared from every non-terminal state so a
// run can be routed to failure at any phase.
func DefaultConfig(name string) *lifecycle.Config {
	return &lifecycle.Config{
		Name:           name,
		InitialState:   string(StateInitialized),
		FailureState:   string(StateFailed),
		TerminalStates: []string{string(StateSucceeded), string(StateFailed)},
		States: []lifecycle.StateConfig{
			{Name: string(StateInitialized), Description: "Constructed, not yet validated"},
			{Name: string(StateValidating), Description: "Validation passed, awaiting execution"},
			{Name: string(StateExecuting), Description: "Handler finished, result committed"},
			{Name: string(StateSucceeded), Description: "Completed successfully"},
			{Name: string(StateFailed), Description: "Terminated with recorded errors"},
		},
		Transitions: []lifecycle.TransitionConfig{
			{Name: TransitionValidate, From: string(StateInitialized), To: string(StateValidating)},
			{Name: TransitionExecute, From: string(StateValidating), To: string(StateExecuting)},
			{Name: TransitionSucceed, From: string(StateExecuting), To: string(StateSucceeded)},
			{Name: TransitionFail, From: string(StateInitialized), To: string(StateFailed)},
			{Name: TransitionFail, From: string(StateValidating), To: string(StateFailed)},
			{Name: TransitionFail, From: string(StateExecuting), To: string(StateFailed)},
		},
	}
}

// Callback observes a Run on one side of a transition.
type Callback = lifecycle.Callback[*Run]

// AroundCallback wraps a transition of a Run through a continuation.
type AroundCallback = lifecycle.AroundCallback[*Run]

// Handler is the core action of a run's execute phase. Its return value
// becomes the run's committed result.
type Handler = lifecycle.Operation[*Run]

// Proceed invokes the remaining layers of an around chain.
type Proceed = lifecycle.Proceed

// RegisterOption adjusts a single callback registration.
type RegisterOption = lifecycle.RegisterOption

// WithPriority sets a registration's priority. Lower priorities run earlier
// and wrap outermost; the default is lifecycle.DefaultPriority.
func WithPriority(priority int) RegisterOption {
	return lifecycle.WithPriority(priority)
}

// WithName labels a registration in logs, spans, and metrics.
func WithName(name string) RegisterOption {
	return lifecycle.WithName(name)
}
