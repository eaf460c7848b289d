package lifecycle

import (
	"errors"
	"fmt"
)

// Structural errors. These indicate programmer error, surface synchronously
// from registration or dispatch, and are never converted into recorded
// domain failures by the engine.
var (
	// ErrInvalidTransition indicates an attempted edge that is not in the transition table.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConfiguration indicates a malformed registration.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrProtocol indicates an around-callback drove its continuation out of contract.
	ErrProtocol = errors.New("protocol violation")
)

// ErrValidation indicates a domain-level validation failure. Unlike the
// structural errors above it is recorded on the subject and routes the run
// to the failure state instead of surfacing from Execute.
var ErrValidation = errors.New("validation failed")

// Machine declaration errors, reported by Config.Validate.
var (
	// ErrMachineNameRequired indicates that a machine name is required.
	ErrMachineNameRequired = errors.New("machine name is required")
	// ErrInitialStateRequired indicates that an initial state is required.
	ErrInitialStateRequired = errors.New("initial state is required")
	// ErrFailureStateRequired indicates that a failure state is required.
	ErrFailureStateRequired = errors.New("failure state is required")
	// ErrStateRequired indicates that at least one state is required.
	ErrStateRequired = errors.New("at least one state is required")
	// ErrTerminalStateRequired indicates that at least one terminal state is required.
	ErrTerminalStateRequired = errors.New("at least one terminal state is required")
	// ErrStateNameRequired indicates that a state name is required.
	ErrStateNameRequired = errors.New("state name is required")
	// ErrDuplicateStateName indicates that a duplicate state name was found.
	ErrDuplicateStateName = errors.New("duplicate state name")
	// ErrInitialStateNotFound indicates that the initial state does not exist.
	ErrInitialStateNotFound = errors.New("initial state does not exist")
	// ErrFailureStateNotFound indicates that the failure state does not exist.
	ErrFailureStateNotFound = errors.New("failure state does not exist")
	// ErrFailureStateNotTerminal indicates that the failure state has outgoing transitions.
	ErrFailureStateNotTerminal = errors.New("failure state must be terminal")
	// ErrTerminalStateNotFound indicates that a terminal state does not exist.
	ErrTerminalStateNotFound = errors.New("terminal state does not exist")
	// ErrTransitionNameRequired indicates that a transition name is required.
	ErrTransitionNameRequired = errors.New("transition name is required")
	// ErrTransitionFromRequired indicates that a transition source state is required.
	ErrTransitionFromRequired = errors.New("transition source state is required")
	// ErrTransitionToRequired indicates that a transition destination state is required.
	ErrTransitionToRequired = errors.New("transition destination state is required")
	// ErrTransitionFromNotFound indicates that a transition source state does not exist.
	ErrTransitionFromNotFound = errors.New("transition source state does not exist")
	// ErrTransitionToNotFound indicates that a transition destination state does not exist.
	ErrTransitionToNotFound = errors.New("transition destination state does not exist")
	// ErrDuplicateTransition indicates that two transitions share a source state and name.
	ErrDuplicateTransition = errors.New("duplicate transition")
	// ErrTerminalStateOutgoing indicates that a terminal state has outgoing transitions.
	ErrTerminalStateOutgoing = errors.New("terminal state must not have outgoing transitions")
	// ErrStateUnreachable indicates that a state cannot be reached from the initial state.
	ErrStateUnreachable = errors.New("state is unreachable from the initial state")
)

// InvalidTransitionError reports an attempted edge missing from the
// transition table.
type InvalidTransitionError struct {
	Transition string
	From       State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition %q from state %q: %v", e.Transition, e.From, ErrInvalidTransition)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ConfigurationError reports a malformed registration.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// configurationErrorf builds a ConfigurationError from a format string.
func configurationErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// ProtocolError reports an around-callback that invoked its continuation
// more than once.
type ProtocolError struct {
	Callback string
	Calls    int
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("around callback %q called proceed %d times: %v", e.Callback, e.Calls, ErrProtocol)
}

func (e *ProtocolError) Unwrap() error {
	return ErrProtocol
}

// ValidationError reports a domain-level validation failure. Validation
// functions and callbacks return it to route a run to the failure state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrValidation, e.Reason)
	}

	return fmt.Sprintf("%v: field %q %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for the given field. An empty
// field attributes the failure to the subject as a whole.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// CallbackError wraps an error raised by a named callback with its dispatch
// context.
type CallbackError struct {
	Kind     Kind
	Callback string
	Err      error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s callback %q: %v", e.Kind, e.Callback, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// WrapCallbackError wraps an error with callback context.
func WrapCallbackError(kind Kind, callback string, err error) error {
	if err == nil {
		return nil
	}

	return &CallbackError{
		Kind:     kind,
		Callback: callback,
		Err:      err,
	}
}

// IsStructural reports whether an error belongs to the structural family
// that must surface to the caller rather than be recorded on the subject.
func IsStructural(err error) bool {
	return errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrProtocol)
}
