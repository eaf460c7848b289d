package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	errors2 "github.com/amp-labs/amp-lifecycle/errors"
	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

// Run is a single command instance. All mutable dispatch state (current
// state, committed result, recorded errors) lives here, so distinct runs of
// the same family can execute concurrently. A single run is not safe for
// concurrent use.
type Run struct {
	id       string
	def      *Definition
	state    lifecycle.State
	result   any
	errs     errors2.Collection
	validate Callback
	handler  Handler
}

// RunOption adjusts a new run.
type RunOption func(*Run)

// WithValidation attaches a domain validation function, run as the core of
// the validate transition. Returning an error records it and routes the run
// to the failure state.
func WithValidation(validate Callback) RunOption {
	return func(r *Run) {
		r.validate = validate
	}
}

// WithID overrides the generated run identifier.
func WithID(id string) RunOption {
	return func(r *Run) {
		r.id = id
	}
}

// NewRun mints a run of this family in the machine's initial state. The
// handler is the core action of the execute phase; it may be nil for runs
// whose work lives entirely in callbacks.
func (d *Definition) NewRun(handler Handler, opts ...RunOption) *Run {
	r := &Run{
		id:      uuid.NewString(),
		def:     d,
		state:   d.machine.Initial(),
		handler: handler,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ID returns the run's identifier.
func (r *Run) ID() string {
	return r.id
}

// Family returns the name of the definition this run belongs to.
func (r *Run) Family() string {
	return r.def.name
}

// State returns the run's current state.
func (r *Run) State() lifecycle.State {
	return r.state
}

// SetState moves the run to the given state. Dispatch calls this on commit;
// callbacks should not.
func (r *Run) SetState(state lifecycle.State) {
	r.state = state
}

// RecordResult commits a provisional result as the run's stored result.
func (r *Run) RecordResult(v any) {
	r.result = v
}

// RecordError is the failure-recording primitive. Any callback or handler may
// call it; a run carrying recorded errors routes to the failure state even if
// nothing returned an error.
func (r *Run) RecordError(err error) {
	r.errs.Add(err)
}

// Failed reports whether the run carries recorded errors.
func (r *Run) Failed() bool {
	return r.errs.HasError()
}

// Err returns the run's recorded errors joined into one, or nil.
func (r *Run) Err() error {
	return r.errs.GetError()
}

// Result returns the run's committed result, nil until the execute phase
// commits one.
func (r *Run) Result() any {
	return r.result
}

// Done reports whether the run reached a terminal state.
func (r *Run) Done() bool {
	return r.def.machine.IsTerminal(r.state)
}

// Succeeded reports whether the run reached a terminal state with no
// recorded errors.
func (r *Run) Succeeded() bool {
	return r.Done() && !r.Failed()
}

// Validate drives the validate transition with full hook dispatch. Domain
// failures are recorded on the run and route it to the failure state; the
// returned error is non-nil only for structural mistakes (an illegal edge, a
// protocol violation).
func (r *Run) Validate(ctx context.Context) error {
	if err := r.advance(ctx, TransitionValidate, r.validationOp()); err != nil {
		return err
	}

	if r.Failed() {
		return r.fail(ctx)
	}

	return nil
}

// Execute drives the run through its full lifecycle: validate, execute, then
// succeed or fail depending on the recorded outcome. Like Validate it returns
// an error only for structural mistakes; domain failures end the run in the
// failure state with the errors readable via Err.
func (r *Run) Execute(ctx context.Context) error {
	if r.state == r.def.machine.Initial() {
		if err := r.Validate(ctx); err != nil {
			return err
		}

		if r.Failed() {
			return nil
		}
	}

	if err := r.advance(ctx, TransitionExecute, r.handler); err != nil {
		return err
	}

	if r.Failed() {
		return r.fail(ctx)
	}

	if err := r.advance(ctx, TransitionSucceed, nil); err != nil {
		return err
	}

	if r.Failed() {
		return r.fail(ctx)
	}

	return nil
}

// advance dispatches one transition and applies the error policy: structural
// errors surface to the caller untouched, domain errors are recorded on the
// run and drive it to the failure state.
func (r *Run) advance(ctx context.Context, transition string, op Handler) error {
	_, err := r.def.dispatcher.Dispatch(ctx, r, transition, op)
	if err == nil {
		return nil
	}

	if lifecycle.IsStructural(err) {
		return err
	}

	r.errs.Add(err)

	return r.fail(ctx)
}

// fail drives the fail transition through normal dispatch so fail-scoped
// callbacks run. A run already in a terminal state stays where it is: the
// failure state needs no redrive, and errors recorded after a successful
// commit are report-only.
func (r *Run) fail(ctx context.Context) error {
	if r.def.machine.IsTerminal(r.state) {
		return nil
	}

	_, err := r.def.dispatcher.Dispatch(ctx, r, TransitionFail, nil)
	if err == nil {
		return nil
	}

	if lifecycle.IsStructural(err) {
		return err
	}

	// A hook on the fail edge itself failed. Record it and force the state so
	// the run still terminates.
	r.errs.Add(err)
	r.state = r.def.machine.FailureState()

	return nil
}

// validationOp lifts the run's validation function into an operation. The
// validate transition commits no result.
func (r *Run) validationOp() Handler {
	if r.validate == nil {
		return nil
	}

	return func(ctx context.Context, run *Run) (any, error) {
		return nil, r.validate(ctx, run)
	}
}

// ResultAs returns the run's committed result as a T.
func ResultAs[T any](r *Run) (T, error) {
	value, ok := r.result.(T)
	if !ok {
		var zero T

		return zero, fmt.Errorf("%w: result is %T, want %T", errors2.ErrWrongType, r.result, zero)
	}

	return value, nil
}
