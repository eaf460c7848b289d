package lifecycle

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Dispatcher drives transitions for one family of subjects. It resolves the
// applicable callbacks for each dispatch, runs the before chain, folds the
// around chain over the core operation, commits the transition, and runs the
// after chain.
type Dispatcher[S Subject] struct {
	family   string
	machine  *Machine
	registry *Registry[S]
	logger   Logger
}

// NewDispatcher creates a dispatcher for a family of subjects. The family name
// appears in logs, metrics, and spans. A nil logger falls back to slog.
func NewDispatcher[S Subject](family string, machine *Machine, registry *Registry[S], logger Logger) *Dispatcher[S] {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	return &Dispatcher[S]{
		family:   family,
		machine:  machine,
		registry: registry,
		logger:   logger,
	}
}

// Dispatch fires the named transition on the subject, running the full hook
// pipeline around the operation. The operation may be nil for transitions that
// carry no work of their own, in which case the subject's recorded result is
// left untouched.
//
// An error from a before callback, or a failure newly recorded by one, halts
// the dispatch: the subject is moved to the machine's failure state with no
// hooks run on that forced edge, and Dispatch returns a nil error. Errors from
// the around chain, the operation, or an after callback are returned to the
// caller; the after chain runs only once the transition has been committed.
func (d *Dispatcher[S]) Dispatch(ctx context.Context, subject S, transition string, op Operation[S]) (any, error) {
	from := subject.State()

	to, err := d.machine.Target(from, transition)
	if err != nil {
		return nil, err
	}

	ctx, span := startDispatchSpan(ctx, d.family, transition, from, to, subjectID(subject))
	defer span.End()

	start := time.Now()

	d.logger.TransitionStarted(ctx, d.family, transition, from, to)

	halted, haltErr := d.runBefores(ctx, subject, transition, from, to)
	if halted {
		d.redirect(ctx, subject, transition, from, haltErr)

		span.SetAttributes(attribute.Bool("short_circuit", true))
		span.SetStatus(codes.Error, "halted by before callback")

		shortCircuitsTotal.WithLabelValues(sanitizeLabel(d.family), sanitizeLabel(transition)).Inc()
		observeDispatch(d.family, transition, outcomeHalted, time.Since(start))

		return nil, nil
	}

	result, err := d.runChain(ctx, subject, transition, from, to, op)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		observeDispatch(d.family, transition, outcomeError, time.Since(start))
		d.logger.TransitionFailed(ctx, d.family, transition, from, to, err)

		return nil, err
	}

	if op != nil {
		subject.RecordResult(result)
	}

	subject.SetState(to)

	if err := d.runAfters(ctx, subject, transition, from, to); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		observeDispatch(d.family, transition, outcomeError, time.Since(start))
		d.logger.TransitionFailed(ctx, d.family, transition, from, to, err)

		return result, err
	}

	span.SetStatus(codes.Ok, "")
	observeDispatch(d.family, transition, outcomeSuccess, time.Since(start))
	d.logger.TransitionCompleted(ctx, d.family, transition, from, to, time.Since(start))

	return result, nil
}

// runBefores invokes the before chain in order. It reports a halt when a
// callback returns an error or records a failure the subject did not already
// carry.
func (d *Dispatcher[S]) runBefores(
	ctx context.Context, subject S, transition string, from, to State,
) (bool, error) {
	for _, e := range d.registry.resolve(KindBefore, transition, from, to) {
		wasFailed := subject.Failed()

		if err := d.invoke(ctx, e, subject); err != nil {
			return true, err
		}

		if !wasFailed && subject.Failed() {
			return true, nil
		}
	}

	return false, nil
}

// redirect moves a subject halted by its before chain onto the failure state.
// No callbacks run on this forced edge.
func (d *Dispatcher[S]) redirect(ctx context.Context, subject S, transition string, from State, haltErr error) {
	if haltErr != nil {
		subject.RecordError(haltErr)
	}

	failure := d.machine.FailureState()

	subject.SetState(failure)
	d.logger.TransitionFailed(ctx, d.family, transition, from, failure, haltErr)
}

// runChain folds the around callbacks over the core operation and executes the
// result. The first entry in sorted order becomes the outermost layer. A
// protocol violation recorded during the run takes precedence over whatever
// the chain returned, so an around callback cannot swallow it.
func (d *Dispatcher[S]) runChain(
	ctx context.Context, subject S, transition string, from, to State, op Operation[S],
) (any, error) {
	proceed := d.coreProceed(subject, transition, op)

	var violation *ProtocolError

	arounds := d.registry.resolve(KindAround, transition, from, to)
	for i := len(arounds) - 1; i >= 0; i-- {
		proceed = d.wrapAround(arounds[i], subject, proceed, &violation)
	}

	result, err := proceed(ctx)

	if violation != nil {
		return nil, violation
	}

	return result, err
}

// coreProceed wraps the operation as the innermost layer of the around chain.
// A nil operation yields a nil result without error.
func (d *Dispatcher[S]) coreProceed(subject S, transition string, op Operation[S]) Proceed {
	return func(ctx context.Context) (any, error) {
		opCtx, opSpan := startOperationSpan(ctx, d.family, transition)
		defer opSpan.End()

		if op == nil {
			opSpan.SetStatus(codes.Ok, "")

			return nil, nil
		}

		result, err := op(opCtx, subject)
		if err != nil {
			opSpan.RecordError(err)
			opSpan.SetStatus(codes.Error, err.Error())

			return nil, err
		}

		opSpan.SetStatus(codes.Ok, "")

		return result, nil
	}
}

// wrapAround layers one around callback over the chain built so far. Each
// activation gets a fresh call counter so the same registration can run in
// later dispatches; a second proceed call within one activation records a
// protocol violation and the inner chain is not re-entered.
func (d *Dispatcher[S]) wrapAround(
	e entry[S], subject S, inner Proceed, violation **ProtocolError,
) Proceed {
	return func(ctx context.Context) (any, error) {
		calls := 0

		counted := Proceed(func(cctx context.Context) (any, error) {
			calls++
			if calls > 1 {
				protoErr := &ProtocolError{Callback: e.name, Calls: calls}
				if *violation == nil {
					*violation = protoErr
				}

				return nil, protoErr
			}

			return inner(cctx)
		})

		d.logger.CallbackStarted(ctx, KindAround, e.name)

		spanCtx, span := startCallbackSpan(ctx, KindAround, e.name)
		start := time.Now()

		result, err := e.around(spanCtx, subject, counted)

		duration := time.Since(start)
		finishCallbackSpan(span, duration, err)
		span.End()

		d.logger.CallbackCompleted(ctx, KindAround, e.name, duration, err)
		observeCallback(d.family, KindAround, duration, err)

		if err != nil {
			return nil, WrapCallbackError(KindAround, e.name, err)
		}

		return result, nil
	}
}

// runAfters invokes the after chain in order. The transition has already been
// committed by the time these run; a returned error stops the chain and is
// reported to the caller, while errors merely recorded on the subject do not.
func (d *Dispatcher[S]) runAfters(ctx context.Context, subject S, transition string, from, to State) error {
	for _, e := range d.registry.resolve(KindAfter, transition, from, to) {
		if err := d.invoke(ctx, e, subject); err != nil {
			return err
		}
	}

	return nil
}

// invoke runs a single before or after callback with logging, tracing, and
// metrics around it.
func (d *Dispatcher[S]) invoke(ctx context.Context, e entry[S], subject S) error {
	d.logger.CallbackStarted(ctx, e.kind, e.name)

	spanCtx, span := startCallbackSpan(ctx, e.kind, e.name)
	start := time.Now()

	err := e.fn(spanCtx, subject)

	duration := time.Since(start)
	finishCallbackSpan(span, duration, err)
	span.End()

	d.logger.CallbackCompleted(ctx, e.kind, e.name, duration, err)
	observeCallback(d.family, e.kind, duration, err)

	return WrapCallbackError(e.kind, e.name, err)
}

// subjectID extracts a stable identifier from subjects that expose one.
func subjectID(subject any) string {
	if ider, ok := subject.(interface{ ID() string }); ok {
		return ider.ID()
	}

	return ""
}
