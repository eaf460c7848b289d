package lifecycle

import (
	"context"
	"fmt"
)

// Kind discriminates the three callback shapes. The set is closed; dispatch
// logic switches on it exhaustively.
type Kind string

const (
	// KindBefore callbacks run ahead of the core operation and can halt the dispatch.
	KindBefore Kind = "before"
	// KindAfter callbacks run once the result is committed and state has advanced.
	KindAfter Kind = "after"
	// KindAround callbacks wrap the core operation through a continuation.
	KindAround Kind = "around"
)

func (k Kind) valid() bool {
	switch k {
	case KindBefore, KindAfter, KindAround:
		return true
	default:
		return false
	}
}

// Subject is the minimal surface the dispatcher needs from a command
// instance. All mutable dispatch state (the provisional result, recorded
// errors) lives on the subject, never in the engine, so distinct subjects
// can be dispatched concurrently without interference.
type Subject interface {
	State() State
	SetState(State)
	RecordResult(v any)
	RecordError(err error)
	Failed() bool
}

// Callback observes one side of a transition. Returning an error signals
// failure, equivalent to recording one on the subject.
type Callback[S Subject] func(ctx context.Context, subject S) error

// Proceed invokes the remaining layers of an around chain, ending with the
// transition's core operation, and returns the provisional result.
type Proceed func(ctx context.Context) (any, error)

// AroundCallback wraps a transition. Not calling proceed short-circuits the
// inner layers and supplies the callback's own return value as the
// provisional result; calling it more than once is a protocol violation.
type AroundCallback[S Subject] func(ctx context.Context, subject S, proceed Proceed) (any, error)

// Operation is the core business action a transition performs. Its return
// value becomes the committed result of the dispatch.
type Operation[S Subject] func(ctx context.Context, subject S) (any, error)

// DefaultPriority is assigned to registrations that do not specify one.
// Lower priorities run earlier and wrap outermost.
const DefaultPriority = 50

// entry is one registered callback together with its dispatch metadata. An
// entry is created once at registration time and never rebound.
type entry[S Subject] struct {
	kind     Kind
	selector Selector
	name     string
	priority int
	order    int64
	fn       Callback[S]
	around   AroundCallback[S]
}

// defaultName labels unnamed registrations for logs, spans, and metrics.
func defaultName(kind Kind, sel Selector, order int64) string {
	return fmt.Sprintf("%s(%s)#%d", kind, sel, order)
}
