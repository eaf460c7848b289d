package lifecycle

import (
	"sort"

	"go.uber.org/atomic"
)

// registrationOrder is the tie-break counter shared by every registry in the
// process. A single shared counter makes the ordering of equal-priority
// callbacks total across a whole family hierarchy, regardless of which
// registry an entry landed on.
var registrationOrder atomic.Int64 //nolint:gochecknoglobals

// Registry stores the callback entries registered for one command family.
// It is append-only and built for a write-once-then-read-many lifecycle:
// registration is expected to complete before any concurrent dispatch
// begins, and the registry takes no locks of its own. Enforcing that phase
// separation is the caller's obligation.
type Registry[S Subject] struct {
	machine *Machine
	parent  *Registry[S]
	entries []entry[S]
}

// NewRegistry creates an empty registry for the given machine.
func NewRegistry[S Subject](machine *Machine) *Registry[S] {
	return &Registry[S]{machine: machine}
}

// Derive creates a child registry. Resolution on the child sees the parent
// chain's entries merged ancestor-first with the child's own; registration
// on either side stays independent.
func (r *Registry[S]) Derive() *Registry[S] {
	return &Registry[S]{machine: r.machine, parent: r}
}

// RegisterOption adjusts a single registration.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	priority int
	name     string
}

// WithPriority sets the entry's priority. Lower priorities run earlier and
// wrap outermost; the default is DefaultPriority.
func WithPriority(priority int) RegisterOption {
	return func(o *registerOptions) {
		o.priority = priority
	}
}

// WithName labels the entry in logs, spans, and metrics.
func WithName(name string) RegisterOption {
	return func(o *registerOptions) {
		o.name = name
	}
}

// Register appends a before or after callback entry matching the selector.
// It fails only with a ConfigurationError: an unusable kind, a nil callback,
// or a selector naming an undeclared transition or state.
func (r *Registry[S]) Register(kind Kind, sel Selector, callback Callback[S], opts ...RegisterOption) error {
	if kind == KindAround {
		return configurationErrorf("around callbacks take a continuation; use RegisterAround")
	}

	if !kind.valid() {
		return configurationErrorf("unknown callback kind %q", kind)
	}

	if callback == nil {
		return configurationErrorf("callback must not be nil")
	}

	if err := sel.validate(r.machine); err != nil {
		return err
	}

	e := r.newEntry(kind, sel, opts)
	e.fn = callback
	r.entries = append(r.entries, e)

	return nil
}

// RegisterAround appends an around callback entry matching the selector.
// It fails only with a ConfigurationError.
func (r *Registry[S]) RegisterAround(sel Selector, callback AroundCallback[S], opts ...RegisterOption) error {
	if callback == nil {
		return configurationErrorf("callback must not be nil")
	}

	if err := sel.validate(r.machine); err != nil {
		return err
	}

	e := r.newEntry(KindAround, sel, opts)
	e.around = callback
	r.entries = append(r.entries, e)

	return nil
}

// newEntry stamps an entry with the next shared registration order.
func (r *Registry[S]) newEntry(kind Kind, sel Selector, opts []RegisterOption) entry[S] {
	options := registerOptions{priority: DefaultPriority}
	for _, opt := range opts {
		opt(&options)
	}

	order := registrationOrder.Inc()

	name := options.name
	if name == "" {
		name = defaultName(kind, sel, order)
	}

	return entry[S]{
		kind:     kind,
		selector: sel,
		name:     name,
		priority: options.priority,
		order:    order,
	}
}

// resolve gathers the entries of one kind matching the event from this
// registry and every ancestor, merged ancestor-first, then stable-sorted by
// (priority ascending, registration order ascending). The same two-key rule
// orders before, after, and around chains.
func (r *Registry[S]) resolve(kind Kind, transition string, from, to State) []entry[S] {
	var lineage []*Registry[S]
	for reg := r; reg != nil; reg = reg.parent {
		lineage = append(lineage, reg)
	}

	var matched []entry[S]

	for i := len(lineage) - 1; i >= 0; i-- { // ancestors first
		for _, e := range lineage[i].entries {
			if e.kind == kind && e.selector.Matches(transition, from, to) {
				matched = append(matched, e)
			}
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].priority != matched[j].priority {
			return matched[i].priority < matched[j].priority
		}

		return matched[i].order < matched[j].order
	})

	return matched
}
