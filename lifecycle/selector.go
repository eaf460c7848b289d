package lifecycle

import (
	"strings"
)

// Selector restricts which transition events a callback entry applies to.
// Each axis is optional: an empty axis matches every event on that axis, and
// the zero Selector matches every event. Matching is a pure structural
// comparison against the concrete event; there is no selector-specificity
// precedence, only priority and registration order.
type Selector struct {
	Transition string
	From       State
	To         State
}

// On selects events by transition name.
func On(transition string) Selector {
	return Selector{Transition: transition}
}

// From selects events by source state.
func From(state State) Selector {
	return Selector{From: state}
}

// To selects events by destination state.
func To(state State) Selector {
	return Selector{To: state}
}

// Any selects every event.
func Any() Selector {
	return Selector{}
}

// Matches reports whether the selector applies to the given event.
func (s Selector) Matches(transition string, from, to State) bool {
	if s.Transition != "" && s.Transition != transition {
		return false
	}

	if s.From != "" && s.From != from {
		return false
	}

	if s.To != "" && s.To != to {
		return false
	}

	return true
}

// String renders the selector for logs and error messages.
func (s Selector) String() string {
	if s == (Selector{}) {
		return "any"
	}

	parts := make([]string, 0, 3)

	if s.Transition != "" {
		parts = append(parts, s.Transition)
	}

	if s.From != "" {
		parts = append(parts, "from:"+string(s.From))
	}

	if s.To != "" {
		parts = append(parts, "to:"+string(s.To))
	}

	return strings.Join(parts, ",")
}

// validate checks the selector's names against the machine's declarations.
func (s Selector) validate(m *Machine) error {
	if s.Transition != "" && !m.HasTransition(s.Transition) {
		return configurationErrorf("selector names undeclared transition %q", s.Transition)
	}

	if s.From != "" && !m.HasState(s.From) {
		return configurationErrorf("selector names undeclared source state %q", s.From)
	}

	if s.To != "" && !m.HasState(s.To) {
		return configurationErrorf("selector names undeclared destination state %q", s.To)
	}

	return nil
}
