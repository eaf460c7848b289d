// Package lifecycle implements hook dispatch for command-style objects: a
// fixed state machine per command family, an append-only callback registry
// with before/after/around kinds and selector matching, and a dispatcher
// that executes one transition attempt end-to-end with full hook semantics.
package lifecycle

import (
	"facette.io/natsort"
)

// State identifies a single state in a command family's lifecycle.
type State string

// Transition is one declared edge of a machine's transition table.
type Transition struct {
	Name string
	From State
	To   State
}

// edgeKey addresses one cell of the transition table.
type edgeKey struct {
	from State
	name string
}

// Machine is the fixed transition table for one command family. It is built
// once from a Config, validated, and never mutated afterwards: dispatch only
// reads it. Terminal states have no outgoing edges, and the failure state is
// the destination a halted dispatch is redirected to.
type Machine struct {
	name        string
	initial     State
	failure     State
	states      map[State]struct{}
	terminal    map[State]struct{}
	edges       map[edgeKey]State
	transitions map[string]struct{}
}

// newMachine freezes a normalized, validated config into a machine.
func newMachine(config *Config) *Machine {
	m := &Machine{
		name:        config.Name,
		initial:     State(config.InitialState),
		failure:     State(config.FailureState),
		states:      make(map[State]struct{}, len(config.States)),
		terminal:    make(map[State]struct{}, len(config.TerminalStates)),
		edges:       make(map[edgeKey]State, len(config.Transitions)),
		transitions: make(map[string]struct{}, len(config.Transitions)),
	}

	for _, state := range config.States {
		m.states[State(state.Name)] = struct{}{}
	}

	for _, state := range config.TerminalStates {
		m.terminal[State(state)] = struct{}{}
	}

	for _, transition := range config.Transitions {
		m.edges[edgeKey{from: State(transition.From), name: transition.Name}] = State(transition.To)
		m.transitions[transition.Name] = struct{}{}
	}

	return m
}

// MustMachine builds a machine from a config and panics if the config is
// invalid. Intended for compiled-in machine declarations.
func MustMachine(config *Config) *Machine {
	m, err := config.Machine()
	if err != nil {
		panic(err)
	}

	return m
}

// Name returns the machine's family name.
func (m *Machine) Name() string {
	return m.name
}

// Initial returns the state new subjects start in.
func (m *Machine) Initial() State {
	return m.initial
}

// FailureState returns the terminal state halted dispatches are redirected to.
func (m *Machine) FailureState() State {
	return m.failure
}

// Target returns the destination for a legal (from, transition) pair and an
// InvalidTransitionError otherwise. The machine is never modified.
func (m *Machine) Target(from State, transition string) (State, error) {
	to, ok := m.edges[edgeKey{from: from, name: transition}]
	if !ok {
		return "", &InvalidTransitionError{Transition: transition, From: from}
	}

	return to, nil
}

// CanFire reports whether a (from, transition) pair is legal.
func (m *Machine) CanFire(from State, transition string) bool {
	_, ok := m.edges[edgeKey{from: from, name: transition}]

	return ok
}

// HasState reports whether the state is declared.
func (m *Machine) HasState(state State) bool {
	_, ok := m.states[state]

	return ok
}

// HasTransition reports whether any edge uses the transition name.
func (m *Machine) HasTransition(name string) bool {
	_, ok := m.transitions[name]

	return ok
}

// IsTerminal reports whether the state is terminal.
func (m *Machine) IsTerminal(state State) bool {
	_, ok := m.terminal[state]

	return ok
}

// States returns the declared states in natural sort order, so diagnostic
// and diagram output is deterministic.
func (m *Machine) States() []State {
	names := make([]string, 0, len(m.states))
	for state := range m.states {
		names = append(names, string(state))
	}

	natsort.Sort(names)

	states := make([]State, len(names))
	for i, name := range names {
		states[i] = State(name)
	}

	return states
}

// TransitionNames returns the declared transition names in natural sort order.
func (m *Machine) TransitionNames() []string {
	names := make([]string, 0, len(m.transitions))
	for name := range m.transitions {
		names = append(names, name)
	}

	natsort.Sort(names)

	return names
}

// Edges returns every declared edge, ordered by source state then transition
// name, both in natural sort order.
func (m *Machine) Edges() []Transition {
	edges := make([]Transition, 0, len(m.edges))

	for _, from := range m.States() {
		for _, name := range m.TransitionNames() {
			if to, ok := m.edges[edgeKey{from: from, name: name}]; ok {
				edges = append(edges, Transition{Name: name, From: from, To: to})
			}
		}
	}

	return edges
}
