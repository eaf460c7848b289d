package lifecycle

import (
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/amp-labs/amp-lifecycle/errors"
)

// Config declares a command family's machine. It can be authored as a YAML
// document or constructed as a literal; either way Machine() validates it
// and freezes it into an immutable Machine.
type Config struct {
	Name           string             `json:"name"           yaml:"name"`
	InitialState   string             `json:"initialState"   yaml:"initialState"`
	FailureState   string             `json:"failureState"   yaml:"failureState"`
	TerminalStates []string           `json:"terminalStates" yaml:"terminalStates"`
	States         []StateConfig      `json:"states"         yaml:"states"`
	Transitions    []TransitionConfig `json:"transitions"    yaml:"transitions"`
}

// StateConfig declares a single state.
type StateConfig struct {
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description,omitempty"`
}

// TransitionConfig declares a single edge of the transition table. The same
// transition name may appear on several edges with distinct source states.
type TransitionConfig struct {
	Name string `json:"name" yaml:"name"`
	From string `json:"from" yaml:"from"`
	To   string `json:"to"   yaml:"to"`
}

// LoadConfigFromBytes loads a machine configuration from YAML bytes.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var config Config

	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	config.normalize()

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigFromFile loads a machine configuration from a YAML file.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return LoadConfigFromBytes(data)
}

// LoadConfigFromFS loads a configuration from an embedded filesystem.
// This is a convenience function for loading from embed.FS.
func LoadConfigFromFS(fsys fs.FS, path string) (*Config, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config from FS: %w", err)
	}

	return LoadConfigFromBytes(data)
}

// normalize applies NFC normalization to every declared name, so visually
// identical YAML-authored names compare equal during validation and dispatch.
func (c *Config) normalize() {
	c.Name = norm.NFC.String(c.Name)
	c.InitialState = norm.NFC.String(c.InitialState)
	c.FailureState = norm.NFC.String(c.FailureState)

	for i := range c.TerminalStates {
		c.TerminalStates[i] = norm.NFC.String(c.TerminalStates[i])
	}

	for i := range c.States {
		c.States[i].Name = norm.NFC.String(c.States[i].Name)
	}

	for i := range c.Transitions {
		c.Transitions[i].Name = norm.NFC.String(c.Transitions[i].Name)
		c.Transitions[i].From = norm.NFC.String(c.Transitions[i].From)
		c.Transitions[i].To = norm.NFC.String(c.Transitions[i].To)
	}
}

// Validate checks the configuration and reports every finding at once as a
// joined error, so a hand-authored YAML file can be fixed in one pass.
func (c *Config) Validate() error {
	col := &errors.Collection{}

	if c.Name == "" {
		col.Add(ErrMachineNameRequired)
	}

	if c.InitialState == "" {
		col.Add(ErrInitialStateRequired)
	}

	if c.FailureState == "" {
		col.Add(ErrFailureStateRequired)
	}

	if len(c.States) == 0 {
		col.Add(ErrStateRequired)
	}

	if len(c.TerminalStates) == 0 {
		col.Add(ErrTerminalStateRequired)
	}

	stateNames := make(map[string]bool, len(c.States))

	for _, state := range c.States {
		if state.Name == "" {
			col.Add(ErrStateNameRequired)

			continue
		}

		if stateNames[state.Name] {
			col.Add(fmt.Errorf("%w: %s", ErrDuplicateStateName, state.Name))
		}

		stateNames[state.Name] = true
	}

	// Referential checks are meaningless until the basics hold.
	if col.HasError() {
		return col.GetError()
	}

	c.validateReferences(col)

	if col.HasError() {
		return col.GetError()
	}

	c.validateReachability(col)

	return col.GetError()
}

// validateReferences checks that every named state exists, that terminal
// states have no outgoing edges, and that no edge is declared twice.
func (c *Config) validateReferences(col *errors.Collection) {
	if !c.stateExists(c.InitialState) {
		col.Add(fmt.Errorf("%w: %s", ErrInitialStateNotFound, c.InitialState))
	}

	if c.FailureState != "" && !c.stateExists(c.FailureState) {
		col.Add(fmt.Errorf("%w: %s", ErrFailureStateNotFound, c.FailureState))
	}

	terminal := make(map[string]bool, len(c.TerminalStates))

	for _, state := range c.TerminalStates {
		if !c.stateExists(state) {
			col.Add(fmt.Errorf("%w: %s", ErrTerminalStateNotFound, state))
		}

		terminal[state] = true
	}

	if c.FailureState != "" && !terminal[c.FailureState] {
		col.Add(fmt.Errorf("%w: %s", ErrFailureStateNotTerminal, c.FailureState))
	}

	seen := make(map[string]bool, len(c.Transitions))

	for i, transition := range c.Transitions {
		if transition.Name == "" {
			col.Add(fmt.Errorf("transition %d: %w", i, ErrTransitionNameRequired))
		}

		if transition.From == "" {
			col.Add(fmt.Errorf("transition %d: %w", i, ErrTransitionFromRequired))

			continue
		}

		if transition.To == "" {
			col.Add(fmt.Errorf("transition %d: %w", i, ErrTransitionToRequired))

			continue
		}

		if !c.stateExists(transition.From) {
			col.Add(fmt.Errorf("transition %d: %w: %s", i, ErrTransitionFromNotFound, transition.From))

			continue
		}

		if !c.stateExists(transition.To) {
			col.Add(fmt.Errorf("transition %d: %w: %s", i, ErrTransitionToNotFound, transition.To))

			continue
		}

		if terminal[transition.From] {
			col.Add(fmt.Errorf("%w: %s", ErrTerminalStateOutgoing, transition.From))
		}

		key := transition.From + "\x00" + transition.Name
		if seen[key] {
			col.Add(fmt.Errorf("%w: %s from %s", ErrDuplicateTransition, transition.Name, transition.From))
		}

		seen[key] = true
	}
}

// validateReachability walks the edges breadth-first from the initial state
// and reports every state the walk cannot reach.
func (c *Config) validateReachability(col *errors.Collection) {
	reachable := map[string]bool{c.InitialState: true}
	queue := []string{c.InitialState}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, transition := range c.Transitions {
			if transition.From == current && !reachable[transition.To] {
				reachable[transition.To] = true
				queue = append(queue, transition.To)
			}
		}
	}

	for _, state := range c.States {
		if !reachable[state.Name] {
			col.Add(fmt.Errorf("%w: %s", ErrStateUnreachable, state.Name))
		}
	}
}

// stateExists checks if a state with the given name is declared.
func (c *Config) stateExists(name string) bool {
	for _, state := range c.States {
		if state.Name == name {
			return true
		}
	}

	return false
}

// Machine validates the config and freezes it into an immutable Machine.
func (c *Config) Machine() (*Machine, error) {
	c.normalize()

	err := c.Validate()
	if err != nil {
		return nil, err
	}

	return newMachine(c), nil
}
