// Package visualizer generates Mermaid state diagrams from machine
// declarations.
package visualizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

// Visualizer errors.
var (
	ErrConfigNil      = errors.New("config cannot be nil")
	ErrNoInitialState = errors.New("config must have an initial state")
)

// palette holds the class definitions for one theme.
type palette struct {
	terminal    string
	failure     string
	highlighted string
}

//nolint:gochecknoglobals // Fixed theme table
var themePalettes = map[string]palette{
	"default": {
		terminal:    "fill:#c8e6c9,stroke:#2e7d32,stroke-width:2px",
		failure:     "fill:#ffcdd2,stroke:#b71c1c,stroke-width:2px",
		highlighted: "fill:#fff9c4,stroke:#f57f17,stroke-width:3px",
	},
	"dark": {
		terminal:    "fill:#1b5e20,stroke:#a5d6a7,stroke-width:2px",
		failure:     "fill:#b71c1c,stroke:#ef9a9a,stroke-width:2px",
		highlighted: "fill:#f57f17,stroke:#fff59d,stroke-width:3px",
	},
	"forest": {
		terminal:    "fill:#dcedc8,stroke:#33691e,stroke-width:2px",
		failure:     "fill:#d7ccc8,stroke:#4e342e,stroke-width:2px",
		highlighted: "fill:#f0f4c3,stroke:#827717,stroke-width:3px",
	},
}

// GenerateMermaid converts a Config to a Mermaid state diagram.
func GenerateMermaid(config *lifecycle.Config) (string, error) {
	return GenerateMermaidWithOptions(config, DefaultOptions())
}

// GenerateMermaidFromFile loads a config from a file and generates a Mermaid
// diagram. The config is validated as part of loading.
func GenerateMermaidFromFile(path string) (string, error) {
	config, err := lifecycle.LoadConfigFromFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	return GenerateMermaid(config)
}

// GenerateMermaidFromMachine diagrams an already-built machine. States and
// edges come out in the machine's sorted order, so output is deterministic.
func GenerateMermaidFromMachine(machine *lifecycle.Machine) (string, error) {
	return GenerateMermaidWithOptions(configFromMachine(machine), DefaultOptions())
}

// GenerateMermaidWithOptions generates a Mermaid diagram with custom options.
func GenerateMermaidWithOptions(config *lifecycle.Config, opts Options) (string, error) {
	if config == nil {
		return "", ErrConfigNil
	}

	if config.InitialState == "" {
		return "", ErrNoInitialState
	}

	var sb strings.Builder

	// Header
	sb.WriteString("```mermaid\n")
	sb.WriteString(fmt.Sprintf("stateDiagram-%s\n", opts.Direction))

	// Initial state marker
	sb.WriteString(fmt.Sprintf("    [*] --> %s\n", config.InitialState))

	// Build highlight map for quick lookup
	highlightMap := make(map[string]bool)
	for _, state := range opts.HighlightPath {
		highlightMap[state] = true
	}

	// Build terminal states map for quick lookup
	terminalMap := make(map[string]bool)
	for _, terminalState := range config.TerminalStates {
		terminalMap[terminalState] = true
	}

	// Build transition map: from state -> list of transitions
	transitionMap := make(map[string][]lifecycle.TransitionConfig)
	for _, transition := range config.Transitions {
		transitionMap[transition.From] = append(transitionMap[transition.From], transition)
	}

	// Process each state
	for _, state := range config.States {
		if opts.ShowDescriptions && state.Description != "" {
			sb.WriteString(fmt.Sprintf("    %s: %s\\n%s\n",
				state.Name, state.Name, state.Description))
		}

		isTerminal := terminalMap[state.Name]

		// Apply styling based on state role and highlighting
		switch {
		case highlightMap[state.Name]:
			sb.WriteString(fmt.Sprintf("    class %s highlighted\n", state.Name))
		case state.Name == config.FailureState:
			sb.WriteString(fmt.Sprintf("    class %s failureState\n", state.Name))
		case isTerminal:
			sb.WriteString(fmt.Sprintf("    class %s terminalState\n", state.Name))
		}

		// Add transitions from this state
		for _, transition := range transitionMap[state.Name] {
			transitionLabel := ""
			if opts.ShowTransitionNames && transition.Name != "" {
				transitionLabel = ": " + transition.Name
			}

			sb.WriteString(fmt.Sprintf("    %s --> %s%s\n",
				state.Name, transition.To, transitionLabel))
		}

		// Mark terminal states
		if isTerminal {
			sb.WriteString(fmt.Sprintf("    %s --> [*]\n", state.Name))
		}
	}

	colors, ok := themePalettes[opts.Theme]
	if !ok {
		colors = themePalettes["default"]
	}

	sb.WriteString("\n")
	sb.WriteString("    classDef terminalState " + colors.terminal + "\n")
	sb.WriteString("    classDef failureState " + colors.failure + "\n")
	sb.WriteString("    classDef highlighted " + colors.highlighted + "\n")

	sb.WriteString("```\n")

	return sb.String(), nil
}

// configFromMachine projects a frozen machine back into config form for
// rendering. Descriptions are not part of the machine and are left empty.
func configFromMachine(machine *lifecycle.Machine) *lifecycle.Config {
	if machine == nil {
		return nil
	}

	config := &lifecycle.Config{
		Name:         machine.Name(),
		InitialState: string(machine.Initial()),
		FailureState: string(machine.FailureState()),
	}

	for _, state := range machine.States() {
		config.States = append(config.States, lifecycle.StateConfig{Name: string(state)})

		if machine.IsTerminal(state) {
			config.TerminalStates = append(config.TerminalStates, string(state))
		}
	}

	for _, edge := range machine.Edges() {
		config.Transitions = append(config.Transitions, lifecycle.TransitionConfig{
			Name: edge.Name,
			From: string(edge.From),
			To:   string(edge.To),
		})
	}

	return config
}
