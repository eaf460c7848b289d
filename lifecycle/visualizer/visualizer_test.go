package visualizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

func orderConfig() *lifecycle.Config {
	return &lifecycle.Config{
		Name:           "order",
		InitialState:   "pending",
		FailureState:   "canceled",
		TerminalStates: []string{"shipped", "canceled"},
		States: []lifecycle.StateConfig{
			{Name: "pending", Description: "Awaiting payment"},
			{Name: "paid"},
			{Name: "shipped"},
			{Name: "canceled"},
		},
		Transitions: []lifecycle.TransitionConfig{
			{Name: "pay", From: "pending", To: "paid"},
			{Name: "ship", From: "paid", To: "shipped"},
			{Name: "cancel", From: "pending", To: "canceled"},
			{Name: "cancel", From: "paid", To: "canceled"},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      *lifecycle.Config
		wantErr     bool
		wantContain []string
	}{
		{
			name:   "order flow",
			config: orderConfig(),
			wantContain: []string{
				"stateDiagram-TD",
				"[*] --> pending",
				"pending --> paid: pay",
				"paid --> shipped: ship",
				"pending --> canceled: cancel",
				"paid --> canceled: cancel",
				"shipped --> [*]",
				"canceled --> [*]",
				"class shipped terminalState",
				"class canceled failureState",
				"Awaiting payment",
			},
		},
		{
			name: "self transition",
			config: &lifecycle.Config{
				Name:           "retrying",
				InitialState:   "running",
				FailureState:   "dead",
				TerminalStates: []string{"done", "dead"},
				States: []lifecycle.StateConfig{
					{Name: "running"},
					{Name: "done"},
					{Name: "dead"},
				},
				Transitions: []lifecycle.TransitionConfig{
					{Name: "retry", From: "running", To: "running"},
					{Name: "finish", From: "running", To: "done"},
					{Name: "abort", From: "running", To: "dead"},
				},
			},
			wantContain: []string{
				"running --> running: retry",
				"running --> done: finish",
				"running --> dead: abort",
			},
		},
		{
			name:    "nil config returns error",
			config:  nil,
			wantErr: true,
		},
		{
			name: "config without initial state returns error",
			config: &lifecycle.Config{
				Name:           "broken",
				TerminalStates: []string{"done"},
				States: []lifecycle.StateConfig{
					{Name: "start"},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := GenerateMermaid(tt.config)

			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Contains(t, result, "```mermaid")

			for _, want := range tt.wantContain {
				assert.Contains(t, result, want,
					"diagram should contain %q", want)
			}
		})
	}
}

func TestGenerateMermaidWithOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		opts           Options
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:        "left-right direction",
			opts:        DefaultOptions().WithDirection("LR"),
			wantContain: []string{"stateDiagram-LR"},
		},
		{
			name:           "edge labels hidden",
			opts:           DefaultOptions().WithShowTransitionNames(false),
			wantContain:    []string{"pending --> paid\n"},
			wantNotContain: []string{"pending --> paid: pay"},
		},
		{
			name:           "descriptions hidden",
			opts:           DefaultOptions().WithShowDescriptions(false),
			wantNotContain: []string{"Awaiting payment"},
		},
		{
			name: "highlighted path wins over role styling",
			opts: DefaultOptions().WithHighlightPath([]string{"pending", "canceled"}),
			wantContain: []string{
				"class pending highlighted",
				"class canceled highlighted",
			},
			wantNotContain: []string{"class canceled failureState"},
		},
		{
			name:        "dark theme",
			opts:        DefaultOptions().WithTheme("dark"),
			wantContain: []string{"classDef terminalState fill:#1b5e20"},
		},
		{
			name:        "unknown theme falls back to default",
			opts:        DefaultOptions().WithTheme("neon"),
			wantContain: []string{"classDef terminalState fill:#c8e6c9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result, err := GenerateMermaidWithOptions(orderConfig(), tt.opts)
			require.NoError(t, err)

			for _, want := range tt.wantContain {
				assert.Contains(t, result, want)
			}

			for _, unwanted := range tt.wantNotContain {
				assert.NotContains(t, result, unwanted)
			}
		})
	}
}

func TestGenerateMermaidFromMachine(t *testing.T) {
	t.Parallel()

	machine, err := orderConfig().Machine()
	require.NoError(t, err)

	result, err := GenerateMermaidFromMachine(machine)
	require.NoError(t, err)

	assert.Contains(t, result, "[*] --> pending")
	assert.Contains(t, result, "pending --> paid: pay")
	assert.Contains(t, result, "class canceled failureState")
	assert.Contains(t, result, "class shipped terminalState")

	// Output is deterministic across runs.
	again, err := GenerateMermaidFromMachine(machine)
	require.NoError(t, err)
	assert.Equal(t, result, again)
}

func TestGenerateMermaidFromFile(t *testing.T) {
	t.Parallel()

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		yamlDoc := `
name: order
initialState: pending
failureState: canceled
terminalStates:
  - shipped
  - canceled
states:
  - name: pending
  - name: paid
  - name: shipped
  - name: canceled
transitions:
  - name: pay
    from: pending
    to: paid
  - name: ship
    from: paid
    to: shipped
  - name: cancel
    from: pending
    to: canceled
  - name: cancel
    from: paid
    to: canceled
`
		path := filepath.Join(t.TempDir(), "order.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

		result, err := GenerateMermaidFromFile(path)
		require.NoError(t, err)
		assert.Contains(t, result, "pending --> paid: pay")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := GenerateMermaidFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})
}
