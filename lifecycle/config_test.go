package lifecycle

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderYAML = `
name: order
initialState: pending
failureState: canceled
terminalStates:
  - shipped
  - canceled
states:
  - name: pending
    description: Awaiting payment
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

func TestLoadConfigFromBytes(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()

		config, err := LoadConfigFromBytes([]byte(orderYAML))
		require.NoError(t, err)

		assert.Equal(t, "order", config.Name)
		assert.Equal(t, "pending", config.InitialState)
		assert.Equal(t, "canceled", config.FailureState)
		assert.Len(t, config.States, 4)
		assert.Len(t, config.Transitions, 4)
		assert.Equal(t, "Awaiting payment", config.States[0].Description)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFromBytes([]byte("{{{not yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML")
	})

	t.Run("well formed but invalid", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFromBytes([]byte("name: order"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInitialStateRequired)
	})
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	t.Run("existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "order.yaml")
		require.NoError(t, os.WriteFile(path, []byte(orderYAML), 0o600))

		config, err := LoadConfigFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "order", config.Name)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})
}

func TestLoadConfigFromFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"machines/order.yaml": &fstest.MapFile{Data: []byte(orderYAML)},
	}

	config, err := LoadConfigFromFS(fsys, "machines/order.yaml")
	require.NoError(t, err)
	assert.Equal(t, "order", config.Name)

	_, err = LoadConfigFromFS(fsys, "machines/missing.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config from FS")
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{
			name:   "missing name",
			mutate: func(c *Config) { c.Name = "" },
			want:   ErrMachineNameRequired,
		},
		{
			name:   "missing initial state",
			mutate: func(c *Config) { c.InitialState = "" },
			want:   ErrInitialStateRequired,
		},
		{
			name:   "missing failure state",
			mutate: func(c *Config) { c.FailureState = "" },
			want:   ErrFailureStateRequired,
		},
		{
			name:   "no states",
			mutate: func(c *Config) { c.States = nil },
			want:   ErrStateRequired,
		},
		{
			name:   "no terminal states",
			mutate: func(c *Config) { c.TerminalStates = nil },
			want:   ErrTerminalStateRequired,
		},
		{
			name:   "blank state name",
			mutate: func(c *Config) { c.States[0].Name = "" },
			want:   ErrStateNameRequired,
		},
		{
			name: "duplicate state name",
			mutate: func(c *Config) {
				c.States = append(c.States, StateConfig{Name: "paid"})
			},
			want: ErrDuplicateStateName,
		},
		{
			name:   "initial state not declared",
			mutate: func(c *Config) { c.InitialState = "nowhere" },
			want:   ErrInitialStateNotFound,
		},
		{
			name:   "failure state not declared",
			mutate: func(c *Config) { c.FailureState = "nowhere" },
			want:   ErrFailureStateNotFound,
		},
		{
			name:   "failure state not terminal",
			mutate: func(c *Config) { c.FailureState = "pending" },
			want:   ErrFailureStateNotTerminal,
		},
		{
			name: "terminal state not declared",
			mutate: func(c *Config) {
				c.TerminalStates = append(c.TerminalStates, "nowhere")
			},
			want: ErrTerminalStateNotFound,
		},
		{
			name:   "transition name missing",
			mutate: func(c *Config) { c.Transitions[0].Name = "" },
			want:   ErrTransitionNameRequired,
		},
		{
			name:   "transition source missing",
			mutate: func(c *Config) { c.Transitions[0].From = "" },
			want:   ErrTransitionFromRequired,
		},
		{
			name:   "transition destination missing",
			mutate: func(c *Config) { c.Transitions[0].To = "" },
			want:   ErrTransitionToRequired,
		},
		{
			name:   "transition source not declared",
			mutate: func(c *Config) { c.Transitions[0].From = "nowhere" },
			want:   ErrTransitionFromNotFound,
		},
		{
			name:   "transition destination not declared",
			mutate: func(c *Config) { c.Transitions[0].To = "nowhere" },
			want:   ErrTransitionToNotFound,
		},
		{
			name: "duplicate edge",
			mutate: func(c *Config) {
				c.Transitions = append(c.Transitions, TransitionConfig{
					Name: "pay", From: "pending", To: "paid",
				})
			},
			want: ErrDuplicateTransition,
		},
		{
			name: "terminal state with outgoing edge",
			mutate: func(c *Config) {
				c.Transitions = append(c.Transitions, TransitionConfig{
					Name: "reopen", From: "shipped", To: "pending",
				})
			},
			want: ErrTerminalStateOutgoing,
		},
		{
			name: "unreachable state",
			mutate: func(c *Config) {
				c.States = append(c.States, StateConfig{Name: "limbo"})
			},
			want: ErrStateUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config := orderConfig()
			tt.mutate(config)

			err := config.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfigValidateReportsAllFindings(t *testing.T) {
	t.Parallel()

	err := (&Config{}).Validate()
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrMachineNameRequired)
	assert.ErrorIs(t, err, ErrInitialStateRequired)
	assert.ErrorIs(t, err, ErrFailureStateRequired)
	assert.ErrorIs(t, err, ErrStateRequired)
	assert.ErrorIs(t, err, ErrTerminalStateRequired)
}

func TestConfigValidateAcceptsValid(t *testing.T) {
	t.Parallel()

	require.NoError(t, orderConfig().Validate())
}

func TestConfigNormalizesNames(t *testing.T) {
	t.Parallel()

	// The state is declared in decomposed form while the transition refers to
	// the composed form. NFC normalization makes them compare equal.
	config := &Config{
		Name:           "café",
		InitialState:   "ouvré", // decomposed form of "ouvré"
		FailureState:   "ferme",
		TerminalStates: []string{"servi", "ferme"},
		States: []StateConfig{
			{Name: "ouvré"}, // composed form
			{Name: "servi"},
			{Name: "ferme"},
		},
		Transitions: []TransitionConfig{
			{Name: "servir", From: "ouvré", To: "servi"},
			{Name: "fermer", From: "ouvré", To: "ferme"},
		},
	}

	machine, err := config.Machine()
	require.NoError(t, err)

	assert.Equal(t, State("ouvré"), machine.Initial())
	assert.True(t, machine.HasState("ouvré"))
	assert.True(t, machine.CanFire("ouvré", "fermer"))
}
