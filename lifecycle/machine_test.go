package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// orderConfig declares a small order machine used across the package tests.
// The cancel transition is declared on two edges to cover per-edge routing.
func orderConfig() *Config {
	return &Config{
		Name:           "order",
		InitialState:   "pending",
		FailureState:   "canceled",
		TerminalStates: []string{"shipped", "canceled"},
		States: []StateConfig{
			{Name: "pending"},
			{Name: "paid"},
			{Name: "shipped"},
			{Name: "canceled"},
		},
		Transitions: []TransitionConfig{
			{Name: "pay", From: "pending", To: "paid"},
			{Name: "ship", From: "paid", To: "shipped"},
			{Name: "cancel", From: "pending", To: "canceled"},
			{Name: "cancel", From: "paid", To: "canceled"},
		},
	}
}

func newOrderMachine(t *testing.T) *Machine {
	t.Helper()

	machine, err := orderConfig().Machine()
	require.NoError(t, err)

	return machine
}

func TestMachineTarget(t *testing.T) {
	t.Parallel()

	machine := newOrderMachine(t)

	t.Run("declared edge", func(t *testing.T) {
		t.Parallel()

		to, err := machine.Target("pending", "pay")
		require.NoError(t, err)
		assert.Equal(t, State("paid"), to)
	})

	t.Run("same transition routes per edge", func(t *testing.T) {
		t.Parallel()

		to, err := machine.Target("pending", "cancel")
		require.NoError(t, err)
		assert.Equal(t, State("canceled"), to)

		to, err = machine.Target("paid", "cancel")
		require.NoError(t, err)
		assert.Equal(t, State("canceled"), to)
	})

	t.Run("undeclared edge", func(t *testing.T) {
		t.Parallel()

		_, err := machine.Target("pending", "ship")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		var invalidErr *InvalidTransitionError
		require.ErrorAs(t, err, &invalidErr)
		assert.Equal(t, "ship", invalidErr.Transition)
		assert.Equal(t, State("pending"), invalidErr.From)
	})

	t.Run("unknown transition name", func(t *testing.T) {
		t.Parallel()

		_, err := machine.Target("pending", "refund")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestMachineAccessors(t *testing.T) {
	t.Parallel()

	machine := newOrderMachine(t)

	assert.Equal(t, "order", machine.Name())
	assert.Equal(t, State("pending"), machine.Initial())
	assert.Equal(t, State("canceled"), machine.FailureState())

	assert.True(t, machine.HasState("paid"))
	assert.False(t, machine.HasState("refunded"))

	assert.True(t, machine.HasTransition("cancel"))
	assert.False(t, machine.HasTransition("refund"))

	assert.True(t, machine.IsTerminal("shipped"))
	assert.True(t, machine.IsTerminal("canceled"))
	assert.False(t, machine.IsTerminal("pending"))

	assert.True(t, machine.CanFire("paid", "ship"))
	assert.False(t, machine.CanFire("shipped", "ship"))
}

func TestMachineStatesSorted(t *testing.T) {
	t.Parallel()

	machine := newOrderMachine(t)

	assert.Equal(t, []State{"canceled", "paid", "pending", "shipped"}, machine.States())
	assert.Equal(t, []string{"cancel", "pay", "ship"}, machine.TransitionNames())
}

func TestMachineEdges(t *testing.T) {
	t.Parallel()

	machine := newOrderMachine(t)

	expected := []Transition{
		{Name: "cancel", From: "paid", To: "canceled"},
		{Name: "ship", From: "paid", To: "shipped"},
		{Name: "cancel", From: "pending", To: "canceled"},
		{Name: "pay", From: "pending", To: "paid"},
	}
	assert.Equal(t, expected, machine.Edges())
}

func TestMustMachine(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()

		machine := MustMachine(orderConfig())
		assert.Equal(t, "order", machine.Name())
	})

	t.Run("invalid config panics", func(t *testing.T) {
		t.Parallel()

		config := orderConfig()
		config.InitialState = "nowhere"

		require.Panics(t, func() {
			MustMachine(config)
		})
	})
}

func TestMachineImmutableAfterBuild(t *testing.T) {
	t.Parallel()

	config := orderConfig()
	machine, err := config.Machine()
	require.NoError(t, err)

	// Mutating the source config must not leak into the frozen machine.
	config.Transitions = append(config.Transitions, TransitionConfig{
		Name: "refund", From: "paid", To: "pending",
	})

	assert.False(t, machine.HasTransition("refund"))
	assert.False(t, machine.CanFire("paid", "refund"))
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	t.Parallel()

	err := &InvalidTransitionError{Transition: "ship", From: "pending"}

	assert.Equal(t, `transition "ship" from state "pending": invalid transition`, err.Error())
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}
