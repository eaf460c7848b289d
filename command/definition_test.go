package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("name required", func(t *testing.T) {
		t.Parallel()

		_, err := New("")
		require.ErrorIs(t, err, ErrNameRequired)
	})

	t.Run("default machine", func(t *testing.T) {
		t.Parallel()

		def, err := New("CreateUser")
		require.NoError(t, err)

		assert.Equal(t, "CreateUser", def.Name())
		assert.Equal(t, StateInitialized, def.Machine().Initial())
		assert.Equal(t, StateFailed, def.Machine().FailureState())
	})
}

func TestMustNew(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		MustNew("")
	})

	def := MustNew("CreateUser")
	assert.Equal(t, "CreateUser", def.Name())
}

func TestNewWithMachine(t *testing.T) {
	t.Parallel()

	// A custom machine renames every state but keeps the four standard
	// transition names, so Run's phase methods can still drive it.
	config := &lifecycle.Config{
		Name:           "ImportJob",
		InitialState:   "draft",
		FailureState:   "broken",
		TerminalStates: []string{"done", "broken"},
		States: []lifecycle.StateConfig{
			{Name: "draft"},
			{Name: "checking"},
			{Name: "working"},
			{Name: "done"},
			{Name: "broken"},
		},
		Transitions: []lifecycle.TransitionConfig{
			{Name: TransitionValidate, From: "draft", To: "checking"},
			{Name: TransitionExecute, From: "checking", To: "working"},
			{Name: TransitionSucceed, From: "working", To: "done"},
			{Name: TransitionFail, From: "draft", To: "broken"},
			{Name: TransitionFail, From: "checking", To: "broken"},
			{Name: TransitionFail, From: "working", To: "broken"},
		},
	}

	def, err := New("ImportJob", WithMachine(lifecycle.MustMachine(config)))
	require.NoError(t, err)

	run := def.NewRun(func(context.Context, *Run) (any, error) {
		return 128, nil
	})

	assert.Equal(t, lifecycle.State("draft"), run.State())

	require.NoError(t, run.Execute(context.Background()))
	assert.Equal(t, lifecycle.State("done"), run.State())
	assert.True(t, run.Succeeded())
	assert.Equal(t, 128, run.Result())
}

func TestDerive(t *testing.T) {
	t.Parallel()

	t.Run("name required", func(t *testing.T) {
		t.Parallel()

		def := newTestDefinition(t, "CreateUser")

		_, err := def.Derive("")
		require.ErrorIs(t, err, ErrNameRequired)

		require.Panics(t, func() {
			def.MustDerive("")
		})
	})

	t.Run("shares machine", func(t *testing.T) {
		t.Parallel()

		parent := newTestDefinition(t, "CreateUser")
		child := parent.MustDerive("AdminCreateUser")

		assert.Equal(t, "AdminCreateUser", child.Name())
		assert.Same(t, parent.Machine(), child.Machine())
	})
}
