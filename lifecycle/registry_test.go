package lifecycle

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopCallback(context.Context, *testSubject) error {
	return nil
}

func noopAround(ctx context.Context, _ *testSubject, proceed Proceed) (any, error) {
	return proceed(ctx)
}

func TestRegistryRegisterRejections(t *testing.T) {
	t.Parallel()

	machine := newOrderMachine(t)

	tests := []struct {
		name     string
		register func(r *Registry[*testSubject]) error
		contains string
	}{
		{
			name: "around kind via Register",
			register: func(r *Registry[*testSubject]) error {
				return r.Register(KindAround, Any(), noopCallback)
			},
			contains: "RegisterAround",
		},
		{
			name: "unknown kind",
			register: func(r *Registry[*testSubject]) error {
				return r.Register(Kind("sometimes"), Any(), noopCallback)
			},
			contains: "unknown callback kind",
		},
		{
			name: "nil callback",
			register: func(r *Registry[*testSubject]) error {
				return r.Register(KindBefore, Any(), nil)
			},
			contains: "callback must not be nil",
		},
		{
			name: "selector names undeclared transition",
			register: func(r *Registry[*testSubject]) error {
				return r.Register(KindBefore, On("refund"), noopCallback)
			},
			contains: "undeclared transition",
		},
		{
			name: "nil around callback",
			register: func(r *Registry[*testSubject]) error {
				return r.RegisterAround(Any(), nil)
			},
			contains: "callback must not be nil",
		},
		{
			name: "around selector names undeclared state",
			register: func(r *Registry[*testSubject]) error {
				return r.RegisterAround(From("limbo"), noopAround)
			},
			contains: "undeclared source state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			registry := NewRegistry[*testSubject](machine)

			err := tt.register(registry)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestRegistryResolveFiltersByKind(t *testing.T) {
	t.Parallel()

	machine := newOrderMachine(t)
	registry := NewRegistry[*testSubject](machine)

	require.NoError(t, registry.Register(KindBefore, On("pay"), noopCallback))
	require.NoError(t, registry.Register(KindAfter, On("pay"), noopCallback))
	require.NoError(t, registry.RegisterAround(On("pay"), noopAround))

	befores := registry.resolve(KindBefore, "pay", "pending", "paid")
	require.Len(t, befores, 1)
	assert.Equal(t, KindBefore, befores[0].kind)

	afters := registry.resolve(KindAfter, "pay", "pending", "paid")
	require.Len(t, afters, 1)
	assert.Equal(t, KindAfter, afters[0].kind)

	arounds := registry.resolve(KindAround, "pay", "pending", "paid")
	require.Len(t, arounds, 1)
	assert.Equal(t, KindAround, arounds[0].kind)

	assert.Empty(t, registry.resolve(KindBefore, "ship", "paid", "shipped"))
}

func TestRegistryResolveSortsByPriorityThenOrder(t *testing.T) {
	t.Parallel()

	machine := newOrderMachine(t)
	registry := NewRegistry[*testSubject](machine)

	require.NoError(t, registry.Register(KindBefore, On("pay"), noopCallback,
		WithName("late"), WithPriority(90)))
	require.NoError(t, registry.Register(KindBefore, On("pay"), noopCallback,
		WithName("default-a")))
	require.NoError(t, registry.Register(KindBefore, On("pay"), noopCallback,
		WithName("early"), WithPriority(10)))
	require.NoError(t, registry.Register(KindBefore, On("pay"), noopCallback,
		WithName("default-b")))

	entries := registry.resolve(KindBefore, "pay", "pending", "paid")
	require.Len(t, entries, 4)

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}

	assert.Equal(t, []string{"early", "default-a", "default-b", "late"}, names)
}

func TestRegistryEntryNames(t *testing.T) {
	t.Parallel()

	machine := newOrderMachine(t)
	registry := NewRegistry[*testSubject](machine)

	require.NoError(t, registry.Register(KindBefore, On("pay"), noopCallback,
		WithName("check-inventory")))
	require.NoError(t, registry.Register(KindAfter, On("pay"), noopCallback))

	befores := registry.resolve(KindBefore, "pay", "pending", "paid")
	require.Len(t, befores, 1)
	assert.Equal(t, "check-inventory", befores[0].name)

	afters := registry.resolve(KindAfter, "pay", "pending", "paid")
	require.Len(t, afters, 1)
	assert.True(t, strings.HasPrefix(afters[0].name, "after(pay)#"),
		"unexpected default name %q", afters[0].name)
}

func TestRegistryDeriveKeepsMachine(t *testing.T) {
	t.Parallel()

	machine := newOrderMachine(t)
	base := NewRegistry[*testSubject](machine)
	derived := base.Derive()

	// The derived registry validates selectors against the same machine.
	err := derived.Register(KindBefore, On("refund"), noopCallback)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)

	require.NoError(t, base.Register(KindBefore, On("pay"), noopCallback, WithName("base")))
	require.NoError(t, derived.Register(KindBefore, On("pay"), noopCallback, WithName("derived")))

	merged := derived.resolve(KindBefore, "pay", "pending", "paid")
	require.Len(t, merged, 2)
	assert.Equal(t, "base", merged[0].name)
	assert.Equal(t, "derived", merged[1].name)

	baseOnly := base.resolve(KindBefore, "pay", "pending", "paid")
	require.Len(t, baseOnly, 1)
	assert.Equal(t, "base", baseOnly[0].name)
}
