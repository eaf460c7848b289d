package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amp-labs/amp-lifecycle/command"
	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

// Scenario describes a complete command execution to run and verify.
type Scenario struct {
	Name     string
	Config   *lifecycle.Config
	Handler  command.Handler
	RunOpts  []command.RunOption
	Register func(t *testing.T, def *TestDefinition)
	Matchers []Matcher
}

// RunScenario executes a scenario and applies its matchers.
func RunScenario(t *testing.T, scenario Scenario) {
	t.Helper()
	t.Run(scenario.Name, func(t *testing.T) {
		t.Parallel()

		var def *TestDefinition
		if scenario.Config != nil {
			def = NewTestDefinitionWithConfig(t, UniqueName(scenario.Name), scenario.Config)
		} else {
			def = NewTestDefinition(t, UniqueName(scenario.Name))
		}

		if scenario.Register != nil {
			scenario.Register(t, def)
		}

		_, err := def.Execute(context.Background(), scenario.Handler, scenario.RunOpts...)
		require.NoError(t, err, "scenario execution hit a structural error")

		def.Check(scenario.Matchers...)
	})
}

// HappyPathScenario exercises a full validate, execute, succeed pass.
func HappyPathScenario() Scenario {
	return Scenario{
		Name:    "happy path",
		Handler: StaticHandler("done"),
		Matchers: []Matcher{
			RunSucceeded(),
			TransitionWasTaken(command.TransitionExecute),
			StateWasVisited(command.StateExecuting),
		},
	}
}

// HandlerFailureScenario exercises routing to the failure state on handler error.
func HandlerFailureScenario() Scenario {
	return Scenario{
		Name:    "handler failure",
		Handler: FailingHandler(ErrInjectedFailure),
		Matchers: []Matcher{
			RunFailed(),
			TransitionWasTaken(command.TransitionFail),
			StateWasVisited(command.StateFailed),
		},
	}
}

// ValidationFailureScenario exercises rejection before the handler runs.
func ValidationFailureScenario() Scenario {
	return Scenario{
		Name:    "validation failure",
		Handler: StaticHandler("unreachable"),
		RunOpts: []command.RunOption{
			command.WithValidation(RejectingValidation(ErrInjectedFailure)),
		},
		Matchers: []Matcher{
			RunFailed(),
			TransitionWasTaken(command.TransitionFail),
			StateWasVisited(command.StateFailed),
		},
	}
}
