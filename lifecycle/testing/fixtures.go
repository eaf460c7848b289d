package testing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amp-labs/amp-lifecycle/command"
	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

// ErrInjectedFailure is the canned error injected by failure fixtures.
var ErrInjectedFailure = errors.New("injected failure")

// UniqueName returns a collision-free definition name for parallel tests.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

// StaticHandler returns a handler that always yields result.
func StaticHandler(result any) command.Handler {
	return func(context.Context, *command.Run) (any, error) {
		return result, nil
	}
}

// FailingHandler returns a handler that always fails with err.
func FailingHandler(err error) command.Handler {
	return func(context.Context, *command.Run) (any, error) {
		return nil, err
	}
}

// SlowHandler returns a handler that waits for delay before yielding result.
func SlowHandler(delay time.Duration, result any) command.Handler {
	return func(ctx context.Context, _ *command.Run) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			return result, nil
		}
	}
}

// RejectingValidation returns a validation callback that always fails with err.
func RejectingValidation(err error) command.Callback {
	return func(context.Context, *command.Run) error {
		return err
	}
}

// CommonConfigs provides frequently used machine configurations.
//
//nolint:gochecknoglobals // Shared fixture table
var CommonConfigs = struct {
	Command  func(name string) *lifecycle.Config
	Document func() *lifecycle.Config
	Payment  func() *lifecycle.Config
}{
	Command: command.DefaultConfig,
	Document: func() *lifecycle.Config {
		return &lifecycle.Config{
			Name:           "document",
			InitialState:   "draft",
			FailureState:   "rejected",
			TerminalStates: []string{"published", "rejected"},
			States: []lifecycle.StateConfig{
				{Name: "draft"},
				{Name: "reviewing"},
				{Name: "publishing"},
				{Name: "published"},
				{Name: "rejected"},
			},
			Transitions: []lifecycle.TransitionConfig{
				{Name: command.TransitionValidate, From: "draft", To: "reviewing"},
				{Name: command.TransitionExecute, From: "reviewing", To: "publishing"},
				{Name: command.TransitionSucceed, From: "publishing", To: "published"},
				{Name: command.TransitionFail, From: "draft", To: "rejected"},
				{Name: command.TransitionFail, From: "reviewing", To: "rejected"},
				{Name: command.TransitionFail, From: "publishing", To: "rejected"},
			},
		}
	},
	Payment: func() *lifecycle.Config {
		return &lifecycle.Config{
			Name:           "payment",
			InitialState:   "created",
			FailureState:   "voided",
			TerminalStates: []string{"settled", "voided"},
			States: []lifecycle.StateConfig{
				{Name: "created"},
				{Name: "authorizing"},
				{Name: "capturing"},
				{Name: "settled"},
				{Name: "voided"},
			},
			Transitions: []lifecycle.TransitionConfig{
				{Name: command.TransitionValidate, From: "created", To: "authorizing"},
				{Name: command.TransitionExecute, From: "authorizing", To: "capturing"},
				{Name: command.TransitionSucceed, From: "capturing", To: "settled"},
				{Name: command.TransitionFail, From: "created", To: "voided"},
				{Name: command.TransitionFail, From: "authorizing", To: "voided"},
				{Name: command.TransitionFail, From: "capturing", To: "voided"},
			},
		}
	},
}
