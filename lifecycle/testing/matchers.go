package testing

import (
	"errors"
	"fmt"
	"time"

	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

// Matcher errors.
var (
	ErrNoTrace            = errors.New("no dispatch trace recorded")
	ErrNoRunExecuted      = errors.New("no run executed")
	ErrRunDidNotFail      = errors.New("run completed without failure")
	ErrNoMatchersPassed   = errors.New("no matchers passed")
	ErrStateNotVisited    = errors.New("state was not visited")
	ErrTransitionNotTaken = errors.New("transition was not taken")
	ErrCallbackNotRun     = errors.New("callback did not run")
	ErrDispatchTooSlow    = errors.New("dispatches exceeded time limit")
)

// Matcher validates one aspect of a recorded execution.
type Matcher interface {
	Match(def *TestDefinition) (bool, error)
	Description() string
}

// StateWasVisited creates a matcher that checks if a state was visited.
func StateWasVisited(state lifecycle.State) Matcher {
	return &stateVisitedMatcher{state: state}
}

type stateVisitedMatcher struct {
	state lifecycle.State
}

func (m *stateVisitedMatcher) Match(def *TestDefinition) (bool, error) {
	trace := def.trace.snapshot()
	if len(trace) == 0 {
		return false, ErrNoTrace
	}

	if !stateVisited(trace, m.state) {
		return false, fmt.Errorf("%w: '%s'", ErrStateNotVisited, m.state)
	}

	return true, nil
}

func (m *stateVisitedMatcher) Description() string {
	return fmt.Sprintf("state '%s' should be visited", m.state)
}

// TransitionWasTaken creates a matcher that checks if a transition completed.
func TransitionWasTaken(transition string) Matcher {
	return &transitionTakenMatcher{transition: transition}
}

type transitionTakenMatcher struct {
	transition string
}

func (m *transitionTakenMatcher) Match(def *TestDefinition) (bool, error) {
	trace := def.trace.snapshot()
	if len(trace) == 0 {
		return false, ErrNoTrace
	}

	if !transitionTaken(trace, m.transition) {
		return false, fmt.Errorf("%w: '%s'", ErrTransitionNotTaken, m.transition)
	}

	return true, nil
}

func (m *transitionTakenMatcher) Description() string {
	return fmt.Sprintf("transition '%s' should be taken", m.transition)
}

// CallbackRan creates a matcher that checks if a named callback executed.
func CallbackRan(name string) Matcher {
	return &callbackRanMatcher{name: name}
}

type callbackRanMatcher struct {
	name string
}

func (m *callbackRanMatcher) Match(def *TestDefinition) (bool, error) {
	trace := def.trace.snapshot()
	if len(trace) == 0 {
		return false, ErrNoTrace
	}

	if !callbackRan(trace, m.name) {
		return false, fmt.Errorf("%w: '%s'", ErrCallbackNotRun, m.name)
	}

	return true, nil
}

func (m *callbackRanMatcher) Description() string {
	return fmt.Sprintf("callback '%s' should run", m.name)
}

// RunSucceeded creates a matcher that checks the last run finished successfully.
func RunSucceeded() Matcher {
	return &runSucceededMatcher{}
}

type runSucceededMatcher struct{}

func (m *runSucceededMatcher) Match(def *TestDefinition) (bool, error) {
	run := def.lastRun
	if run == nil {
		return false, ErrNoRunExecuted
	}

	if !run.Succeeded() {
		if err := run.Err(); err != nil {
			return false, fmt.Errorf("run failed: %w", err)
		}

		return false, fmt.Errorf("run stopped in state '%s'", run.State())
	}

	return true, nil
}

func (m *runSucceededMatcher) Description() string {
	return "run should succeed"
}

// RunFailed creates a matcher that checks the last run ended in failure.
func RunFailed() Matcher {
	return &runFailedMatcher{}
}

type runFailedMatcher struct{}

func (m *runFailedMatcher) Match(def *TestDefinition) (bool, error) {
	run := def.lastRun
	if run == nil {
		return false, ErrNoRunExecuted
	}

	if !run.Failed() {
		return false, ErrRunDidNotFail
	}

	return true, nil
}

func (m *runFailedMatcher) Description() string {
	return "run should fail"
}

// DispatchesTookLessThan creates a matcher that checks total dispatch duration.
func DispatchesTookLessThan(duration time.Duration) Matcher {
	return &dispatchDurationMatcher{maxDuration: duration}
}

type dispatchDurationMatcher struct {
	maxDuration time.Duration
}

func (m *dispatchDurationMatcher) Match(def *TestDefinition) (bool, error) {
	total := dispatchDuration(def.trace.snapshot())
	if total > m.maxDuration {
		return false, fmt.Errorf("%w: took %s, max %s", ErrDispatchTooSlow, total, m.maxDuration)
	}

	return true, nil
}

func (m *dispatchDurationMatcher) Description() string {
	return fmt.Sprintf("dispatches should take less than %s", m.maxDuration)
}

// All creates a matcher that requires all sub-matchers to pass.
func All(matchers ...Matcher) Matcher {
	return &allMatcher{matchers: matchers}
}

type allMatcher struct {
	matchers []Matcher
}

func (m *allMatcher) Match(def *TestDefinition) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(def)
		if !matched || err != nil {
			return false, err
		}
	}

	return true, nil
}

func (m *allMatcher) Description() string {
	return "all matchers should pass"
}

// Any creates a matcher that requires at least one sub-matcher to pass.
func Any(matchers ...Matcher) Matcher {
	return &anyMatcher{matchers: matchers}
}

type anyMatcher struct {
	matchers []Matcher
}

func (m *anyMatcher) Match(def *TestDefinition) (bool, error) {
	for _, matcher := range m.matchers {
		matched, err := matcher.Match(def)
		if matched && err == nil {
			return true, nil
		}
	}

	return false, ErrNoMatchersPassed
}

func (m *anyMatcher) Description() string {
	return "at least one matcher should pass"
}
