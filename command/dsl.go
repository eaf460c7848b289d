package command

import (
	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

// Registration DSL. Every method appends an entry to the family's registry
// and reports a ConfigurationError for a selector naming an undeclared
// transition or state. Entries run in ascending (priority, registration
// order); for around callbacks that order decides nesting, first is
// outermost.

// BeforeValidate registers a callback ahead of the validate transition.
func (d *Definition) BeforeValidate(cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindBefore, lifecycle.On(TransitionValidate), cb, opts...)
}

// BeforeExecute registers a callback ahead of the execute transition.
func (d *Definition) BeforeExecute(cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindBefore, lifecycle.On(TransitionExecute), cb, opts...)
}

// BeforeSucceed registers a callback ahead of the succeed transition.
func (d *Definition) BeforeSucceed(cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindBefore, lifecycle.On(TransitionSucceed), cb, opts...)
}

// BeforeFail registers a callback ahead of the fail transition.
func (d *Definition) BeforeFail(cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindBefore, lifecycle.On(TransitionFail), cb, opts...)
}

// AfterValidate registers a callback behind the validate transition.
func (d *Definition) AfterValidate(cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindAfter, lifecycle.On(TransitionValidate), cb, opts...)
}

// AfterExecute registers a callback behind the execute transition.
func (d *Definition) AfterExecute(cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindAfter, lifecycle.On(TransitionExecute), cb, opts...)
}

// AfterSucceed registers a callback behind the succeed transition.
func (d *Definition) AfterSucceed(cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindAfter, lifecycle.On(TransitionSucceed), cb, opts...)
}

// AfterFail registers a callback behind the fail transition.
func (d *Definition) AfterFail(cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindAfter, lifecycle.On(TransitionFail), cb, opts...)
}

// AroundValidate registers a callback wrapping the validate transition.
func (d *Definition) AroundValidate(cb AroundCallback, opts ...RegisterOption) error {
	return d.registry.RegisterAround(lifecycle.On(TransitionValidate), cb, opts...)
}

// AroundExecute registers a callback wrapping the execute transition.
func (d *Definition) AroundExecute(cb AroundCallback, opts ...RegisterOption) error {
	return d.registry.RegisterAround(lifecycle.On(TransitionExecute), cb, opts...)
}

// AroundSucceed registers a callback wrapping the succeed transition.
func (d *Definition) AroundSucceed(cb AroundCallback, opts ...RegisterOption) error {
	return d.registry.RegisterAround(lifecycle.On(TransitionSucceed), cb, opts...)
}

// AroundFail registers a callback wrapping the fail transition.
func (d *Definition) AroundFail(cb AroundCallback, opts ...RegisterOption) error {
	return d.registry.RegisterAround(lifecycle.On(TransitionFail), cb, opts...)
}

// BeforeTransitionFrom registers a callback ahead of every transition leaving
// the state.
func (d *Definition) BeforeTransitionFrom(state lifecycle.State, cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindBefore, lifecycle.From(state), cb, opts...)
}

// AfterTransitionFrom registers a callback behind every transition leaving
// the state.
func (d *Definition) AfterTransitionFrom(state lifecycle.State, cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindAfter, lifecycle.From(state), cb, opts...)
}

// AroundTransitionFrom registers a callback wrapping every transition leaving
// the state.
func (d *Definition) AroundTransitionFrom(state lifecycle.State, cb AroundCallback, opts ...RegisterOption) error {
	return d.registry.RegisterAround(lifecycle.From(state), cb, opts...)
}

// BeforeTransitionTo registers a callback ahead of every transition entering
// the state.
func (d *Definition) BeforeTransitionTo(state lifecycle.State, cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindBefore, lifecycle.To(state), cb, opts...)
}

// AfterTransitionTo registers a callback behind every transition entering the
// state.
func (d *Definition) AfterTransitionTo(state lifecycle.State, cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindAfter, lifecycle.To(state), cb, opts...)
}

// AroundTransitionTo registers a callback wrapping every transition entering
// the state.
func (d *Definition) AroundTransitionTo(state lifecycle.State, cb AroundCallback, opts ...RegisterOption) error {
	return d.registry.RegisterAround(lifecycle.To(state), cb, opts...)
}

// BeforeAnyTransition registers a callback ahead of every transition.
func (d *Definition) BeforeAnyTransition(cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindBefore, lifecycle.Any(), cb, opts...)
}

// AfterAnyTransition registers a callback behind every transition.
func (d *Definition) AfterAnyTransition(cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindAfter, lifecycle.Any(), cb, opts...)
}

// AroundAnyTransition registers a callback wrapping every transition.
func (d *Definition) AroundAnyTransition(cb AroundCallback, opts ...RegisterOption) error {
	return d.registry.RegisterAround(lifecycle.Any(), cb, opts...)
}

// BeforeTransition registers a callback ahead of the transitions matching the
// selector. Combine lifecycle.On, From, and To for compound selectors; a zero
// selector matches everything.
func (d *Definition) BeforeTransition(sel lifecycle.Selector, cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindBefore, sel, cb, opts...)
}

// AfterTransition registers a callback behind the transitions matching the
// selector.
func (d *Definition) AfterTransition(sel lifecycle.Selector, cb Callback, opts ...RegisterOption) error {
	return d.registry.Register(lifecycle.KindAfter, sel, cb, opts...)
}

// AroundTransition registers a callback wrapping the transitions matching the
// selector.
func (d *Definition) AroundTransition(sel lifecycle.Selector, cb AroundCallback, opts ...RegisterOption) error {
	return d.registry.RegisterAround(sel, cb, opts...)
}
