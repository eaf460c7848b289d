package command

import (
	"errors"

	"github.com/amp-labs/amp-lifecycle/lifecycle"
)

// ErrNameRequired is returned when a definition is created without a name.
var ErrNameRequired = errors.New("definition name is required")

// Definition holds the dispatch wiring for one command family: its machine,
// its callback registry, and the dispatcher runs are driven through. Create
// one per family at startup, register callbacks on it, then mint runs with
// NewRun. Registration is expected to finish before concurrent runs start.
type Definition struct {
	name       string
	machine    *lifecycle.Machine
	registry   *lifecycle.Registry[*Run]
	dispatcher *lifecycle.Dispatcher[*Run]
	logger     lifecycle.Logger
}

// DefinitionOption adjusts how a definition is built.
type DefinitionOption func(*definitionOptions)

type definitionOptions struct {
	machine *lifecycle.Machine
	logger  lifecycle.Logger
}

// WithMachine replaces the default five-state command machine. The machine
// must declare the four standard transition names for Run's phase methods to
// drive it.
func WithMachine(machine *lifecycle.Machine) DefinitionOption {
	return func(o *definitionOptions) {
		o.machine = machine
	}
}

// WithLogger sets the logger for dispatches of this family. The default logs
// through slog.
func WithLogger(logger lifecycle.Logger) DefinitionOption {
	return func(o *definitionOptions) {
		o.logger = logger
	}
}

// New creates a definition for a command family.
func New(name string, opts ...DefinitionOption) (*Definition, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	options := definitionOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	machine := options.machine
	if machine == nil {
		built, err := DefaultConfig(name).Machine()
		if err != nil {
			return nil, err
		}

		machine = built
	}

	logger := options.logger
	if logger == nil {
		logger = lifecycle.NewDefaultLogger()
	}

	registry := lifecycle.NewRegistry[*Run](machine)

	return &Definition{
		name:       name,
		machine:    machine,
		registry:   registry,
		dispatcher: lifecycle.NewDispatcher(name, machine, registry, logger),
		logger:     logger,
	}, nil
}

// MustNew creates a definition and panics on error. Intended for package-level
// family declarations.
func MustNew(name string, opts ...DefinitionOption) *Definition {
	def, err := New(name, opts...)
	if err != nil {
		panic(err)
	}

	return def
}

// Derive creates a child definition that shares this definition's machine and
// inherits its callbacks. Entries registered on the parent resolve ahead of
// the child's at equal priority; entries registered on the child stay
// invisible to the parent. The child keeps the parent's logger.
func (d *Definition) Derive(name string) (*Definition, error) {
	if name == "" {
		return nil, ErrNameRequired
	}

	registry := d.registry.Derive()

	return &Definition{
		name:       name,
		machine:    d.machine,
		registry:   registry,
		dispatcher: lifecycle.NewDispatcher(name, d.machine, registry, d.logger),
		logger:     d.logger,
	}, nil
}

// MustDerive creates a child definition and panics on error.
func (d *Definition) MustDerive(name string) *Definition {
	derived, err := d.Derive(name)
	if err != nil {
		panic(err)
	}

	return derived
}

// Name returns the family name.
func (d *Definition) Name() string {
	return d.name
}

// Machine returns the family's frozen machine.
func (d *Definition) Machine() *lifecycle.Machine {
	return d.machine
}
