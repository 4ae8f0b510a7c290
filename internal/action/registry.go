package action

import (
	"sort"

	"github.com/pkg/errors"
)

// PipelineName is the meta-command that chains actions. It can never be
// registered as an action.
const PipelineName = "pipeline"

// Registry maps action names to actions. It is built once at startup and
// only read afterwards.
type Registry struct {
	actions map[string]Action
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds a after validating its spec. Names must be unique.
func (r *Registry) Register(a Action) error {
	spec := a.Spec()
	if err := spec.Validate(); err != nil {
		return errors.Wrap(err, "unable to register action")
	}
	if spec.Name == PipelineName {
		return errors.Errorf("action name %q is reserved", spec.Name)
	}
	if _, ok := r.actions[spec.Name]; ok {
		return errors.Errorf("action %q is already registered", spec.Name)
	}
	r.actions[spec.Name] = a
	r.order = append(r.order, spec.Name)
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(actions ...Action) {
	for _, a := range actions {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the action registered under name. Lookup is exact and
// case-sensitive.
func (r *Registry) Lookup(name string) (Action, bool) {
	a, ok := r.actions[name]
	return a, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}

// Actions returns the registered actions in registration order.
func (r *Registry) Actions() []Action {
	out := make([]Action, len(r.order))
	for i, name := range r.order {
		out[i] = r.actions[name]
	}
	return out
}

// Len returns the number of registered actions.
func (r *Registry) Len() int {
	return len(r.order)
}
