package pipeline

import (
	"context"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/imaging"
	"github.com/ironsheep/image-tools/internal/logging"
)

// Executor runs steps against the actions of a registry.
type Executor struct {
	registry *action.Registry
}

// NewExecutor returns an executor dispatching to reg.
func NewExecutor(reg *action.Registry) *Executor {
	return &Executor{registry: reg}
}

type boundStep struct {
	action action.Action
	values action.Values
}

// Run applies steps to seed in order and returns the last result.
//
// Every step is looked up and bound before the first one runs, so an
// unknown action or a bad parameter anywhere in the list fails without doing
// any work. Values are bound in clamp mode: numbers outside their range are
// clamped rather than rejected. Output options in a step are ignored; the
// result stays raw until the caller serializes it. An empty list returns the
// seed unchanged.
//
// All failures are *action.ParameterError.
func (e *Executor) Run(ctx context.Context, seed *imaging.Handle, steps []Step) (action.Result, error) {
	bound, err := e.bind(steps)
	if err != nil {
		return action.Result{}, err
	}

	result := action.ImageResult(seed)
	for i, st := range bound {
		if err := ctx.Err(); err != nil {
			return action.Result{}, action.AsParameterError(err)
		}
		if !result.IsImage() {
			return action.Result{}, action.Errorf(
				"Action %q cannot run on the non-image result of %q.", steps[i].Action, steps[i-1].Action)
		}

		logging.Debug("Running pipeline step", "step", i+1, "action", steps[i].Action)
		result, err = st.action.Apply(ctx, result.Image, st.values)
		if err != nil {
			return action.Result{}, action.AsParameterError(err)
		}
	}
	return result, nil
}

func (e *Executor) bind(steps []Step) ([]boundStep, error) {
	bound := make([]boundStep, len(steps))
	for i, st := range steps {
		a, ok := e.registry.Lookup(st.Action)
		if !ok {
			return nil, action.Errorf("Action %q not found.", st.Action)
		}

		opts := make(map[string]any, len(st.Options))
		for k, v := range st.Options {
			if k == action.ReservedOutput || k == action.ReservedFormat {
				logging.Debug("Ignoring output option in pipeline step", "step", i+1, "option", k)
				continue
			}
			opts[k] = v
		}

		values, err := action.Bind(a.Spec(), action.Input{Args: st.Arguments, Options: opts}, action.ModeClamp)
		if err != nil {
			return nil, action.AsParameterError(err)
		}
		bound[i] = boundStep{action: a, values: values}
	}
	return bound, nil
}
