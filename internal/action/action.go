// Package action defines the named image operations the command line and
// the pipeline dispatch to: their parameter contracts, the registry that
// holds them, and the binding of raw values to typed parameters.
//
// An action receives a decoded image and returns either a new image or a
// JSON-able value. Nothing is encoded inside an action; the caller decides
// how the final result is written.
package action

import (
	"context"

	"github.com/ironsheep/image-tools/internal/imaging"
)

// Result is the raw output of an action: either an image or a JSON-able
// value, never both. Results are not encoded until the final serialization.
type Result struct {
	Image *imaging.Handle
	Value any
}

// IsImage reports whether r carries an image.
func (r Result) IsImage() bool {
	return r.Image != nil
}

// ImageResult wraps a computed image as a Result.
func ImageResult(img *imaging.Handle) Result {
	return Result{Image: img}
}

// ValueResult wraps a JSON-able value as a Result.
func ValueResult(v any) Result {
	return Result{Value: v}
}

// Action is a named image operation.
type Action interface {
	// Spec returns the parameter contract. It must not change after
	// registration.
	Spec() *Spec

	// Apply runs the action on img with bound and validated values.
	Apply(ctx context.Context, img *imaging.Handle, v Values) (Result, error)
}

// Func is the signature of an action body.
type Func func(ctx context.Context, img *imaging.Handle, v Values) (Result, error)

type funcAction struct {
	spec *Spec
	fn   Func
}

// New returns an Action backed by fn.
func New(spec Spec, fn Func) Action {
	return &funcAction{spec: &spec, fn: fn}
}

func (a *funcAction) Spec() *Spec { return a.spec }

func (a *funcAction) Apply(ctx context.Context, img *imaging.Handle, v Values) (Result, error) {
	return a.fn(ctx, img, v)
}
