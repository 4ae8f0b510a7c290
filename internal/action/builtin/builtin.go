// Package builtin provides the image actions shipped with image-tools.
package builtin

import (
	"image"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/imaging"
)

// Register adds every built-in action to reg. src resolves the extra images
// some actions take as arguments, such as match templates.
func Register(reg *action.Registry, src *imaging.Source) error {
	all := []action.Action{
		Download(),
		Info(),
		Contrast(),
		Brightness(),
		Smooth(),
		Equalize(),
		Denoise(),
		Posterize(),
		Palette(),
		Histogram(),
		Sample(),
		Select(),
		Match(src),
		Binarize(),
		Dilate(),
		Edges(),
		Blobs(),
		Ridges(),
		Crop(),
		Grid(),
		OCR(),
	}
	for _, a := range all {
		if err := reg.Register(a); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding every built-in action.
func NewRegistry(src *imaging.Source) (*action.Registry, error) {
	reg := action.NewRegistry()
	if err := Register(reg, src); err != nil {
		return nil, err
	}
	return reg, nil
}

// imageResult wraps a computed image as an action result.
func imageResult(img image.Image) (action.Result, error) {
	h, err := imaging.Derive(img)
	if err != nil {
		return action.Result{}, err
	}
	return action.ImageResult(h), nil
}

// intRange is a shorthand for an inclusive integer range.
func intRange(lo, hi int) *action.Range {
	return &action.Range{Min: float64(lo), Max: float64(hi)}
}
