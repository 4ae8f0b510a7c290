package builtin

import (
	"context"
	"image"
	"strconv"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/imaging"
)

// === Basic Actions ===

// Download returns the image unchanged. Combined with an output file of a
// different extension it converts between container formats.
func Download() action.Action {
	return action.New(action.Spec{
		Name:  "download",
		Short: "Download IMAGE.",
	}, func(_ context.Context, img *imaging.Handle, _ action.Values) (action.Result, error) {
		return action.ImageResult(img), nil
	})
}

// Info reports the dimensions, format, color depth and alpha of the image.
func Info() action.Action {
	return action.New(action.Spec{
		Name:  "info",
		Short: "Show the dimensions, format, color depth and alpha of IMAGE.",
	}, func(_ context.Context, img *imaging.Handle, _ action.Values) (action.Result, error) {
		return action.ValueResult(imaging.Info(img)), nil
	})
}

// === Tone Adjustment Actions ===

// levelAction builds an action taking a single VALUE argument in 0..hi.
func levelAction(name, short string, hi int, fn func(image.Image, int) *image.RGBA) action.Action {
	return action.New(action.Spec{
		Name:  name,
		Short: short,
		Long:  short + "\n\nVALUE ranges from 0 to " + strconv.Itoa(hi) + ".",
		Args: []action.Param{{
			Name:  "value",
			Kind:  action.KindInt,
			Range: intRange(0, hi),
			Usage: "strength, 0 to " + strconv.Itoa(hi),
		}},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		return imageResult(fn(img.Image, v.Int("value")))
	})
}

// Contrast adjusts contrast; 100 leaves the image unchanged.
func Contrast() action.Action {
	return levelAction("contrast", "Adjust contrast of IMAGE.", 200, imaging.Contrast)
}

// Brightness adjusts brightness; 100 leaves the image unchanged.
func Brightness() action.Action {
	return levelAction("brightness", "Adjust brightness of IMAGE.", 200, imaging.Brightness)
}

// Smooth blurs the image; 0 leaves it unchanged.
func Smooth() action.Action {
	return levelAction("smooth", "Smooth IMAGE using a gaussian filter.", 100, imaging.Smooth)
}

// Equalize blends the image with its histogram-equalized version.
func Equalize() action.Action {
	return levelAction("equalize", "Histogram equalization on IMAGE.", 100, imaging.Equalize)
}

// Denoise runs a median filter whose window grows with VALUE.
func Denoise() action.Action {
	return levelAction("denoise", "Denoise IMAGE.", 100, imaging.Denoise)
}
