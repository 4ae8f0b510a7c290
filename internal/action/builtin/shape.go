package builtin

import (
	"context"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/imaging"
)

// === Shape Removal ===

const maxArea = 1 << 30

// Blobs removes small dark connected regions, such as specks and labels.
func Blobs() action.Action {
	return action.New(action.Spec{
		Name:  "blobs",
		Short: "Remove the dark blobs of IMAGE within an area range.",
		Long: "Remove the dark blobs of IMAGE within an area range.\n\n" +
			"A blob is a connected region of pixels darker than the threshold. Blobs\n" +
			"whose area in pixels is between --min and --max are painted white.\n" +
			"Connectivity 16 joins diagonal pixels like 8 and also clears the\n" +
			"antialiased edge around every removed blob.",
		Options: []action.Param{
			{
				Name:    "min",
				Kind:    action.KindInt,
				Default: 0,
				Range:   intRange(0, maxArea),
				Usage:   "minimum area of a removed blob, in pixels",
			},
			{
				Name:    "max",
				Kind:    action.KindInt,
				Default: 100,
				Range:   intRange(0, maxArea),
				Usage:   "maximum area of a removed blob, in pixels",
			},
			{
				Name:      "connectivity",
				Shorthand: "c",
				Kind:      action.KindInt,
				Default:   imaging.Connect8,
				Usage:     "pixel connectivity: 4, 8 or 16 (8 with antialiasing)",
			},
			{
				Name:      "threshold",
				Shorthand: "t",
				Kind:      action.KindInt,
				Default:   128,
				Range:     intRange(0, 255),
				Usage:     "pixels darker than this are part of a blob, 0 to 255",
			},
			{
				Name:      "mask",
				Shorthand: "m",
				Kind:      action.KindBool,
				Default:   false,
				Usage:     "return a black-on-white mask of the removed blobs",
			},
		},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		switch c := v.Int("connectivity"); c {
		case imaging.Connect4, imaging.Connect8, imaging.ConnectAntialiased:
		default:
			return action.Result{}, action.ParamErrorf("connectivity",
				"Invalid value for %q: %d is not one of 4, 8, 16.", "connectivity", c)
		}
		if v.Int("min") > v.Int("max") {
			return action.Result{}, action.ParamErrorf("min",
				"Invalid value for %q: %d is larger than max %d.", "min", v.Int("min"), v.Int("max"))
		}

		out, err := imaging.RemoveBlobs(img.Image, v.Int("min"), v.Int("max"),
			v.Int("threshold"), v.Int("connectivity"), v.Bool("mask"))
		if err != nil {
			return action.Result{}, err
		}
		return imageResult(out)
	})
}

// Ridges removes thin dark lines, such as grid lines and borders.
func Ridges() action.Action {
	return action.New(action.Spec{
		Name:  "ridges",
		Short: "Remove the thin dark lines of IMAGE.",
		Long: "Remove the thin dark lines of IMAGE.\n\n" +
			"A pixel darker than the threshold is part of a ridge when, horizontally,\n" +
			"vertically or diagonally, the dark run through it is at most --width\n" +
			"pixels. Ridges are grown by --dilation pixels and painted white.",
		Options: []action.Param{
			{
				Name:      "width",
				Shorthand: "w",
				Kind:      action.KindInt,
				Default:   6,
				Range:     intRange(1, 100),
				Usage:     "maximum width of a ridge, 1 to 100",
			},
			{
				Name:      "threshold",
				Shorthand: "t",
				Kind:      action.KindInt,
				Default:   128,
				Range:     intRange(0, 255),
				Usage:     "pixels darker than this can be part of a ridge, 0 to 255",
			},
			{
				Name:      "dilation",
				Shorthand: "d",
				Kind:      action.KindInt,
				Default:   1,
				Range:     intRange(0, 20),
				Usage:     "pixels added around every ridge, 0 to 20",
			},
			{
				Name:      "mask",
				Shorthand: "m",
				Kind:      action.KindBool,
				Default:   false,
				Usage:     "return a black-on-white mask of the ridges",
			},
		},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		out, err := imaging.RemoveRidges(img.Image, v.Int("width"), v.Int("threshold"),
			v.Int("dilation"), v.Bool("mask"))
		if err != nil {
			return action.Result{}, err
		}
		return imageResult(out)
	})
}
