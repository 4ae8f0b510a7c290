package builtin

import (
	"context"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/imaging"
)

// === Color Actions ===

func colorsArg() action.Param {
	return action.Param{
		Name:  "colors",
		Kind:  action.KindInt,
		Range: intRange(2, 128),
		Usage: "number of colors, 2 to 128",
	}
}

// Posterize reduces the number of colors of the image.
func Posterize() action.Action {
	return action.New(action.Spec{
		Name:  "posterize",
		Short: "Posterize IMAGE by reducing its number of colors.",
		Long: "Posterize IMAGE by reducing its number of colors.\n\n" +
			"COLORS, the number of colors of the output image, ranges from 2 to 128.",
		Args: []action.Param{colorsArg()},
		Options: []action.Param{{
			Name:      "method",
			Shorthand: "m",
			Kind:      action.KindString,
			Default:   imaging.PosterizeKMeans,
			Choices:   []string{imaging.PosterizeKMeans, imaging.PosterizeLinear},
			Usage: "'kmeans' clusters the existing colors with K-Means; " +
				"'linear' quantizes every channel on a linear scale",
		}},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		out, err := imaging.Posterize(img.Image, v.Int("colors"), v.String("method"))
		if err != nil {
			return action.Result{}, err
		}
		return imageResult(out)
	})
}

// Palette returns the representative colors of the image as [r, g, b]
// triples, most frequent first.
func Palette() action.Action {
	return action.New(action.Spec{
		Name:  "palette",
		Short: "Extract a palette of COLORS representative colors from IMAGE.",
		Args:  []action.Param{colorsArg()},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		return action.ValueResult(imaging.Palette(img.Image, v.Int("colors"))), nil
	})
}

// Histogram counts the pixels of every color in the image.
func Histogram() action.Action {
	return action.New(action.Spec{
		Name:  "histogram",
		Short: "Count the pixels of every color in IMAGE.",
		Options: []action.Param{{
			Name:      "mode",
			Shorthand: "m",
			Kind:      action.KindString,
			Default:   imaging.HistogramHex,
			Choices:   []string{imaging.HistogramHex, imaging.HistogramRGB},
			Usage:     "key style: 'hex' (#rrggbb) or 'rgb' (r,g,b)",
		}},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		hist, err := imaging.Histogram(img.Image, v.String("mode"))
		if err != nil {
			return action.Result{}, err
		}
		return action.ValueResult(hist), nil
	})
}

// Sample reports the color at one pixel.
func Sample() action.Action {
	return action.New(action.Spec{
		Name:  "sample",
		Short: "Get the color at pixel (X, Y) of IMAGE.",
		Long: "Get the color at pixel (X, Y) of IMAGE as hex, RGB, RGBA and HSL.\n\n" +
			"Coordinates are 0-based from the top-left corner.",
		Args: []action.Param{
			{Name: "x", Kind: action.KindInt, Usage: "X coordinate"},
			{Name: "y", Kind: action.KindInt, Usage: "Y coordinate"},
		},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		c, err := imaging.SampleColor(img.Image, v.Int("x"), v.Int("y"))
		if err != nil {
			return action.Result{}, err
		}
		return action.ValueResult(c), nil
	})
}

// Select keeps the pixels close to any of the given colors.
func Select() action.Action {
	return action.New(action.Spec{
		Name:  "select",
		Short: "Keep the pixels of IMAGE close to any COLOR.",
		Long: "Keep the pixels of IMAGE close to any COLOR and turn the rest white.\n\n" +
			"Every COLOR takes its own tolerance: the n-th -t applies to the COLOR it\n" +
			"precedes. Colors are given as #rgb, #rrggbb, rgb(r,g,b), rgba(r,g,b,a) or a\n" +
			"JSON list such as [58, 36, 38].",
		Args: []action.Param{{
			Name:     "color",
			Kind:     action.KindColor,
			Repeated: true,
			Usage:    "color to keep",
		}},
		Options: []action.Param{
			{
				Name:       "tolerance",
				Shorthand:  "t",
				Kind:       action.KindInt,
				Default:    10,
				Range:      intRange(0, 100),
				Repeated:   true,
				PairedWith: "color",
				Usage:      "tolerance of the COLOR it precedes, 0 to 100",
			},
			{
				Name:    "mask",
				Kind:    action.KindBool,
				Default: false,
				Usage:   "return a black on white mask of the kept pixels",
			},
		},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		out := imaging.SelectColors(img.Image, v.Colors("color"), v.Ints("tolerance"), v.Bool("mask"))
		return imageResult(out)
	})
}
