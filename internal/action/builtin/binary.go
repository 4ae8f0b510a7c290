package builtin

import (
	"context"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/imaging"
)

// === Binary Image Actions ===

// Binarize converts the image to pure black and white.
func Binarize() action.Action {
	return action.New(action.Spec{
		Name:  "binarize",
		Short: "Binarize IMAGE into black and white.",
		Options: []action.Param{{
			Name:      "method",
			Shorthand: "m",
			Kind:      action.KindString,
			Default:   imaging.BinarizeOtsu,
			Choices:   []string{imaging.BinarizeOtsu, imaging.BinarizeMean},
			Usage:     "threshold selection: 'otsu' or 'mean'",
		}},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		out, err := imaging.Binarize(img.Image, v.String("method"))
		if err != nil {
			return action.Result{}, err
		}
		return imageResult(out)
	})
}

// Dilate grows the light regions of the image, or the dark ones with invert.
func Dilate() action.Action {
	return action.New(action.Spec{
		Name:  "dilate",
		Short: "Dilate the light regions of IMAGE.",
		Options: []action.Param{
			{
				Name:      "dilation",
				Shorthand: "d",
				Kind:      action.KindInt,
				Default:   1,
				Range:     intRange(0, 20),
				Usage:     "radius of the structuring element, 0 to 20",
			},
			{
				Name:      "invert",
				Shorthand: "i",
				Kind:      action.KindBool,
				Default:   false,
				Usage:     "dilate the dark regions instead",
			},
		},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		return imageResult(imaging.Dilate(img.Image, v.Int("dilation"), v.Bool("invert")))
	})
}

// Edges detects edges with a Sobel filter.
func Edges() action.Action {
	return action.New(action.Spec{
		Name:  "edges",
		Short: "Detect the edges of IMAGE.",
		Options: []action.Param{{
			Name:      "threshold",
			Shorthand: "t",
			Kind:      action.KindInt,
			Default:   100,
			Range:     intRange(0, 255),
			Usage:     "minimum gradient magnitude kept as an edge, 0 to 255",
		}},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		return imageResult(imaging.Edges(img.Image, v.Int("threshold")))
	})
}
