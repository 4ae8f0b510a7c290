package builtin

import (
	"context"
	"strconv"
	"strings"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/imaging"
	"github.com/ironsheep/image-tools/internal/ocr"
)

// === Region Actions ===

// Crop extracts a rectangle and optionally rescales it.
func Crop() action.Action {
	coord := func(name, usage string) action.Param {
		return action.Param{Name: name, Kind: action.KindInt, Usage: usage}
	}
	return action.New(action.Spec{
		Name:  "crop",
		Short: "Crop the region (X1, Y1)-(X2, Y2) of IMAGE.",
		Long: "Crop the region (X1, Y1)-(X2, Y2) of IMAGE.\n\n" +
			"Coordinates are 0-based from the top-left corner; X2 and Y2 are exclusive.",
		Args: []action.Param{
			coord("x1", "left edge"),
			coord("y1", "top edge"),
			coord("x2", "right edge"),
			coord("y2", "bottom edge"),
		},
		Options: []action.Param{{
			Name:      "scale",
			Shorthand: "s",
			Kind:      action.KindFloat,
			Default:   1.0,
			Range:     &action.Range{Min: 0.1, Max: 10},
			Usage:     "scale factor applied to the cropped region",
		}},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		out, err := imaging.Crop(img.Image, v.Int("x1"), v.Int("y1"), v.Int("x2"), v.Int("y2"), v.Float("scale"))
		if err != nil {
			return action.Result{}, err
		}
		return imageResult(out)
	})
}

// Grid overlays a coordinate grid.
func Grid() action.Action {
	return action.New(action.Spec{
		Name:  "grid",
		Short: "Overlay a coordinate grid on IMAGE.",
		Options: []action.Param{
			{
				Name:      "spacing",
				Shorthand: "s",
				Kind:      action.KindInt,
				Default:   50,
				Range:     intRange(5, 1000),
				Usage:     "pixels between grid lines",
			},
			{
				Name:      "color",
				Shorthand: "c",
				Kind:      action.KindColor,
				Default:   "rgba(255,0,0,0.5)",
				Usage:     "line color as #rgb, #rrggbb, rgb(r,g,b) or rgba(r,g,b,a)",
			},
			{
				Name:      "labels",
				Shorthand: "l",
				Kind:      action.KindBool,
				Default:   false,
				Usage:     "label every intersection with its coordinates",
			},
		},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		return imageResult(imaging.GridOverlay(img.Image, v.Int("spacing"), v.Color("color"), v.Bool("labels")))
	})
}

// === OCR Action ===

// OCR extracts text and word bounding boxes with Tesseract.
func OCR() action.Action {
	return action.New(action.Spec{
		Name:  "ocr",
		Short: "Extract the text of IMAGE.",
		Long: "Extract the text of IMAGE with Tesseract, with a bounding box and\n" +
			"confidence for every word. With --region only that rectangle is read;\n" +
			"word boxes are still relative to the full image.",
		Options: []action.Param{
			{
				Name:      "language",
				Shorthand: "l",
				Kind:      action.KindString,
				Default:   ocr.DefaultLanguage,
				Usage:     "Tesseract language code, e.g. eng, deu, fra",
			},
			{
				Name:      "region",
				Shorthand: "r",
				Kind:      action.KindString,
				Default:   "",
				Usage:     "only read the rectangle X1,Y1,X2,Y2",
			},
		},
	}, func(_ context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		var (
			res *ocr.Result
			err error
		)
		if region := v.String("region"); region != "" {
			r, perr := parseRegion(region)
			if perr != nil {
				return action.Result{}, perr
			}
			res, err = ocr.ExtractTextFromRegion(img.Image, r[0], r[1], r[2], r[3], v.String("language"))
		} else {
			res, err = ocr.ExtractText(img.Image, v.String("language"))
		}
		if err != nil {
			return action.Result{}, err
		}
		return action.ValueResult(res), nil
	})
}

// parseRegion reads "x1,y1,x2,y2".
func parseRegion(s string) ([4]int, error) {
	var r [4]int
	parts := strings.Split(s, ",")
	if len(parts) != len(r) {
		return r, action.ParamErrorf("region", "Invalid value for %q: %q is not X1,Y1,X2,Y2.", "region", s)
	}
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return r, action.ParamErrorf("region", "Invalid value for %q: %q is not X1,Y1,X2,Y2.", "region", s)
		}
		r[i] = n
	}
	return r, nil
}
