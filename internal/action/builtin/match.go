package builtin

import (
	"context"
	"encoding/json"
	"image"

	"github.com/pkg/errors"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/imaging"
)

// === Template Matching ===

// Match finds the occurrences of template images. Templates are locators
// resolved through src, so they may be local paths or URIs.
func Match(src *imaging.Source) action.Action {
	return action.New(action.Spec{
		Name:  "match",
		Short: "Find the regions of IMAGE that match any TEMPLATE.",
		Long: "Find the regions of IMAGE that match any TEMPLATE.\n\n" +
			"Every TEMPLATE takes its own threshold, flip mode and exclude polygons:\n" +
			"the n-th -t, -f and -e apply to the TEMPLATE they precede. -e is a JSON\n" +
			"list of polygons in TEMPLATE coordinates, such as\n" +
			"'[[[0, 0], [20, 0], [20, 10], [0, 10]]]'; their pixels are ignored when\n" +
			"scoring. Regions are reported as [[x1, y1], [x2, y2]].",
		Args: []action.Param{{
			Name:     "template",
			Kind:     action.KindString,
			Repeated: true,
			Usage:    "template image path or URI",
		}},
		Options: []action.Param{
			{
				Name:       "threshold",
				Shorthand:  "t",
				Kind:       action.KindInt,
				Default:    80,
				Range:      intRange(0, 100),
				Repeated:   true,
				PairedWith: "template",
				Usage:      "minimum match score of the TEMPLATE it precedes, 0 to 100",
			},
			{
				Name:       "flip",
				Shorthand:  "f",
				Kind:       action.KindString,
				Default:    imaging.FlipNone,
				Choices:    []string{imaging.FlipNone, imaging.FlipHorizontal, imaging.FlipVertical, imaging.FlipBoth},
				Repeated:   true,
				PairedWith: "template",
				Usage:      "also match the TEMPLATE it precedes mirrored: h, v or b (both)",
			},
			{
				Name:       "exclude",
				Shorthand:  "e",
				Kind:       action.KindJSON,
				Default:    []any{},
				Repeated:   true,
				PairedWith: "template",
				Parse:      parsePolygons,
				Usage:      "JSON list of polygons ignored in the TEMPLATE it precedes",
			},
		},
	}, func(ctx context.Context, img *imaging.Handle, v action.Values) (action.Result, error) {
		locators := v.Strings("template")
		handles, err := src.ResolveAll(ctx, locators)
		if err != nil {
			return action.Result{}, errors.Wrap(err, "unable to load templates")
		}

		thresholds, flips := v.Ints("threshold"), v.Strings("flip")
		excludes, _ := v.Raw("exclude").([]any)
		templates := make([]imaging.Template, len(handles))
		for i, h := range handles {
			templates[i] = imaging.Template{Image: h.Image, Threshold: thresholds[i], Flip: flips[i]}
			if i < len(excludes) {
				templates[i].Exclude, _ = excludes[i].([]imaging.Polygon)
			}
		}

		regions, err := imaging.MatchTemplates(img.Image, templates)
		if err != nil {
			return action.Result{}, err
		}
		return action.ValueResult(regions), nil
	})
}

// parsePolygons reads the exclude value of one template: a list of
// polygons, each a list of at least three [x, y] points. Command-line values
// arrive as JSON text.
func parsePolygons(raw any) (any, error) {
	if s, ok := raw.(string); ok {
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, errors.Errorf("%q is not a JSON list of Polygons.", s)
		}
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.Errorf("%v is not a list of Polygons.", raw)
	}

	polys := make([]imaging.Polygon, 0, len(list))
	for i, item := range list {
		points, ok := item.([]any)
		if !ok || len(points) < 3 {
			return nil, polygonError(i)
		}
		poly := make(imaging.Polygon, 0, len(points))
		for _, p := range points {
			xy, ok := p.([]any)
			if !ok || len(xy) != 2 {
				return nil, polygonError(i)
			}
			x, okX := xy[0].(float64)
			y, okY := xy[1].(float64)
			if !okX || !okY {
				return nil, polygonError(i)
			}
			poly = append(poly, image.Pt(int(x), int(y)))
		}
		polys = append(polys, poly)
	}
	return polys, nil
}

func polygonError(i int) error {
	return errors.Errorf("Polygon %d is not a list of at least three [x, y] points.", i+1)
}
