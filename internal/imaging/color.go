package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/go-playground/colors.v1"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor represents an RGBA color with 8-bit components including alpha
// (0 = fully transparent, 255 = fully opaque).
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor represents a color in HSL color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"`  // "#RRGGBB", alpha excluded
	RGB  RGBColor  `json:"rgb"`  // RGB components
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are 0-based with origin at the top-left corner of the image
// bounds. An error is returned when (x, y) lies outside the image.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	p := image.Pt(bounds.Min.X+x, bounds.Min.Y+y)
	if !p.In(bounds) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d", x, y, bounds.Dx(), bounds.Dy())
	}

	c := color.NRGBAModel.Convert(img.At(p.X, p.Y)).(color.NRGBA)

	return &ColorResult{
		Hex:  fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B),
		RGB:  RGBColor{R: c.R, G: c.G, B: c.B},
		RGBA: RGBAColor{R: c.R, G: c.G, B: c.B, A: c.A},
		HSL:  rgbToHSL(c.R, c.G, c.B),
	}, nil
}

// rgbToHSL converts 8-bit RGB values to HSL with integer degrees and percents.
func rgbToHSL(r, g, b uint8) HSLColor {
	h, s, l := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hsl()
	return HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)}
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#RRGGBB" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
}

// DominantColors returns up to count of the most common colors, sorted by
// frequency in descending order.
//
// Colors are quantized to steps of 16 per component before counting, so
// #F0F0F0 and #FAFAFA fall into the same bucket. Ties are broken by hex value
// to keep the ordering stable.
func DominantColors(img image.Image, count int) []ColorFrequency {
	bounds := img.Bounds()
	counts := make(map[RGBColor]int)
	total := 0

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			key := RGBColor{
				R: uint8((r >> 8) / 16 * 16),
				G: uint8((g >> 8) / 16 * 16),
				B: uint8((b >> 8) / 16 * 16),
			}
			counts[key]++
			total++
		}
	}

	freqs := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		freqs = append(freqs, ColorFrequency{
			Hex:        hexString(c),
			Percentage: float64(n) / float64(total) * 100,
			RGB:        c,
		})
	}

	sort.Slice(freqs, func(i, j int) bool {
		if freqs[i].Percentage != freqs[j].Percentage {
			return freqs[i].Percentage > freqs[j].Percentage
		}
		return freqs[i].Hex < freqs[j].Hex
	})

	if count >= 0 && len(freqs) > count {
		freqs = freqs[:count]
	}
	return freqs
}

// Histogram key styles.
const (
	HistogramRGB = "rgb"
	HistogramHex = "hex"
)

// Histogram counts the pixels of every distinct opaque color.
//
// With HistogramHex the keys are "#rrggbb"; with HistogramRGB they are
// "r,g,b". Fully transparent pixels are skipped.
func Histogram(img image.Image, mode string) (map[string]int, error) {
	var key func(RGBColor) string
	switch mode {
	case HistogramHex:
		key = func(c RGBColor) string { return strings.ToLower(hexString(c)) }
	case HistogramRGB, "":
		key = func(c RGBColor) string { return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B) }
	default:
		return nil, fmt.Errorf("unknown histogram mode %q", mode)
	}

	counts := make(map[RGBColor]int)
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A == 0 {
				continue
			}
			counts[RGBColor{R: c.R, G: c.G, B: c.B}]++
		}
	}

	hist := make(map[string]int, len(counts))
	for c, n := range counts {
		hist[key(c)] += n
	}
	return hist, nil
}

// Palette returns the n representative colors of img found by k-means
// clustering, as [r, g, b] triples ordered by cluster size.
func Palette(img image.Image, n int) [][3]uint8 {
	centers, _ := KMeans(img, n)
	out := make([][3]uint8, len(centers))
	for i, c := range centers {
		out[i] = [3]uint8{c.R, c.G, c.B}
	}
	return out
}

// ParseColor parses a CSS-style color: "#rgb", "#rrggbb", "rgb(r,g,b)" or
// "rgba(r,g,b,a)".
func ParseColor(s string) (color.NRGBA, error) {
	c, err := colors.Parse(strings.TrimSpace(s))
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	rgba := c.ToRGBA()
	return color.NRGBA{R: rgba.R, G: rgba.G, B: rgba.B, A: clampUint8(rgba.A * 255)}, nil
}

// SelectColors keeps the pixels whose color is within a per-color tolerance
// of any of targets and turns every other pixel white.
//
// tolerances is index-aligned with targets and ranges 0-100, where 0 keeps
// exact matches only and 100 keeps everything. Distances are measured in CIE
// L*a*b*. When mask is true the result is a black-on-white mask of the kept
// pixels instead.
func SelectColors(img image.Image, targets []color.NRGBA, tolerances []int, mask bool) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	labs := make([]colorful.Color, len(targets))
	limits := make([]float64, len(targets))
	for i, t := range targets {
		labs[i], _ = colorful.MakeColor(color.NRGBA{R: t.R, G: t.G, B: t.B, A: 255})
		tol := 0
		if i < len(tolerances) {
			tol = tolerances[i]
		}
		limits[i] = float64(tol) / 100
		if tol >= 100 {
			limits[i] = math.Inf(1)
		}
	}

	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.NRGBA{A: 255}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			c, _ := colorful.MakeColor(color.NRGBA{R: px.R, G: px.G, B: px.B, A: 255})

			keep := false
			for i := range labs {
				if c.DistanceLab(labs[i]) <= limits[i]+1e-9 {
					keep = true
					break
				}
			}

			out := white
			switch {
			case keep && mask:
				out = black
			case keep:
				out = px
			}
			dst.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, out)
		}
	}
	return dst
}

func hexString(c RGBColor) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
