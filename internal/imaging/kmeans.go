package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	kmeansIterations = 12
	kmeansSamples    = 16384
)

type labPoint struct{ l, a, b float64 }

func (p labPoint) dist2(q labPoint) float64 {
	dl, da, db := p.l-q.l, p.a-q.a, p.b-q.b
	return dl*dl + da*da + db*db
}

// KMeans clusters the colors of img into at most k groups in CIE L*a*b*.
//
// Centers are seeded from the k most dominant quantized colors, so the
// result is deterministic. It returns the cluster colors ordered by
// descending pixel count and, for every pixel in row-major order, the index
// of its cluster. Fewer than k centers are returned when the image has fewer
// distinct colors.
func KMeans(img image.Image, k int) ([]RGBColor, []int) {
	bounds := img.Bounds()
	pixels := make([]labPoint, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixels = append(pixels, toLab(img.At(x, y)))
		}
	}
	if k < 1 || len(pixels) == 0 {
		return nil, make([]int, len(pixels))
	}

	seeds := DominantColors(img, k)
	centers := make([]labPoint, len(seeds))
	for i, s := range seeds {
		centers[i] = toLab(color.NRGBA{R: s.RGB.R, G: s.RGB.G, B: s.RGB.B, A: 255})
	}

	step := 1
	if len(pixels) > kmeansSamples {
		step = len(pixels) / kmeansSamples
	}

	for iter := 0; iter < kmeansIterations; iter++ {
		sums := make([]labPoint, len(centers))
		counts := make([]int, len(centers))
		for i := 0; i < len(pixels); i += step {
			c := nearest(centers, pixels[i])
			sums[c].l += pixels[i].l
			sums[c].a += pixels[i].a
			sums[c].b += pixels[i].b
			counts[c]++
		}

		moved := false
		for c := range centers {
			if counts[c] == 0 {
				continue
			}
			n := float64(counts[c])
			next := labPoint{sums[c].l / n, sums[c].a / n, sums[c].b / n}
			if next.dist2(centers[c]) > 1e-10 {
				moved = true
			}
			centers[c] = next
		}
		if !moved {
			break
		}
	}

	labels := make([]int, len(pixels))
	sizes := make([]int, len(centers))
	for i, p := range pixels {
		labels[i] = nearest(centers, p)
		sizes[labels[i]]++
	}

	order := make([]int, len(centers))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return sizes[order[i]] > sizes[order[j]] })

	rank := make([]int, len(centers))
	colors := make([]RGBColor, 0, len(centers))
	for r, c := range order {
		rank[c] = r
		if sizes[c] == 0 {
			continue
		}
		cr, cg, cb := colorful.Lab(centers[c].l, centers[c].a, centers[c].b).Clamped().RGB255()
		colors = append(colors, RGBColor{R: cr, G: cg, B: cb})
	}
	for i := range labels {
		labels[i] = rank[labels[i]]
	}
	return colors, labels
}

func toLab(c color.Color) labPoint {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	cf, _ := colorful.MakeColor(color.NRGBA{R: nc.R, G: nc.G, B: nc.B, A: 255})
	l, a, b := cf.Lab()
	return labPoint{l, a, b}
}

func nearest(centers []labPoint, p labPoint) int {
	best, bestDist := 0, math.Inf(1)
	for i, c := range centers {
		if d := p.dist2(c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Posterize modes.
const (
	PosterizeKMeans = "kmeans"
	PosterizeLinear = "linear"
)

// Posterize reduces img to n colors.
//
// PosterizeKMeans replaces every pixel with the color of its k-means
// cluster. PosterizeLinear quantizes each channel independently to n evenly
// spaced levels. Alpha is preserved.
func Posterize(img image.Image, n int, mode string) (*image.NRGBA, error) {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	switch mode {
	case PosterizeKMeans, "":
		centers, labels := KMeans(img, n)
		if len(centers) == 0 {
			return nil, fmt.Errorf("cannot posterize to %d colors", n)
		}
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				a := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA).A
				c := centers[labels[i]]
				dst.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: a})
				i++
			}
		}
	case PosterizeLinear:
		if n < 2 {
			n = 2
		}
		step := 255 / float64(n-1)
		q := func(v uint8) uint8 { return clampUint8(math.Round(float64(v)/step) * step) }
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				dst.SetNRGBA(x-bounds.Min.X, y-bounds.Min.Y, color.NRGBA{R: q(c.R), G: q(c.G), B: q(c.B), A: c.A})
			}
		}
	default:
		return nil, fmt.Errorf("unknown posterize mode %q", mode)
	}
	return dst, nil
}
