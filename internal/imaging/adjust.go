package imaging

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/disintegration/gift"
)

// Brightness scales brightness. value is a percentage: 100 leaves the image
// unchanged, 0 is black, 200 doubles the brightness.
func Brightness(img image.Image, value int) *image.RGBA {
	return adjust.Brightness(img, percentChange(value))
}

// Contrast scales contrast. value is a percentage with 100 as identity.
func Contrast(img image.Image, value int) *image.RGBA {
	return adjust.Contrast(img, percentChange(value))
}

func percentChange(value int) float64 {
	return math.Max(-1, math.Min(1, float64(value-100)/100))
}

// Smooth applies a Gaussian blur whose radius grows with value (0-100).
// A value of 0 returns an unmodified copy.
func Smooth(img image.Image, value int) *image.RGBA {
	if value <= 0 {
		return clone.AsRGBA(img)
	}
	return blur.Gaussian(img, float64(value)/10)
}

// Denoise applies a disk-shaped median filter. value (0-100) selects the
// kernel size; 0 returns an unmodified copy.
func Denoise(img image.Image, value int) *image.RGBA {
	size := 1 + 2*(value/10)
	if value <= 0 || size < 3 {
		return clone.AsRGBA(img)
	}

	g := gift.New(gift.Median(size, true))
	dst := image.NewRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// Equalize performs luminance histogram equalization and blends the result
// with the original. value is the blend percentage (0 = original,
// 100 = fully equalized).
func Equalize(img image.Image, value int) *image.RGBA {
	src := clone.AsRGBA(img)
	if value <= 0 {
		return src
	}
	weight := math.Min(float64(value), 100) / 100

	hist := histogram.NewRGBAHistogram(lumaImage(src))
	bins := hist.R.Bins
	total := 0
	for _, n := range bins {
		total += n
	}

	var lut [256]float64
	cum, cdfMin := 0, -1
	for i, n := range bins {
		cum += n
		if cdfMin < 0 && n > 0 {
			cdfMin = cum
		}
		if total > cdfMin {
			lut[i] = float64(cum-cdfMin) / float64(total-cdfMin) * 255
		} else {
			lut[i] = float64(i)
		}
	}

	return adjust.Apply(src, func(c color.RGBA) color.RGBA {
		y := luma(c)
		if y == 0 {
			return c
		}
		target := float64(y) + (lut[y]-float64(y))*weight
		scale := target / float64(y)
		return color.RGBA{
			R: clampUint8(float64(c.R) * scale),
			G: clampUint8(float64(c.G) * scale),
			B: clampUint8(float64(c.B) * scale),
			A: c.A,
		}
	})
}

// lumaImage returns a copy of img where every channel holds the BT.601 luma.
func lumaImage(img *image.RGBA) *image.RGBA {
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		y := luma(c)
		return color.RGBA{R: y, G: y, B: y, A: 255}
	})
}

func luma(c color.RGBA) uint8 {
	return clampUint8(0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B))
}

func clampUint8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}
