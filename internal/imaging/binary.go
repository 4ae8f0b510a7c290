package imaging

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/segment"
)

// Binarization methods.
const (
	BinarizeOtsu = "otsu"
	BinarizeMean = "mean"
)

// Binarize converts img to pure black and white.
//
// BinarizeOtsu picks the threshold that maximizes the between-class variance
// of the gray-level histogram; BinarizeMean uses the mean gray level.
func Binarize(img image.Image, method string) (*image.Gray, error) {
	gray := effect.Grayscale(img)
	bins := histogram.NewRGBAHistogram(gray).R.Bins

	var level uint8
	switch method {
	case BinarizeOtsu, "":
		level = otsuLevel(bins)
	case BinarizeMean:
		level = meanLevel(bins)
	default:
		return nil, fmt.Errorf("unknown binarization method %q", method)
	}
	return segment.Threshold(gray, level), nil
}

// otsuLevel returns the smallest gray level of the upper class.
func otsuLevel(bins []int) uint8 {
	total, weighted := 0, 0.0
	for i, n := range bins {
		total += n
		weighted += float64(i * n)
	}
	if total == 0 {
		return 128
	}

	var (
		best     float64
		level    = 0
		bgCount  int
		bgWeight float64
	)
	for t, n := range bins {
		bgCount += n
		if bgCount == 0 {
			continue
		}
		fgCount := total - bgCount
		if fgCount == 0 {
			break
		}
		bgWeight += float64(t * n)

		bgMean := bgWeight / float64(bgCount)
		fgMean := (weighted - bgWeight) / float64(fgCount)
		d := bgMean - fgMean
		between := float64(bgCount) * float64(fgCount) * d * d
		if between > best {
			best = between
			level = t
		}
	}
	return uint8(level + 1)
}

func meanLevel(bins []int) uint8 {
	total, weighted := 0, 0
	for i, n := range bins {
		total += n
		weighted += i * n
	}
	if total == 0 {
		return 128
	}
	return uint8((weighted + total - 1) / total)
}

// Dilate grows the light regions of img by a square structuring element of
// radius size. With invert the dark regions grow instead. A size of 0
// returns an unmodified copy.
func Dilate(img image.Image, size int, invert bool) *image.RGBA {
	if size <= 0 {
		return clone.AsRGBA(img)
	}
	if invert {
		return effect.Erode(img, float64(size))
	}
	return effect.Dilate(img, float64(size))
}

// Edges runs a Sobel filter over the grayscale image and keeps gradients at
// or above threshold (0-255) as white on black.
func Edges(img image.Image, threshold int) *image.Gray {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 255 {
		threshold = 255
	}
	return segment.Threshold(effect.Sobel(effect.Grayscale(img)), uint8(threshold))
}
