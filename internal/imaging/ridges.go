package imaging

import (
	"fmt"
	"image"
)

// ridgeDirections are the sampling directions across a line: horizontal,
// vertical and both diagonals.
var ridgeDirections = []Point{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

// RemoveRidges whitens thin dark lines of img. A dark pixel (luminance below
// threshold) belongs to a ridge when, in some direction, the dark run
// through it is at most width pixels long. The ridge mask is then grown by
// dilation pixels. With mask the result is the ridge mask, black on white.
func RemoveRidges(img image.Image, width, threshold, dilation int, mask bool) (*image.NRGBA, error) {
	if width < 1 {
		return nil, fmt.Errorf("ridge width must be at least 1, got %d", width)
	}
	if dilation < 0 {
		return nil, fmt.Errorf("dilation must not be negative, got %d", dilation)
	}

	fg := darkPlane(img, threshold)
	ridges := binaryPlane{w: fg.w, h: fg.h, on: make([]bool, len(fg.on))}
	light := func(x, y int) bool {
		// Outside the image counts as background.
		return !fg.at(x, y)
	}
	for y := 0; y < fg.h; y++ {
		for x := 0; x < fg.w; x++ {
			if !fg.on[y*fg.w+x] {
				continue
			}
			for _, d := range ridgeDirections {
				if isRidge(light, x, y, d, width) {
					ridges.on[y*fg.w+x] = true
					break
				}
			}
		}
	}

	return applyMask(img, dilatePlane(ridges, dilation), mask), nil
}

// isRidge reports whether the dark run through (x, y) along d is at most
// width pixels long.
func isRidge(light func(x, y int) bool, x, y int, d Point, width int) bool {
	run := 1
	for s := 1; !light(x-d.X*s, y-d.Y*s); s++ {
		if run++; run > width {
			return false
		}
	}
	for s := 1; !light(x+d.X*s, y+d.Y*s); s++ {
		if run++; run > width {
			return false
		}
	}
	return true
}

// dilatePlane grows p by r pixels with a square structuring element.
func dilatePlane(p binaryPlane, r int) binaryPlane {
	if r == 0 {
		return p
	}
	out := binaryPlane{w: p.w, h: p.h, on: make([]bool, len(p.on))}
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			if !p.on[y*p.w+x] {
				continue
			}
			for dy := max(y-r, 0); dy <= min(y+r, p.h-1); dy++ {
				for dx := max(x-r, 0); dx <= min(x+r, p.w-1); dx++ {
					out.on[dy*p.w+dx] = true
				}
			}
		}
	}
	return out
}
