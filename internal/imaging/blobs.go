package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Blob connectivity modes. ConnectAntialiased labels 8-connected blobs and
// also clears the one-pixel antialiasing fringe around every removed blob.
const (
	Connect4           = 4
	Connect8           = 8
	ConnectAntialiased = 16
)

// Point is a pixel position relative to the image origin.
type Point struct {
	X, Y int
}

// binaryPlane is a foreground mask in row-major order.
type binaryPlane struct {
	w, h int
	on   []bool
}

func (b binaryPlane) at(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.w && y < b.h && b.on[y*b.w+x]
}

// darkPlane marks the pixels whose luminance is below threshold.
func darkPlane(img image.Image, threshold int) binaryPlane {
	g := imaging.Grayscale(img)
	b := g.Bounds()
	p := binaryPlane{w: b.Dx(), h: b.Dy(), on: make([]bool, b.Dx()*b.Dy())}
	for y := 0; y < p.h; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < p.w; x++ {
			p.on[y*p.w+x] = int(row[x*4]) < threshold
		}
	}
	return p
}

// components groups the foreground of p into connected blobs.
func components(p binaryPlane, connectivity int) [][]Point {
	neighbors := []Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	if connectivity != Connect4 {
		neighbors = append(neighbors, Point{1, 1}, Point{1, -1}, Point{-1, 1}, Point{-1, -1})
	}

	visited := make([]bool, len(p.on))
	var blobs [][]Point
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			if !p.on[y*p.w+x] || visited[y*p.w+x] {
				continue
			}

			// Iterative fill, so large blobs cannot exhaust the stack.
			var blob []Point
			stack := []Point{{x, y}}
			visited[y*p.w+x] = true
			for len(stack) > 0 {
				pt := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				blob = append(blob, pt)
				for _, d := range neighbors {
					nx, ny := pt.X+d.X, pt.Y+d.Y
					if !p.at(nx, ny) || visited[ny*p.w+nx] {
						continue
					}
					visited[ny*p.w+nx] = true
					stack = append(stack, Point{nx, ny})
				}
			}
			blobs = append(blobs, blob)
		}
	}
	return blobs
}

// RemoveBlobs whitens the dark blobs of img whose area in pixels lies within
// [minArea, maxArea]. Pixels darker than threshold (0-255) are foreground.
// With mask the result is instead a black-on-white mask of the removed
// pixels.
func RemoveBlobs(img image.Image, minArea, maxArea, threshold, connectivity int, mask bool) (*image.NRGBA, error) {
	switch connectivity {
	case Connect4, Connect8, ConnectAntialiased:
	default:
		return nil, fmt.Errorf("connectivity must be 4, 8 or 16, got %d", connectivity)
	}
	if minArea > maxArea {
		return nil, fmt.Errorf("minimum area %d is larger than maximum area %d", minArea, maxArea)
	}

	fg := darkPlane(img, threshold)
	removed := binaryPlane{w: fg.w, h: fg.h, on: make([]bool, len(fg.on))}
	for _, blob := range components(fg, connectivity) {
		if len(blob) < minArea || len(blob) > maxArea {
			continue
		}
		for _, pt := range blob {
			removed.on[pt.Y*fg.w+pt.X] = true
		}
	}

	if connectivity == ConnectAntialiased {
		// The fringe is the background ring around removed blobs.
		fringe := make([]bool, len(removed.on))
		for y := 0; y < fg.h; y++ {
			for x := 0; x < fg.w; x++ {
				if fg.on[y*fg.w+x] {
					continue
				}
				for dy := -1; dy <= 1 && !fringe[y*fg.w+x]; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if removed.at(x+dx, y+dy) {
							fringe[y*fg.w+x] = true
							break
						}
					}
				}
			}
		}
		for i, f := range fringe {
			removed.on[i] = removed.on[i] || f
		}
	}

	return applyMask(img, removed, mask), nil
}

// applyMask whitens the pixels of img set in m, or with asMask returns m as
// black on white.
func applyMask(img image.Image, m binaryPlane, asMask bool) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, m.w, m.h))
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.NRGBA{A: 255}
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			on := m.on[y*m.w+x]
			var c color.NRGBA
			switch {
			case asMask && on:
				c = black
			case asMask, on:
				c = white
			default:
				c = color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			}
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}
