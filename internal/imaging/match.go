package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

// Template flip modes.
const (
	FlipNone       = "none"
	FlipHorizontal = "h"
	FlipVertical   = "v"
	FlipBoth       = "b"
)

// Region is a matched rectangle as [[x1, y1], [x2, y2]], with (x1, y1) the
// top-left corner (inclusive) and (x2, y2) the bottom-right corner
// (exclusive).
type Region [2][2]int

// Rect returns r as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r[0][0], r[0][1], r[1][0], r[1][1])
}

// Template is one pattern to search for.
type Template struct {
	Image image.Image

	// Threshold is the minimum match score in percent (0-100).
	Threshold int

	// Flip additionally searches the mirrored template: FlipHorizontal,
	// FlipVertical or FlipBoth. FlipNone or "" searches it as given.
	Flip string

	// Exclude lists polygons, in template coordinates, whose pixels are
	// ignored when scoring. The mask is mirrored along with the template.
	Exclude []Polygon
}

// Polygon is a closed outline given by its vertices.
type Polygon []image.Point

// contains reports whether p lies inside poly or on its boundary.
func (poly Polygon) contains(p image.Point) bool {
	inside := false
	for i := range poly {
		a, b := poly[i], poly[(i+1)%len(poly)]
		if onSegment(a, b, p) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := float64(a.X) + float64(p.Y-a.Y)*float64(b.X-a.X)/float64(b.Y-a.Y)
			if float64(p.X) < x {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(a, b, p image.Point) bool {
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	return cross == 0 &&
		p.X >= min(a.X, b.X) && p.X <= max(a.X, b.X) &&
		p.Y >= min(a.Y, b.Y) && p.Y <= max(a.Y, b.Y)
}

// excludeMask renders polys onto a w by h image, white where excluded.
func excludeMask(w, h int, polys []Polygon) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for _, poly := range polys {
				if poly.contains(image.Pt(x, y)) {
					i := m.PixOffset(x, y)
					m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3] = 255, 255, 255, 255
					break
				}
			}
		}
	}
	return m
}

type match struct {
	region Region
	score  float64
}

// MatchTemplates finds the occurrences of every template in img.
//
// Matching uses zero-mean normalized cross-correlation on grayscale pixels,
// so a score of 100 is a perfect match regardless of brightness. Overlapping
// candidates are suppressed, keeping the best-scoring one. Regions are
// returned ordered top-to-bottom, then left-to-right.
func MatchTemplates(img image.Image, templates []Template) ([]Region, error) {
	gray := grayPlane(img)

	var found []match
	for i, t := range templates {
		flips, err := flipVariants(t.Flip)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", i+1, err)
		}
		var mask *image.NRGBA
		if len(t.Exclude) > 0 {
			b := t.Image.Bounds()
			mask = excludeMask(b.Dx(), b.Dy(), t.Exclude)
		}
		minScore := float64(t.Threshold) / 100
		for _, flip := range flips {
			tmpl := grayPlane(flip(t.Image))
			if mask == nil {
				found = append(found, matchOne(gray, tmpl, minScore)...)
				continue
			}
			found = append(found, matchMasked(gray, tmpl, keptPixels(flip(mask)), minScore)...)
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].score > found[j].score })

	var kept []Region
	for _, m := range found {
		r := m.region.Rect()
		overlaps := false
		for _, k := range kept {
			if r.Overlaps(k.Rect()) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, m.region)
		}
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i][0][1] != kept[j][0][1] {
			return kept[i][0][1] < kept[j][0][1]
		}
		return kept[i][0][0] < kept[j][0][0]
	})
	if kept == nil {
		kept = []Region{}
	}
	return kept, nil
}

type transform func(image.Image) *image.NRGBA

// flipVariants returns the transforms that produce every searched
// orientation of a template.
func flipVariants(flip string) ([]transform, error) {
	same := func(img image.Image) *image.NRGBA { return imaging.Clone(img) }
	switch flip {
	case FlipNone, "":
		return []transform{same}, nil
	case FlipHorizontal:
		return []transform{same, imaging.FlipH}, nil
	case FlipVertical:
		return []transform{same, imaging.FlipV}, nil
	case FlipBoth:
		return []transform{same, imaging.FlipH, imaging.FlipV, imaging.Rotate180}, nil
	}
	return nil, fmt.Errorf("unknown flip mode %q", flip)
}

// keptPixels reads an exclude mask back as the pixels that still count.
func keptPixels(m *image.NRGBA) []bool {
	b := m.Bounds()
	keep := make([]bool, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			keep[y*b.Dx()+x] = m.Pix[m.PixOffset(b.Min.X+x, b.Min.Y+y)] < 128
		}
	}
	return keep
}

// plane is a grayscale image as float samples in row-major order.
type plane struct {
	w, h int
	pix  []float64
}

func grayPlane(img image.Image) plane {
	g := imaging.Grayscale(img)
	b := g.Bounds()
	p := plane{w: b.Dx(), h: b.Dy(), pix: make([]float64, b.Dx()*b.Dy())}
	for y := 0; y < p.h; y++ {
		row := g.Pix[y*g.Stride:]
		for x := 0; x < p.w; x++ {
			p.pix[y*p.w+x] = float64(row[x*4])
		}
	}
	return p
}

// matchOne returns every window of img whose correlation with tmpl reaches
// minScore. Flat windows and flat templates only match each other.
func matchOne(img, tmpl plane, minScore float64) []match {
	if tmpl.w == 0 || tmpl.h == 0 || tmpl.w > img.w || tmpl.h > img.h {
		return nil
	}

	n := float64(tmpl.w * tmpl.h)
	var tSum, tSq float64
	for _, v := range tmpl.pix {
		tSum += v
		tSq += v * v
	}
	tMean := tSum / n
	tVar := tSq - tSum*tMean

	sum, sq := integral(img)
	stride := img.w + 1
	box := func(t []float64, x, y int) float64 {
		x2, y2 := x+tmpl.w, y+tmpl.h
		return t[y2*stride+x2] - t[y*stride+x2] - t[y2*stride+x] + t[y*stride+x]
	}

	var out []match
	for y := 0; y+tmpl.h <= img.h; y++ {
		for x := 0; x+tmpl.w <= img.w; x++ {
			wSum := box(sum, x, y)
			wVar := box(sq, x, y) - wSum*wSum/n

			var score float64
			switch {
			case tVar < 1e-9 && wVar < 1e-9:
				if math.Abs(wSum/n-tMean) < 0.5 {
					score = 1
				}
			case tVar < 1e-9 || wVar < 1e-9:
				score = 0
			default:
				var cross float64
				for ty := 0; ty < tmpl.h; ty++ {
					ir := img.pix[(y+ty)*img.w+x:]
					tr := tmpl.pix[ty*tmpl.w:]
					for tx := 0; tx < tmpl.w; tx++ {
						cross += ir[tx] * tr[tx]
					}
				}
				score = (cross - wSum*tMean) / math.Sqrt(wVar*tVar)
			}

			if score >= minScore-1e-9 {
				out = append(out, match{
					region: Region{{x, y}, {x + tmpl.w, y + tmpl.h}},
					score:  score,
				})
			}
		}
	}
	return out
}

// matchMasked is matchOne restricted to the template pixels set in keep.
// A template with no kept pixels matches nothing.
func matchMasked(img, tmpl plane, keep []bool, minScore float64) []match {
	if tmpl.w == 0 || tmpl.h == 0 || tmpl.w > img.w || tmpl.h > img.h {
		return nil
	}

	var n, tSum, tSq float64
	for i, v := range tmpl.pix {
		if keep[i] {
			n++
			tSum += v
			tSq += v * v
		}
	}
	if n == 0 {
		return nil
	}
	tMean := tSum / n
	tVar := tSq - tSum*tMean

	var out []match
	for y := 0; y+tmpl.h <= img.h; y++ {
		for x := 0; x+tmpl.w <= img.w; x++ {
			var wSum, wSq, cross float64
			for ty := 0; ty < tmpl.h; ty++ {
				for tx := 0; tx < tmpl.w; tx++ {
					i := ty*tmpl.w + tx
					if !keep[i] {
						continue
					}
					v := img.pix[(y+ty)*img.w+x+tx]
					wSum += v
					wSq += v * v
					cross += v * tmpl.pix[i]
				}
			}
			wVar := wSq - wSum*wSum/n

			var score float64
			switch {
			case tVar < 1e-9 && wVar < 1e-9:
				if math.Abs(wSum/n-tMean) < 0.5 {
					score = 1
				}
			case tVar < 1e-9 || wVar < 1e-9:
				score = 0
			default:
				score = (cross - wSum*tMean) / math.Sqrt(wVar*tVar)
			}

			if score >= minScore-1e-9 {
				out = append(out, match{
					region: Region{{x, y}, {x + tmpl.w, y + tmpl.h}},
					score:  score,
				})
			}
		}
	}
	return out
}

// integral returns summed-area tables of p and of p squared, each with a
// leading zero row and column.
func integral(p plane) (sum, sq []float64) {
	stride := p.w + 1
	sum = make([]float64, stride*(p.h+1))
	sq = make([]float64, stride*(p.h+1))
	for y := 0; y < p.h; y++ {
		var rs, rq float64
		for x := 0; x < p.w; x++ {
			v := p.pix[y*p.w+x]
			rs += v
			rq += v * v
			sum[(y+1)*stride+x+1] = sum[y*stride+x+1] + rs
			sq[(y+1)*stride+x+1] = sq[y*stride+x+1] + rq
		}
	}
	return sum, sq
}
