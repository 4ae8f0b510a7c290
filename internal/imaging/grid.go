package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultGridColor is the line color used when none is given.
var DefaultGridColor = color.NRGBA{R: 255, A: 255}

var (
	labelColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	labelBG    = color.NRGBA{A: 180}
)

// GridOverlay draws a coordinate grid over a copy of img.
//
// Lines are drawn every spacing pixels, starting at spacing, and composited
// over the image so translucent colors keep the pixels beneath visible.
// With labels each intersection is annotated with its "x,y" coordinates.
func GridOverlay(img image.Image, spacing int, lineColor color.Color, labels bool) *image.RGBA {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	result := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)
	if spacing < 1 {
		return result
	}
	if lineColor == nil {
		lineColor = DefaultGridColor
	}
	line := image.NewUniform(lineColor)

	for x := spacing; x < width; x += spacing {
		draw.Draw(result, image.Rect(x, 0, x+1, height), line, image.Point{}, draw.Over)
	}
	for y := spacing; y < height; y += spacing {
		draw.Draw(result, image.Rect(0, y, width, y+1), line, image.Point{}, draw.Over)
	}

	if labels {
		for y := spacing; y < height; y += spacing {
			for x := spacing; x < width; x += spacing {
				drawLabel(result, x+2, y+2, strconv.Itoa(x)+","+strconv.Itoa(y))
			}
		}
	}

	return result
}

// drawLabel renders text with its top-left corner at (x, y) on a
// translucent backdrop, using the 7x13 basic font.
func drawLabel(img *image.RGBA, x, y int, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(labelColor),
		Face: face,
	}

	w := d.MeasureString(text).Ceil()
	box := image.Rect(x-1, y-1, x+w+1, y+face.Height)
	draw.Draw(img, box, image.NewUniform(labelBG), image.Point{}, draw.Over)

	d.Dot = fixed.P(x, y+face.Ascent)
	d.DrawString(text)
}
