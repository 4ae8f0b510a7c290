package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Crop extracts the region (x1,y1)-(x2,y2) from img and optionally rescales it.
//
// Coordinates are relative to the top-left corner of the image; (x2, y2) is
// exclusive. A scale of 1 (or any value <= 0) keeps the cropped size;
// otherwise the result is resized with a Lanczos filter.
func Crop(img image.Image, x1, y1, x2, y2 int, scale float64) (*image.NRGBA, error) {
	bounds := img.Bounds()

	if x1 < 0 || y1 < 0 || x2 > bounds.Dx() || y2 > bounds.Dy() {
		return nil, fmt.Errorf("crop region (%d,%d)-(%d,%d) outside image bounds (0,0)-(%d,%d)",
			x1, y1, x2, y2, bounds.Dx(), bounds.Dy())
	}
	if x1 >= x2 || y1 >= y2 {
		return nil, fmt.Errorf("invalid crop region: x1 must be < x2, y1 must be < y2")
	}

	rect := image.Rect(x1, y1, x2, y2).Add(bounds.Min)
	cropped := imaging.Crop(img, rect)

	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(cropped.Bounds().Dx()) * scale)
		newHeight := int(float64(cropped.Bounds().Dy()) * scale)
		if newWidth < 1 || newHeight < 1 {
			return nil, fmt.Errorf("scale %g leaves an empty image", scale)
		}
		cropped = imaging.Resize(cropped, newWidth, newHeight, imaging.Lanczos)
	}

	return cropped, nil
}
