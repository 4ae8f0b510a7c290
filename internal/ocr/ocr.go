package ocr

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// DefaultLanguage is used when no language is given.
const DefaultLanguage = "eng"

// ErrUnavailable is returned when the binary was built without the Tesseract engine.
var ErrUnavailable = errors.New("ocr is not available: built without cgo")

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// TextRegion represents a word with its location and OCR confidence.
type TextRegion struct {
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	Bounds Bounds `json:"bounds"`
}

// Result contains the complete results of text extraction from an image.
type Result struct {
	// FullText is all recognized text with original spacing and newlines.
	FullText string `json:"full_text"`

	// Regions contains individual words. It may be empty when bounding box
	// extraction fails; the text is still in FullText.
	Regions []TextRegion `json:"regions"`
}

// recognize is the engine entry point, provided per build configuration.
var recognize = tesseract

// ExtractText performs OCR on img. An empty language means DefaultLanguage.
func ExtractText(img image.Image, language string) (*Result, error) {
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}

	// Tesseract works on zero-origin images.
	b := img.Bounds()
	if b.Min != (image.Point{}) {
		img = imaging.Crop(img, b)
	}

	res, err := recognize(img, language)
	if err != nil {
		return nil, err
	}
	if res.Regions == nil {
		res.Regions = []TextRegion{}
	}
	return res, nil
}

// ExtractTextFromRegion performs OCR on the rectangle (x1,y1)-(x2,y2) of img.
// The rectangle is clipped to the image; word bounds are reported relative to
// the full image.
func ExtractTextFromRegion(img image.Image, x1, y1, x2, y2 int, language string) (*Result, error) {
	b := img.Bounds()
	r := image.Rect(x1, y1, x2, y2).Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil, fmt.Errorf("region (%d,%d)-(%d,%d) does not overlap the image", x1, y1, x2, y2)
	}

	res, err := ExtractText(imaging.Crop(img, r), language)
	if err != nil {
		return nil, err
	}

	dx, dy := r.Min.X-b.Min.X, r.Min.Y-b.Min.Y
	for i := range res.Regions {
		res.Regions[i].Bounds.X1 += dx
		res.Regions[i].Bounds.Y1 += dy
		res.Regions[i].Bounds.X2 += dx
		res.Regions[i].Bounds.Y2 += dy
	}
	return res, nil
}
