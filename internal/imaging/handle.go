package imaging

import (
	"errors"
	"image"
)

// ErrEmptyImage is returned when a handle would wrap a nil or zero-sized image.
var ErrEmptyImage = errors.New("image is empty")

// Handle is a decoded raster image plus the container format it was decoded from.
//
// Format is empty when the image was computed in memory (for example by an
// action) rather than decoded from bytes. Handles are never shared between
// pipeline steps: a step either passes its input handle through untouched or
// returns a new one.
type Handle struct {
	// Image holds the pixels. It is never nil for a handle built with NewHandle.
	Image image.Image

	// Format is the sniffed container format ("png", "jpg", "tiff", ...), or "".
	Format string
}

// NewHandle wraps img, failing with ErrEmptyImage when there are no pixels.
func NewHandle(img image.Image, format string) (*Handle, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return &Handle{Image: img, Format: format}, nil
}

// Derive returns a handle for a computed image, keeping no container format.
func Derive(img image.Image) (*Handle, error) {
	return NewHandle(img, "")
}

// Width returns the image width in pixels.
func (h *Handle) Width() int { return h.Image.Bounds().Dx() }

// Height returns the image height in pixels.
func (h *Handle) Height() int { return h.Image.Bounds().Dy() }
