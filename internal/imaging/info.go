package imaging

import (
	"image"
	"image/color"
)

// ImageInfo contains metadata about a decoded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the sniffed container format, or "unknown" for images
	// computed in memory.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "1-bit", "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the pixel model carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// Opaque reports whether every pixel is fully opaque.
	Opaque bool `json:"opaque"`
}

// Info returns metadata about the image held by h.
//
// Color depth and alpha are derived from the decoded Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - *image.Paletted with two entries -> "1-bit"
//   - all other types -> "8-bit"
func Info(h *Handle) *ImageInfo {
	img := h.Image
	format := h.Format
	if format == "" {
		format = "unknown"
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch m := img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	case *image.Paletted:
		hasAlpha = paletteHasAlpha(m.Palette)
		if len(m.Palette) <= 2 {
			colorDepth = "1-bit"
		}
	}

	opaque := true
	if o, ok := img.(interface{ Opaque() bool }); ok {
		opaque = o.Opaque()
	}

	return &ImageInfo{
		Width:      h.Width(),
		Height:     h.Height(),
		Format:     format,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		Opaque:     opaque,
	}
}

func paletteHasAlpha(p color.Palette) bool {
	for _, c := range p {
		if _, _, _, a := c.RGBA(); a != 0xffff {
			return true
		}
	}
	return false
}
