package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/spakin/netpbm"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Container format tags as reported by DetectFormat and accepted by Encode.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpg"
	FormatGIF  = "gif"
	FormatBMP  = "bmp"
	FormatTIFF = "tiff"
	FormatWebP = "webp"
	FormatPBM  = "pbm"
	FormatPGM  = "pgm"
	FormatPPM  = "ppm"
	FormatPAM  = "pam"
)

var (
	// ErrUnsupportedFormat is returned when input bytes are not a recognizable image.
	ErrUnsupportedFormat = errors.New("image format not supported")

	// ErrFormatNotSupported is returned when an image cannot be encoded into the
	// requested container format.
	ErrFormatNotSupported = errors.New("image format output not supported")
)

// DetectFormat sniffs the container format from the leading bytes of data.
//
// The file name or URL the bytes came from is never consulted. An empty string
// means the format could not be identified.
func DetectFormat(data []byte) string {
	if f := netpbmFormat(data); f != "" {
		return f
	}

	switch ext := strings.TrimPrefix(mimetype.Detect(data).Extension(), "."); ext {
	case FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF, FormatWebP:
		return ext
	}
	return ""
}

// netpbmFormat recognizes the "P1".."P7" magic numbers followed by whitespace.
func netpbmFormat(data []byte) string {
	if len(data) < 3 || data[0] != 'P' {
		return ""
	}
	switch data[2] {
	case ' ', '\t', '\n', '\r':
	default:
		return ""
	}
	switch data[1] {
	case '1', '4':
		return FormatPBM
	case '2', '5':
		return FormatPGM
	case '3', '6':
		return FormatPPM
	case '7':
		return FormatPAM
	}
	return ""
}

// Decode sniffs and decodes image bytes into a Handle.
//
// JPEG images are rotated according to their EXIF orientation tag.
func Decode(data []byte) (*Handle, error) {
	format := DetectFormat(data)
	if format == "" {
		return nil, ErrUnsupportedFormat
	}

	var img image.Image
	switch format {
	case FormatPBM, FormatPGM, FormatPPM, FormatPAM:
		pnm, err := netpbm.Decode(bytes.NewReader(data), nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
		}
		img = pnm
	default:
		decoded, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
		}
		img = decoded
	}

	return NewHandle(img, format)
}

// FormatFromPath returns the lower-cased extension of path without the dot,
// or "" when path has no extension.
func FormatFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Encode writes img to w in the given container format.
//
// jpg, jpeg, png, gif, tif, tiff and bmp are encoded with disintegration/imaging;
// pbm, pgm, ppm and pam with netpbm. jpegQuality is ignored for other formats
// and defaults to 95 when not in 1-100. Any other format yields an error
// wrapping ErrFormatNotSupported.
func Encode(w io.Writer, img image.Image, format string, jpegQuality int) error {
	format = strings.ToLower(format)

	var pnm netpbm.Format
	switch format {
	case FormatPBM:
		pnm = netpbm.PBM
	case FormatPGM:
		pnm = netpbm.PGM
	case FormatPPM:
		pnm = netpbm.PPM
	case FormatPAM:
		pnm = netpbm.PAM
	default:
		f, err := imaging.FormatFromExtension(format)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrFormatNotSupported, format)
		}
		if jpegQuality < 1 || jpegQuality > 100 {
			jpegQuality = 95
		}
		if err := imaging.Encode(w, img, f, imaging.JPEGQuality(jpegQuality)); err != nil {
			return fmt.Errorf("failed to encode %s image: %w", format, err)
		}
		return nil
	}

	maxValue := uint16(255)
	if pnm == netpbm.PBM {
		maxValue = 1
	}
	if err := netpbm.Encode(w, img, &netpbm.EncodeOptions{Format: pnm, MaxValue: maxValue}); err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}
