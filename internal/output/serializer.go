// Package output writes the final result of a command: images as encoded
// container bytes, everything else as JSON.
package output

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"

	"github.com/ironsheep/image-tools/internal/action"
	"github.com/ironsheep/image-tools/internal/imaging"
	"github.com/ironsheep/image-tools/internal/logging"
	"github.com/ironsheep/image-tools/internal/textenc"
)

// Target is where a result goes.
type Target struct {
	// Path is the output file. Empty means Stdout.
	Path string

	// Format is the image format used when Path has no extension.
	Format string

	Stdout io.Writer
}

// Serializer encodes results.
type Serializer struct {
	// JPEGQuality is passed to the JPEG encoder (1-100).
	JPEGQuality int
}

// ImageFormat picks the container format of an image result: the extension
// of t.Path, else t.Format, else the format of the image itself, else that of
// fallback (the command's input image), else png.
func ImageFormat(img, fallback *imaging.Handle, t Target) string {
	for _, f := range []string{imaging.FormatFromPath(t.Path), t.Format} {
		if f != "" {
			return f
		}
	}
	if img != nil && img.Format != "" {
		return img.Format
	}
	if fallback != nil && fallback.Format != "" {
		return fallback.Format
	}
	return imaging.FormatPNG
}

// Encode returns the bytes of res: an encoded image, or JSON in the local
// text encoding.
func (s *Serializer) Encode(res action.Result, fallback *imaging.Handle, t Target) ([]byte, error) {
	if res.IsImage() {
		format := ImageFormat(res.Image, fallback, t)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, res.Image.Image, format, s.JPEGQuality); err != nil {
			return nil, &action.ParameterError{
				Param: action.ReservedOutput,
				Msg:   "Image format output not supported: " + format,
				Err:   err,
			}
		}
		logging.Debug("Encoded image", "format", format, "bytes", buf.Len())
		return buf.Bytes(), nil
	}

	data, err := json.Marshal(res.Value)
	if err != nil {
		return nil, action.Wrap(err, "unable to encode result as JSON")
	}
	return textenc.Encode(string(data)), nil
}

// Write encodes res and writes it to t.
//
// A file receives the raw bytes, and only once encoding has succeeded, so a
// failure never leaves a partial file behind. Standard output receives
// images as one line of Base64 and JSON as is, each followed by a newline.
func (s *Serializer) Write(res action.Result, fallback *imaging.Handle, t Target) error {
	data, err := s.Encode(res, fallback, t)
	if err != nil {
		return err
	}

	if t.Path != "" {
		if err := os.WriteFile(t.Path, data, 0o644); err != nil {
			return action.Wrap(err, "unable to write output")
		}
		logging.Debug("Wrote output", "path", t.Path, "bytes", len(data))
		return nil
	}

	w := t.Stdout
	if w == nil {
		w = os.Stdout
	}
	if res.IsImage() {
		data = []byte(base64.StdEncoding.EncodeToString(data))
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return action.Wrap(err, "unable to write output")
	}
	return nil
}
