//go:build !cgo

package ocr

import "image"

func tesseract(image.Image, string) (*Result, error) {
	return nil, ErrUnavailable
}
