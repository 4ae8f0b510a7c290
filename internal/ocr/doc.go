// Package ocr provides Optical Character Recognition (OCR) functionality using Tesseract.
//
// This package wraps the Tesseract OCR engine (via gosseract/v2) to extract text
// and word bounding boxes from in-memory images.
//
// # Prerequisites
//
// The engine is only compiled in when cgo is enabled. Tesseract and its
// language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// Set TESSDATA_PREFIX when the language data lives outside the default
// location. Without cgo every call fails with ErrUnavailable.
//
// # Supported Languages
//
// The default language is English ("eng"). Other languages can be specified
// using their Tesseract language codes, e.g. "deu", "fra" or "chi_sim".
// Several languages may be combined with '+', as in "eng+deu".
package ocr
