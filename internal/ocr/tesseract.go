//go:build !cgo

package ocr

import (
	"context"
	"fmt"
	"image"
)

// Tesseract is the primary OCR backend. This build has no cgo, so the native
// library cannot be linked and every call reports ErrUnavailable.
type Tesseract struct {
	language string
}

// NewTesseract creates the backend.
func NewTesseract(language, tessdataPrefix string) *Tesseract {
	return &Tesseract{language: language}
}

func (t *Tesseract) Name() string    { return "tesseract" }
func (t *Tesseract) Available() bool { return false }

func (t *Tesseract) Recognize(context.Context, image.Image, Options) (string, error) {
	return "", fmt.Errorf("tesseract requires cgo: %w", ErrUnavailable)
}

func (t *Tesseract) Info() Info {
	return Info{
		Name:    t.Name(),
		Backend: "gosseract",
		Error:   "built without cgo (CGO_ENABLED=1 required)",
	}
}

func (t *Tesseract) Close() error { return nil }
