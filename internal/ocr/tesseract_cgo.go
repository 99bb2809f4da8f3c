//go:build cgo

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract is the primary OCR backend, backed by the native Tesseract
// library through gosseract.
//
// A single gosseract client is not safe for concurrent use, so every call is
// serialized on a mutex. One Tesseract may be shared by many pipelines.
type Tesseract struct {
	language string
	tessdata string

	mu     sync.Mutex
	client *gosseract.Client

	initOnce sync.Once
	initErr  error
}

// NewTesseract creates the backend. tessdataPrefix may be empty, in which case
// a tessdata directory next to the binary is used when present and the
// library default otherwise.
func NewTesseract(language, tessdataPrefix string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{
		language: language,
		tessdata: resolveTessdata(tessdataPrefix, language),
		client:   gosseract.NewClient(),
	}
}

// resolveTessdata picks the trained data directory.
func resolveTessdata(prefix, language string) string {
	if prefix != "" {
		return prefix
	}

	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	if real, err := filepath.EvalSymlinks(exePath); err == nil {
		exePath = real
	}

	dir := filepath.Join(filepath.Dir(exePath), "tessdata")
	if _, err := os.Stat(filepath.Join(dir, language+".traineddata")); err == nil {
		return dir
	}
	return ""
}

// Name implements Engine.
func (t *Tesseract) Name() string { return "tesseract" }

// Available reports whether the library initializes with the configured
// language. The check runs once.
func (t *Tesseract) Available() bool {
	t.initOnce.Do(func() {
		blank := image.NewGray(image.Rect(0, 0, 16, 16))
		for i := range blank.Pix {
			blank.Pix[i] = 255
		}
		_, t.initErr = t.Recognize(context.Background(), blank, Options{PageSegMode: PSMSingleWord})
	})
	return t.initErr == nil
}

// Recognize runs Tesseract on img with the given page segmentation mode and
// whitelist.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, opts Options) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		return "", fmt.Errorf("tesseract client closed: %w", ErrUnavailable)
	}

	if t.tessdata != "" {
		if err := t.client.SetTessdataPrefix(t.tessdata); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := t.client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	psm := opts.PageSegMode
	if psm == 0 {
		psm = PSMSingleWord
	}
	if err := t.client.SetPageSegMode(gosseract.PageSegMode(psm)); err != nil {
		return "", fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := t.client.SetWhitelist(opts.Whitelist); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}

	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Info implements the diagnostics hook used by Describe.
func (t *Tesseract) Info() Info {
	info := Info{
		Name:      t.Name(),
		Available: t.Available(),
		Backend:   "gosseract",
	}
	if t.initErr != nil {
		info.Error = t.initErr.Error()
		return info
	}

	t.mu.Lock()
	if t.client != nil {
		info.Version = t.client.Version()
	}
	t.mu.Unlock()
	return info
}

// Close releases the native client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}
