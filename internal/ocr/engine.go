package ocr

import (
	"context"
	"errors"
	"image"
)

// ErrUnavailable is returned by engines whose backend is not installed,
// not configured, or not compiled in.
var ErrUnavailable = errors.New("ocr backend unavailable")

// PlateChars is the whitelist used for plate text.
const PlateChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PageSegMode selects how an engine segments the page. Values match
// Tesseract's page segmentation modes; engines without the concept ignore it.
type PageSegMode int

const (
	PSMSingleLine PageSegMode = 7
	PSMSingleWord PageSegMode = 8
	PSMRawLine    PageSegMode = 13
)

// Options configures one recognition call.
type Options struct {
	PageSegMode PageSegMode
	// Whitelist restricts recognized characters; empty allows all.
	Whitelist string
}

// Engine is a text recognition backend.
//
// Implementations must be safe for concurrent use. Recognize returns the raw
// text the backend produced; callers clean and normalize it.
type Engine interface {
	Name() string
	Available() bool
	Recognize(ctx context.Context, img image.Image, opts Options) (string, error)
}

// Info describes the state of an engine for diagnostics.
type Info struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend,omitempty"`
}

// Describe returns diagnostics for e. Engines that know more about
// themselves implement Info() Info.
func Describe(e Engine) Info {
	if d, ok := e.(interface{ Info() Info }); ok {
		return d.Info()
	}
	return Info{Name: e.Name(), Available: e.Available()}
}

// Unavailable is an Engine that never recognizes anything. It stands in for a
// backend that is disabled so the pipeline can run with the other one.
type Unavailable struct {
	EngineName string
	Reason     string
}

func (u Unavailable) Name() string    { return u.EngineName }
func (u Unavailable) Available() bool { return false }

func (u Unavailable) Recognize(context.Context, image.Image, Options) (string, error) {
	return "", ErrUnavailable
}

func (u Unavailable) Info() Info {
	return Info{Name: u.EngineName, Available: false, Error: u.Reason}
}
