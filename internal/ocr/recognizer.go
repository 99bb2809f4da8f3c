package ocr

import (
	"context"
	"fmt"
	"image"
	"unicode/utf8"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
	"github.com/ironsheep/plate-tools-mcp/internal/plate"
)

// Reading holds the cleaned text each backend produced for one crop.
type Reading struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`

	// Mask is the isolated-letter mask of a full pass; nil for quick passes.
	Mask *image.Gray `json:"-"`

	// Failures lists attempts that returned an error or panicked.
	Failures []error `json:"-"`
}

// Recognizer runs the OCR attempt sets of both backends over plate crops.
//
// Primary is the Tesseract-style engine that understands page segmentation
// modes and whitelists; Secondary is the general-purpose reader. Either may be
// an Unavailable engine, in which case its text is always empty.
type Recognizer struct {
	Primary   Engine
	Secondary Engine

	Recognition  config.RecognitionTuning
	Isolation    config.IsolationTuning
	QuickUpscale int
}

// NewRecognizer builds a recognizer from the engines and tuning.
func NewRecognizer(primary, secondary Engine, t config.Tuning) *Recognizer {
	if primary == nil {
		primary = Unavailable{EngineName: "primary"}
	}
	if secondary == nil {
		secondary = Unavailable{EngineName: "secondary"}
	}
	return &Recognizer{
		Primary:      primary,
		Secondary:    secondary,
		Recognition:  t.Recognition,
		Isolation:    t.Isolation,
		QuickUpscale: t.Preliminary.QuickUpscale,
	}
}

// attempt is one OCR call: an image variant and its options. build is lazy so
// a variant that fails to build only skips that attempt.
type attempt struct {
	name  string
	build func() image.Image
	opts  Options
}

// Full runs the complete attempt sets on a validated candidate crop.
//
// Primary reads the isolated mask under single word, single line and raw
// line modes with the plate whitelist, then a 3x upscaled CLAHE+Otsu variant
// and an inverted Otsu variant upscaled 3x. Secondary reads the mask, the 3x
// upscaled crop and a 3x upscaled CLAHE variant. Per backend, texts of at
// least MinLength characters are collected and the longest wins.
func (r *Recognizer) Full(ctx context.Context, crop image.Image) Reading {
	rt := r.Recognition
	var reading Reading

	var gray *image.Gray
	func() {
		defer func() {
			if p := recover(); p != nil {
				reading.Failures = append(reading.Failures, fmt.Errorf("isolation: %v", p))
			}
		}()
		gray = imaging.ToGray(crop)
		reading.Mask = Isolate(crop, r.Isolation)
	}()

	mask := func() image.Image {
		if reading.Mask == nil {
			panic("no isolated mask")
		}
		return reading.Mask
	}
	word := Options{PageSegMode: PSMSingleWord}

	primary := []attempt{
		{"mask/psm8", mask, Options{PageSegMode: PSMSingleWord, Whitelist: PlateChars}},
		{"mask/psm7", mask, Options{PageSegMode: PSMSingleLine, Whitelist: PlateChars}},
		{"mask/psm13", mask, Options{PageSegMode: PSMRawLine, Whitelist: PlateChars}},
		{"clahe-otsu", func() image.Image {
			return imaging.Otsu(imaging.CLAHE(imaging.UpscaleGray(gray, rt.Upscale), rt.CLAHEClipA, isolationTiles), false)
		}, word},
		{"inverted-otsu", func() image.Image {
			return imaging.UpscaleGray(imaging.Otsu(gray, true), rt.Upscale)
		}, word},
	}
	secondary := []attempt{
		{"mask", mask, Options{}},
		{"upscaled", func() image.Image { return imaging.Upscale(crop, rt.Upscale) }, Options{}},
		{"clahe", func() image.Image {
			return imaging.UpscaleGray(imaging.CLAHE(gray, rt.CLAHEClipB, isolationTiles), rt.Upscale)
		}, Options{}},
	}

	var errs []error
	reading.Primary, errs = longest(ctx, r.Primary, primary, rt.MinLength)
	reading.Failures = append(reading.Failures, errs...)
	reading.Secondary, errs = longest(ctx, r.Secondary, secondary, rt.MinLength)
	reading.Failures = append(reading.Failures, errs...)
	return reading
}

// Quick is the cheap pass used to screen candidates. Primary reads the gray
// crop, a QuickUpscale enlargement and an Otsu binarization under single
// word mode; Secondary reads the crop as is. The longest text per backend is
// returned without a length floor.
func (r *Recognizer) Quick(ctx context.Context, crop image.Image) Reading {
	var reading Reading
	gray := imaging.ToGray(crop)
	word := Options{PageSegMode: PSMSingleWord}

	primary := []attempt{
		{"gray", func() image.Image { return gray }, word},
		{"upscaled", func() image.Image { return imaging.UpscaleGray(gray, r.QuickUpscale) }, word},
		{"otsu", func() image.Image { return imaging.Otsu(gray, false) }, word},
	}
	secondary := []attempt{
		{"raw", func() image.Image { return crop }, Options{}},
	}

	var errs []error
	reading.Primary, errs = longest(ctx, r.Primary, primary, 0)
	reading.Failures = append(reading.Failures, errs...)
	reading.Secondary, errs = longest(ctx, r.Secondary, secondary, 0)
	reading.Failures = append(reading.Failures, errs...)
	return reading
}

// longest runs every attempt through e and returns the longest cleaned text
// with at least minLen characters. Ties keep the earliest attempt. Failing
// attempts are skipped and reported.
func longest(ctx context.Context, e Engine, attempts []attempt, minLen int) (string, []error) {
	if !e.Available() {
		return "", nil
	}

	var best string
	var errs []error
	for _, a := range attempts {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", e.Name(), a.name, ctx.Err()))
			break
		}
		text, err := run(ctx, e, a)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", e.Name(), a.name, err))
			continue
		}
		text = plate.CleanOCR(text)
		n := utf8.RuneCountInString(text)
		if n >= minLen && n > utf8.RuneCountInString(best) {
			best = text
		}
	}
	return best, errs
}

// run builds the variant and recognizes it, converting a panic into an error.
func run(ctx context.Context, e Engine, a attempt) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return e.Recognize(ctx, a.build(), a.opts)
}
