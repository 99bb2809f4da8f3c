package pipeline

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/detection"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
	"github.com/ironsheep/plate-tools-mcp/internal/ocr"
	"github.com/ironsheep/plate-tools-mcp/internal/plate"
)

// ProgressFunc receives human-readable progress lines.
type ProgressFunc func(msg string)

// Pipeline detects and reads the plate of still images.
//
// A Pipeline holds no per-run state and may be used from several goroutines
// at once, provided its engines and progress callback are safe for that.
type Pipeline struct {
	tuning      config.Tuning
	recognizer  *ocr.Recognizer
	invocations []detection.Invocation
	progress    ProgressFunc
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithProgress sets the progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = fn }
}

// WithInvocations replaces detection.DefaultInvocations.
func WithInvocations(invocations []detection.Invocation) Option {
	return func(p *Pipeline) { p.invocations = invocations }
}

// New builds a pipeline around the two OCR backends. Either engine may be
// nil, in which case that backend never produces text.
func New(primary, secondary ocr.Engine, t config.Tuning, opts ...Option) *Pipeline {
	p := &Pipeline{
		tuning:      t,
		recognizer:  ocr.NewRecognizer(primary, secondary, t),
		invocations: detection.DefaultInvocations,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithProgress returns a copy of p reporting to fn. Engines are shared.
func (p *Pipeline) WithProgress(fn ProgressFunc) *Pipeline {
	cp := *p
	cp.progress = fn
	return &cp
}

// Recognizer returns the OCR recognizer of p.
func (p *Pipeline) Recognizer() *ocr.Recognizer { return p.recognizer }

func (p *Pipeline) logf(format string, args ...any) {
	if p.progress != nil {
		p.progress(fmt.Sprintf(format, args...))
	}
}

// Process loads the image at path and runs ProcessImage on it. A file that
// cannot be read or decoded yields a *LoadError.
func (p *Pipeline) Process(ctx context.Context, path string) (*Result, error) {
	img, err := imaging.LoadImage(path)
	if err != nil {
		p.logf("ERROR: could not load %s", path)
		return nil, &LoadError{Path: path, Err: err}
	}
	p.logf("Image loaded: %s", filepath.Base(path))

	res, err := p.ProcessImage(ctx, img)
	if res != nil {
		res.Path = path
	}
	return res, err
}

// ProcessImage runs the full sequence on img: preprocessing, candidate
// detection, preliminary validation, then letter isolation, recognition and
// final validation per candidate until one is accepted.
//
// Stage failures never abort the run; they are recorded in Result.Warnings.
// A nil error with a nil Result.Record means no plate was found. The only
// errors are ErrNoImage and the context error when ctx ends between
// candidates.
func (p *Pipeline) ProcessImage(ctx context.Context, img image.Image) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNoImage
	}

	original := imaging.ToNRGBA(img)
	w, h := original.Rect.Dx(), original.Rect.Dy()
	res := &Result{
		RunID:  uuid.NewString(),
		Width:  w,
		Height: h,
		State:  StateIdle,
		Image:  original,
	}
	p.logf("Dimensions: %dx%d pixels", w, h)

	res.Candidates = p.detectAndScreen(ctx, original, res)

	p.logf("%d candidate(s) left after all filters", len(res.Candidates))
	if len(res.Candidates) > 0 {
		p.logf("Candidates by size (smallest first):")
		for i, c := range res.Candidates {
			pct := float64(c.Area) / float64(w*h) * 100
			p.logf("  %d. %dx%d (area: %d, %.1f%% of image) - %s", i+1, c.Bounds.Width(), c.Bounds.Height(), c.Area, pct, c.Method)
		}
	} else {
		p.logf("WARNING: no candidate passed the filters")
	}

	if err := p.recognize(ctx, res.Candidates, res); err != nil {
		return res, err
	}
	return res, nil
}

// detectAndScreen produces the validated candidates. A panic anywhere in
// detection or screening is recovered into the whole-image fallback carrying
// the full image as its crop, so recognition still gets a chance.
func (p *Pipeline) detectAndScreen(ctx context.Context, original *image.NRGBA, res *Result) (validated []ValidatedCandidate) {
	defer func() {
		if r := recover(); r != nil {
			res.warn("detection", fmt.Errorf("recovered: %v", r))
			p.logf("ERROR in detection: %v", r)
			fb := detection.Fallback(res.Width, res.Height, p.tuning.Detection)
			fb.Source = "error"
			validated = []ValidatedCandidate{{Candidate: fb, Crop: original}}
		}
	}()

	det := p.detect(original, res)
	validated = p.screen(ctx, original, det, res)
	if limit := p.tuning.Preliminary.MaxRecognitionCandidates; len(validated) > limit {
		validated = validated[:limit]
	}
	return validated
}

// Detection is the outcome of preprocessing and candidate search.
type Detection struct {
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Strategies []StrategySummary     `json:"strategies"`
	Candidates []detection.Candidate `json:"candidates"`

	Representations *imaging.RepresentationSet `json:"-"`
}

// StrategySummary reports what one strategy invocation found.
type StrategySummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// Detect preprocesses img and returns its consolidated candidates, ordered
// by ascending area, without any OCR. The list is never empty.
func (p *Pipeline) Detect(img image.Image) (*Detection, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrNoImage
	}
	original := imaging.ToNRGBA(img)
	res := &Result{Width: original.Rect.Dx(), Height: original.Rect.Dy()}
	return p.detect(original, res), nil
}

func (p *Pipeline) detect(original *image.NRGBA, res *Result) *Detection {
	p.logf("Starting candidate detection")
	p.logf("Preprocessing: bilateral smoothing, grayscale, CLAHE, Otsu, adaptive threshold, Canny edges, morphology (close + open)")

	set := imaging.Preprocess(original, p.tuning.Preprocess)
	if set.Err != nil {
		res.warn("preprocess", set.Err)
	}
	res.Representations = set
	res.State = StatePreprocessed

	det := &Detection{Width: res.Width, Height: res.Height, Representations: set}

	results := detection.RunStrategies(set, p.invocations, p.tuning.Detection)
	for _, r := range results {
		s := StrategySummary{Name: r.Name, Count: len(r.Candidates)}
		if r.Err != nil {
			s.Error = r.Err.Error()
			res.warn("detect "+r.Name, r.Err)
		}
		det.Strategies = append(det.Strategies, s)
	}

	det.Candidates = detection.ConsolidateOrFallback(detection.Collect(results), res.Width, res.Height, p.tuning.Detection)
	if len(det.Candidates) == 1 && det.Candidates[0].Method == detection.MethodFallback {
		p.logf("WARNING: no candidate detected, using the whole image")
	}
	res.State = StateCandidatesFound
	return det
}

// recognize runs the full OCR pass over the validated candidates in order and
// stops at the first accepted plate.
func (p *Pipeline) recognize(ctx context.Context, candidates []ValidatedCandidate, res *Result) error {
	res.State = StateValidating

	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			res.State = StateRejected
			return err
		}

		p.logf("Processing candidate %d/%d", i+1, len(candidates))
		if rec := p.recognizeOne(ctx, i, c, res); rec != nil {
			res.Record = rec
			res.State = StateAccepted
			p.logf("  Plate found, stopping")
			if rest := len(candidates) - i - 1; rest > 0 {
				p.logf("Skipping %d remaining candidate(s)", rest)
			}
			return nil
		}
	}

	res.State = StateRejected
	return nil
}

// recognizeOne isolates, reads and validates one candidate. It returns nil
// when the candidate is rejected or fails.
func (p *Pipeline) recognizeOne(ctx context.Context, index int, c ValidatedCandidate, res *Result) (rec *PlateRecord) {
	defer func() {
		if r := recover(); r != nil {
			res.warn(fmt.Sprintf("candidate %d", index+1), fmt.Errorf("recovered: %v", r))
			p.logf("  ERROR processing candidate: %v", r)
			rec = nil
		}
	}()

	if c.Crop == nil {
		p.logf("  Plate image not available, skipping")
		return nil
	}
	cb := c.Crop.Bounds()
	p.logf("  Dimensions: %dx%d", cb.Dx(), cb.Dy())
	p.logf("  Detection method: %s", c.Method)

	reading := p.recognizer.Full(ctx, c.Crop)
	for _, err := range reading.Failures {
		res.warn(fmt.Sprintf("candidate %d ocr", index+1), err)
	}
	p.logf("  %s raw: '%s'", p.recognizer.Primary.Name(), reading.Primary)
	p.logf("  %s raw: '%s'", p.recognizer.Secondary.Name(), reading.Secondary)

	primary := BackendText{Raw: reading.Primary, Final: plate.Normalize(reading.Primary)}
	secondary := BackendText{Raw: reading.Secondary, Final: plate.Normalize(reading.Secondary)}
	p.logf("  %s final: '%s'", p.recognizer.Primary.Name(), primary.Final)
	p.logf("  %s final: '%s'", p.recognizer.Secondary.Name(), secondary.Final)

	best := secondary.Final
	if best == "" {
		best = primary.Final
	}

	v := plate.FinalValidate(best, c.Score, p.tuning.Validation)
	if !v.Valid {
		p.logf("  Not a valid plate (confidence: %.1f%%)", v.Confidence*100)
		return nil
	}
	p.logf("  VALID PLATE %s, confidence: %.1f%%", best, v.Confidence*100)

	rec = newRecord(index, c, best, v.Pattern, v.Confidence, primary, secondary)
	rec.Mask = reading.Mask
	return rec
}

// Summary is a one-line description of the result for logs.
func (r *Result) Summary() string {
	var b strings.Builder
	if r.Path != "" {
		fmt.Fprintf(&b, "%s: ", filepath.Base(r.Path))
	}
	if r.Record == nil {
		fmt.Fprintf(&b, "no plate (%d candidate(s))", len(r.Candidates))
		return b.String()
	}
	fmt.Fprintf(&b, "%s (%s, %.1f%%)", r.Record.Text, r.Record.Format, r.Record.Confidence*100)
	return b.String()
}
