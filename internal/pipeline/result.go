package pipeline

import (
	"fmt"
	"image"

	"github.com/ironsheep/plate-tools-mcp/internal/detection"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
	"github.com/ironsheep/plate-tools-mcp/internal/plate"
)

// State is the position of a run in the processing sequence.
type State string

const (
	StateIdle            State = "idle"
	StatePreprocessed    State = "preprocessed"
	StateCandidatesFound State = "candidates_found"
	StateValidating      State = "validating"
	StateAccepted        State = "accepted"
	StateRejected        State = "rejected"
)

// ValidatedCandidate is a candidate that survived the preliminary OCR screen.
type ValidatedCandidate struct {
	detection.Candidate

	// Confidence blends the detection score with the quick text score.
	Confidence float64 `json:"confidence"`

	// PreliminaryText is the quick-pass text, secondary backend first.
	PreliminaryText string `json:"preliminary_text"`

	// Crop is the margin-expanded region cut from the original image.
	Crop image.Image `json:"-"`
}

// BackendText is what one backend read for the accepted candidate.
type BackendText struct {
	Raw   string `json:"raw"`
	Final string `json:"final"`
}

// PlateRecord is the accepted plate of an image.
type PlateRecord struct {
	Text              string           `json:"text"`
	Format            plate.Format     `json:"format"`
	Confidence        float64          `json:"confidence"`
	PatternConfidence float64          `json:"pattern_confidence"`
	Bounds            detection.Bounds `json:"bbox"`
	Method            detection.Method `json:"method"`
	Score             float64          `json:"score"`
	Dimensions        string           `json:"dimensions"`
	AspectRatio       float64          `json:"aspect_ratio"`
	Area              int              `json:"area"`
	CandidateIndex    int              `json:"candidate_index"`
	Primary           BackendText      `json:"primary"`
	Secondary         BackendText      `json:"secondary"`

	Crop image.Image `json:"-"`
	Mask *image.Gray `json:"-"`
}

// Result is the outcome of one run. Record is nil when no candidate was
// accepted.
type Result struct {
	RunID      string               `json:"run_id"`
	Path       string               `json:"path,omitempty"`
	Width      int                  `json:"width"`
	Height     int                  `json:"height"`
	State      State                `json:"state"`
	Candidates []ValidatedCandidate `json:"candidates"`
	Record     *PlateRecord         `json:"record,omitempty"`
	Warnings   []string             `json:"warnings,omitempty"`

	// Errors holds the StageErrors behind Warnings.
	Errors []error `json:"-"`

	Image           image.Image                `json:"-"`
	Representations *imaging.RepresentationSet `json:"-"`
}

func (r *Result) warn(stage string, err error) {
	se := &StageError{Stage: stage, Err: err}
	r.Errors = append(r.Errors, se)
	r.Warnings = append(r.Warnings, se.Error())
}

// Plate returns the accepted text, or "" when nothing was accepted.
func (r *Result) Plate() string {
	if r.Record == nil {
		return ""
	}
	return r.Record.Text
}

func newRecord(index int, c ValidatedCandidate, text string, pattern, confidence float64, primary, secondary BackendText) *PlateRecord {
	b := c.Bounds
	return &PlateRecord{
		Text:              text,
		Format:            plate.Classify(text),
		Confidence:        confidence,
		PatternConfidence: pattern,
		Bounds:            b,
		Method:            c.Method,
		Score:             c.Score,
		Dimensions:        fmt.Sprintf("%dx%d", b.Width(), b.Height()),
		AspectRatio:       c.AspectRatio,
		Area:              c.Area,
		CandidateIndex:    index,
		Primary:           primary,
		Secondary:         secondary,
		Crop:              c.Crop,
	}
}
