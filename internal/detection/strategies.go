package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

// ErrMissingRepresentation is returned when a strategy's input was not
// produced by preprocessing.
var ErrMissingRepresentation = errors.New("representation not available")

// DetectContours finds plate-shaped outer contours in a binary image.
//
// # Algorithm
//
//  1. Dilate once with a small square kernel to join broken strokes
//  2. Fill every enclosed hole so each outer contour becomes one solid blob
//  3. Label the blobs (8-connected); each blob is one external contour with
//     its bounding box and enclosed area
//  4. Keep blobs that satisfy the constraint table and score them
func DetectContours(bin *image.Gray, t config.DetectionTuning) []Candidate {
	dilated := imaging.Dilate(bin, imaging.Rect(t.ContourDilate, t.ContourDilate), 1)
	return fromBlobs(imaging.FillHoles(dilated), t, MethodContours, -1)
}

// DetectComponents emits a candidate for every 8-connected component of a
// binary image that satisfies the constraint table. No contour step is
// involved: the component's own pixel count is its area.
func DetectComponents(bin *image.Gray, t config.DetectionTuning) []Candidate {
	return fromBlobs(bin, t, MethodComponents, -1)
}

// DetectEdges dilates an edge map aggressively to bridge broken glyph
// outlines, then extracts outer contours like DetectContours. Every candidate
// carries the fixed edge score.
func DetectEdges(edges *image.Gray, t config.DetectionTuning) []Candidate {
	dilated := imaging.Dilate(edges, imaging.Rect(t.EdgeDilate, t.EdgeDilate), t.EdgeDilateIterations)
	return fromBlobs(imaging.FillHoles(dilated), t, MethodEdges, t.EdgeScore)
}

// fromBlobs converts the components of g into candidates. A negative
// fixedScore means "use Score".
func fromBlobs(g *image.Gray, t config.DetectionTuning, method Method, fixedScore float64) []Candidate {
	comps, _ := imaging.ConnectedComponents(g)

	var out []Candidate
	for _, c := range comps {
		aspect, ok := satisfies(t, c.Area, c.Width(), c.Height())
		if !ok {
			continue
		}
		score := fixedScore
		if score < 0 {
			score = Score(t, c.Area, aspect)
		}
		out = append(out, Candidate{
			Bounds:      BoundsFromRect(c.Bounds),
			Area:        c.Area,
			AspectRatio: aspect,
			Score:       score,
			Method:      method,
		})
	}
	return out
}

// Strategy is one of the three detection strategies.
type Strategy func(*image.Gray, config.DetectionTuning) []Candidate

// Invocation pairs a strategy with the representation it scans.
type Invocation struct {
	Method   Method
	Source   imaging.Representation
	Strategy Strategy
}

// Name is "<method>/<representation>".
func (inv Invocation) Name() string {
	return fmt.Sprintf("%s/%s", inv.Method, inv.Source)
}

// DefaultInvocations is the fixed detection plan: contours over three
// binarizations, components over two, edges over the Canny map. Different
// thresholds succeed under different lighting, so the overlap is intended.
var DefaultInvocations = []Invocation{
	{MethodContours, imaging.RepMorphOpened, DetectContours},
	{MethodContours, imaging.RepBinaryAdaptive, DetectContours},
	{MethodContours, imaging.RepBinaryOtsu, DetectContours},
	{MethodComponents, imaging.RepBinaryAdaptive, DetectComponents},
	{MethodComponents, imaging.RepMorphOpened, DetectComponents},
	{MethodEdges, imaging.RepEdges, DetectEdges},
}

// StrategyResult is the outcome of one invocation. A failed invocation has a
// non-nil Err and no candidates; it never affects the others.
type StrategyResult struct {
	Name       string      `json:"name"`
	Candidates []Candidate `json:"candidates"`
	Err        error       `json:"-"`
}

// Run executes one invocation against a representation set, converting a
// missing input or a panic into Err.
func (inv Invocation) Run(set *imaging.RepresentationSet, t config.DetectionTuning) (res StrategyResult) {
	res.Name = inv.Name()
	defer func() {
		if r := recover(); r != nil {
			res.Candidates = nil
			res.Err = fmt.Errorf("strategy %s panicked: %v", res.Name, r)
		}
	}()

	bin, ok := set.Gray(inv.Source)
	if !ok {
		res.Err = fmt.Errorf("strategy %s: %w", res.Name, ErrMissingRepresentation)
		return res
	}

	res.Candidates = inv.Strategy(bin, t)
	for i := range res.Candidates {
		res.Candidates[i].Source = string(inv.Source)
	}
	return res
}

// RunStrategies executes every invocation in order and returns one result
// per invocation.
func RunStrategies(set *imaging.RepresentationSet, invocations []Invocation, t config.DetectionTuning) []StrategyResult {
	results := make([]StrategyResult, 0, len(invocations))
	for _, inv := range invocations {
		results = append(results, inv.Run(set, t))
	}
	return results
}

// Collect concatenates the candidates of all results in invocation order.
func Collect(results []StrategyResult) []Candidate {
	var all []Candidate
	for _, r := range results {
		all = append(all, r.Candidates...)
	}
	return all
}
