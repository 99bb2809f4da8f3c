package detection

import (
	"image"
	"math"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
//
// The coordinate convention follows standard image bounds:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"` // Left edge (inclusive)
	Y1 int `json:"y1"` // Top edge (inclusive)
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// BoundsFromRect converts an image.Rectangle.
func BoundsFromRect(r image.Rectangle) Bounds {
	return Bounds{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// Rect converts b to an image.Rectangle.
func (b Bounds) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Width is X2 - X1.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height is Y2 - Y1.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Area is Width * Height.
func (b Bounds) Area() int { return b.Width() * b.Height() }

// IoU returns the intersection-over-union of two boxes. Boxes that only touch
// or do not overlap return 0. A tiny epsilon in the denominator keeps
// degenerate boxes finite.
func (b Bounds) IoU(o Bounds) float64 {
	ix1, iy1 := max(b.X1, o.X1), max(b.Y1, o.Y1)
	ix2, iy2 := min(b.X2, o.X2), min(b.Y2, o.Y2)
	if ix1 >= ix2 || iy1 >= iy2 {
		return 0
	}
	inter := float64((ix2 - ix1) * (iy2 - iy1))
	return inter / (float64(b.Area()) + float64(o.Area()) - inter + 1e-5)
}

// Expand grows b by margin pixels on every side, clamped to a width x height
// frame.
func (b Bounds) Expand(margin, width, height int) Bounds {
	return Bounds{
		X1: max(0, b.X1-margin),
		Y1: max(0, b.Y1-margin),
		X2: min(width, b.X2+margin),
		Y2: min(height, b.Y2+margin),
	}
}

// Method identifies the strategy that produced a candidate.
type Method string

const (
	MethodContours   Method = "contours"
	MethodComponents Method = "components"
	MethodEdges      Method = "edges"
	MethodFallback   Method = "fallback"
)

// Candidate is a rectangular region hypothesized to contain a plate.
type Candidate struct {
	// Bounds is the bounding box in image coordinates.
	Bounds Bounds `json:"bbox"`

	// Area is the region's pixel area (filled shape area for contour-based
	// strategies, component pixel count for the component strategy).
	Area int `json:"area"`

	// AspectRatio is bounding box width / height.
	AspectRatio float64 `json:"aspect_ratio"`

	// Score is the heuristic plausibility in [0, 1].
	Score float64 `json:"score"`

	// Method is the producing strategy.
	Method Method `json:"method"`

	// Source names the representation the strategy scanned.
	Source string `json:"source,omitempty"`
}

// Fallback returns the synthetic whole-image candidate used when no strategy
// produced anything.
func Fallback(width, height int, t config.DetectionTuning) Candidate {
	aspect := 0.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	return Candidate{
		Bounds:      Bounds{X1: 0, Y1: 0, X2: width, Y2: height},
		Area:        width * height,
		AspectRatio: aspect,
		Score:       t.FallbackScore,
		Method:      MethodFallback,
	}
}

// Score computes the additive plausibility heuristic:
//
//	base + aspectBonus*[aspect in range] + areaBonus*[area in range]
//
// capped at 1.0.
func Score(t config.DetectionTuning, area int, aspect float64) float64 {
	score := t.ScoreBase
	if aspect >= t.ScoreAspectMin && aspect <= t.ScoreAspectMax {
		score += t.ScoreAspectBonus
	}
	if a := float64(area); a >= t.ScoreAreaMin && a <= t.ScoreAreaMax {
		score += t.ScoreAreaBonus
	}
	return math.Min(score, 1.0)
}

// satisfies applies the geometric constraint table. It returns the aspect
// ratio of the box when every bound holds.
func satisfies(t config.DetectionTuning, area, width, height int) (float64, bool) {
	if a := float64(area); a < t.AreaMin || a > t.AreaMax {
		return 0, false
	}
	if width < t.WidthMin || width > t.WidthMax {
		return 0, false
	}
	if height < t.HeightMin || height > t.HeightMax || height == 0 {
		return 0, false
	}
	aspect := float64(width) / float64(height)
	if aspect < t.AspectMin || aspect > t.AspectMax {
		return 0, false
	}
	return aspect, true
}
