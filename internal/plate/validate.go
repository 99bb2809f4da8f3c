package plate

import (
	"strings"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
)

// Format is the plate layout a text matches.
type Format string

const (
	FormatMercosul Format = "mercosul"
	FormatLegacy   Format = "legacy"
	FormatUnknown  Format = "unknown"
)

// Classify reports the format of a plate string, with or without hyphen.
func Classify(text string) Format {
	t := strings.ReplaceAll(text, "-", "")
	switch {
	case mercosulExact.MatchString(t):
		return FormatMercosul
	case legacyExact.MatchString(t):
		return FormatLegacy
	default:
		return FormatUnknown
	}
}

// Validation is the outcome of FinalValidate.
type Validation struct {
	// Valid is true when Confidence reaches the acceptance threshold.
	Valid bool `json:"valid"`

	// Pattern is the pattern confidence before blending.
	Pattern float64 `json:"pattern_confidence"`

	// Confidence is PatternWeight*Pattern + DetectionWeight*detection score.
	Confidence float64 `json:"confidence"`
}

// PatternConfidence grades how well text (hyphens ignored) fits a plate.
//
// Text of 7 characters scores 1.0 for an exact Mercosul match and 0.9 for an
// exact legacy match. Other 7-character texts that start with two or three
// letters score 0.7 with at least 3 digits or 0.5 with at least 2; those that
// do not score 0.4 with at least 2 letters and 2 digits. Texts of 6 or 8
// characters score 0.5 with at least 2 letters and 2 digits. Everything else
// scores 0, which means rejected.
func PatternConfidence(text string) float64 {
	t := strings.ReplaceAll(text, "-", "")
	n := len([]rune(t))
	if n < Length-1 || n > Length+1 {
		return 0
	}

	letters, digits := countClasses(t)
	if n != Length {
		if letters >= 2 && digits >= 2 {
			return 0.5
		}
		return 0
	}

	switch {
	case mercosulExact.MatchString(t):
		return 1.0
	case legacyExact.MatchString(t):
		return 0.9
	case letterPrefix.MatchString(t):
		switch {
		case letters >= 2 && digits >= 3:
			return 0.7
		case letters >= 2 && digits >= 2:
			return 0.5
		}
		return 0
	case letters >= 2 && digits >= 2:
		return 0.4
	}
	return 0
}

// FinalValidate blends pattern confidence with the detection score and
// decides acceptance. A text with zero pattern confidence is rejected with
// confidence 0 regardless of the detection score.
func FinalValidate(text string, detectionScore float64, t config.ValidationTuning) Validation {
	pattern := PatternConfidence(text)
	if pattern == 0 {
		return Validation{}
	}
	conf := pattern*t.PatternWeight + detectionScore*t.DetectionWeight
	return Validation{
		Valid:      conf >= t.AcceptThreshold,
		Pattern:    pattern,
		Confidence: conf,
	}
}
