package pipeline

import (
	"context"
	"image"
	"unicode/utf8"

	"github.com/ironsheep/plate-tools-mcp/internal/detection"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
	"github.com/ironsheep/plate-tools-mcp/internal/plate"
)

// screen is the preliminary validator. Candidates covering too much of the
// frame are dropped, the whole-image fallback included, at most
// MaxCandidates are kept, each is expanded by Margin and cut from the
// original, and a quick OCR pass decides whether it looks like text.
func (p *Pipeline) screen(ctx context.Context, original image.Image, det *Detection, res *Result) []ValidatedCandidate {
	t := p.tuning.Preliminary
	w, h := det.Width, det.Height

	var kept []detection.Candidate
	for _, c := range det.Candidates {
		if coversFrame(c, w, h, t.MaxWidthPct, t.MaxHeightPct, t.MaxAreaPct) {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) > t.MaxCandidates {
		kept = kept[:t.MaxCandidates]
	}

	var out []ValidatedCandidate
	for _, c := range kept {
		expanded := c.Bounds.Expand(t.Margin, w, h)
		crop, err := imaging.Crop(original, expanded.Rect())
		if err != nil {
			res.warn("preliminary crop", err)
			continue
		}

		quick := p.recognizer.Quick(ctx, crop)
		for _, err := range quick.Failures {
			res.warn("preliminary ocr", err)
		}

		textScore := plate.TextScore(quick.Secondary, quick.Primary)
		if textScore <= t.MinTextScore &&
			utf8.RuneCountInString(quick.Primary) < t.MinRawLength &&
			utf8.RuneCountInString(quick.Secondary) < t.MinRawLength {
			continue
		}

		text := quick.Secondary
		if text == "" {
			text = quick.Primary
		}

		c.Bounds = expanded
		out = append(out, ValidatedCandidate{
			Candidate:       c,
			Confidence:      c.Score*0.5 + textScore*0.5,
			PreliminaryText: text,
			Crop:            crop,
		})
	}
	return out
}

// coversFrame reports whether c exceeds any of the percentage limits
// relative to a w x h image.
func coversFrame(c detection.Candidate, w, h int, maxW, maxH, maxArea float64) bool {
	pctW := float64(c.Bounds.Width()) / float64(w) * 100
	pctH := float64(c.Bounds.Height()) / float64(h) * 100
	pctArea := float64(c.Area) / float64(w*h) * 100
	return pctW > maxW || pctH > maxH || pctArea > maxArea
}
