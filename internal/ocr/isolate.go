package ocr

import (
	"image"
	"sort"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

const isolationTiles = 8

// glyph is a connected component accepted as a character.
type glyph struct {
	label  int
	x      int
	height int
}

// Isolate turns a plate crop into a clean binary mask holding only the
// character glyphs, white on black, padded with a black border.
//
// The crop is upscaled, equalized, sharpened, denoised and Otsu thresholded.
// When the central rows are mostly white the mask is inverted so glyphs are
// foreground. Components are then kept only if their box sits inside the
// border margin, has character-like size and aspect and lies near the
// vertical center. This drops the frame, the BRASIL banner and screws. With
// many survivors, components far from the median height are dropped too. If
// nothing survives, the raw threshold is used instead.
func Isolate(crop image.Image, t config.IsolationTuning) *image.Gray {
	gray := imaging.ToGray(crop)
	big := imaging.UpscaleGray(gray, t.Upscale)
	enhanced := imaging.CLAHE(big, t.CLAHEClip, isolationTiles)
	sharp := imaging.Sharpen(enhanced)
	denoised := imaging.Denoise(sharp, t.DenoiseRadius)

	thresh := imaging.Otsu(denoised, false)

	H, W := thresh.Rect.Dy(), thresh.Rect.Dx()
	center := H / 2
	if imaging.MeanRows(thresh, center-t.CenterBand, center+t.CenterBand) > 127 {
		thresh = imaging.Invert(thresh)
	}

	thresh = imaging.Close(thresh, imaging.Rect(3, 3), t.CloseIterations)

	comps, labels := imaging.ConnectedComponents(thresh)
	glyphs := filterGlyphs(comps, W, H, t)

	mask := image.NewGray(image.Rect(0, 0, W, H))
	if len(glyphs) > 0 {
		ids := make([]int, len(glyphs))
		for i, g := range glyphs {
			ids[i] = g.label
		}
		labels.Paint(mask, ids...)
	}

	if imaging.CountNonZero(mask)*int(imaging.Foreground) < t.MinMaskSum {
		mask = thresh
	}

	k := imaging.Rect(3, 3)
	mask = imaging.Open(mask, k, 1)
	mask = imaging.Close(mask, k, 1)

	return imaging.Pad(mask, t.Padding, imaging.Background)
}

// filterGlyphs applies the character geometry rules to the components of a
// W x H mask and returns survivors ordered left to right.
func filterGlyphs(comps []imaging.Component, W, H int, t config.IsolationTuning) []glyph {
	fh := float64(H)
	margin := int(fh * t.BorderMargin)
	maxArea := float64(W*H) * t.AreaMaxRatio

	var out []glyph
	for _, c := range comps {
		b := c.Bounds
		w, h := c.Width(), c.Height()

		if b.Min.X < margin || b.Min.Y < margin || b.Max.X > W-margin || b.Max.Y > H-margin {
			continue
		}
		if float64(h) < fh*t.HeightMin || float64(h) > fh*t.HeightMax {
			continue
		}
		if float64(w) < fh*t.WidthMin || float64(w) > fh*t.WidthMax {
			continue
		}
		if c.Area < t.AreaMin || float64(c.Area) > maxArea {
			continue
		}
		aspect := float64(w) / float64(h)
		if aspect < t.AspectMin || aspect > t.AspectMax {
			continue
		}
		centerY := float64(b.Min.Y) + float64(h)/2
		if abs(centerY-fh/2) > fh*t.CenterOffsetMax {
			continue
		}
		out = append(out, glyph{label: c.Label, x: b.Min.X, height: h})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].x < out[j].x })

	if len(out) > t.MedianFilterAbove {
		heights := make([]int, len(out))
		for i, g := range out {
			heights[i] = g.height
		}
		sort.Ints(heights)
		median := float64(heights[len(heights)/2])

		kept := out[:0]
		for _, g := range out {
			if abs(float64(g.height)-median) < median*t.MedianTolerance {
				kept = append(kept, g)
			}
		}
		out = kept
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
