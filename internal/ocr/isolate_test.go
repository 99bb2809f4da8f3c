package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

// Geometry of createPlateCrop, in crop pixels.
const (
	plateW      = 140
	plateH      = 40
	glyphW      = 8
	glyphTop    = 12
	glyphBottom = 32
)

func glyphX(i int) int { return 15 + 16*i }

// createPlateCrop draws a light plate with a dark 2px frame, a thin banner
// along the top and seven dark character bars.
func createPlateCrop() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, plateW, plateH))
	dark := image.NewUniform(color.RGBA{20, 20, 20, 255})
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{220, 220, 220, 255}), image.Point{}, draw.Src)

	frame := []image.Rectangle{
		image.Rect(0, 0, plateW, 2),
		image.Rect(0, plateH-2, plateW, plateH),
		image.Rect(0, 0, 2, plateH),
		image.Rect(plateW-2, 0, plateW, plateH),
	}
	for _, r := range frame {
		draw.Draw(img, r, dark, image.Point{}, draw.Src)
	}

	draw.Draw(img, image.Rect(40, 4, 100, 7), dark, image.Point{}, draw.Src)

	for i := 0; i < 7; i++ {
		draw.Draw(img, image.Rect(glyphX(i), glyphTop, glyphX(i)+glyphW, glyphBottom), dark, image.Point{}, draw.Src)
	}
	return img
}

func TestIsolate_KeepsOnlyGlyphs(t *testing.T) {
	tun := config.DefaultTuning().Isolation
	mask := Isolate(createPlateCrop(), tun)

	s, pad := tun.Upscale, tun.Padding
	wantW, wantH := plateW*s+2*pad, plateH*s+2*pad
	if mask.Rect.Dx() != wantW || mask.Rect.Dy() != wantH {
		t.Fatalf("mask size = %dx%d, want %dx%d", mask.Rect.Dx(), mask.Rect.Dy(), wantW, wantH)
	}

	at := func(x, y int) uint8 { return mask.GrayAt(x*s+pad, y*s+pad).Y }

	midY := (glyphTop + glyphBottom) / 2
	for i := 0; i < 7; i++ {
		if v := at(glyphX(i)+glyphW/2, midY); v != imaging.Foreground {
			t.Errorf("glyph %d center = %d, want foreground", i, v)
		}
	}

	background := []struct {
		name string
		x, y int
	}{
		{"frame left", 1, midY},
		{"frame top", 70, 1},
		{"banner", 70, 5},
		{"gap between glyphs", glyphX(0) + glyphW + 4, midY},
		{"plate below glyphs", 70, 35},
	}
	for _, b := range background {
		if v := at(b.x, b.y); v != imaging.Background {
			t.Errorf("%s = %d, want background", b.name, v)
		}
	}
}

func TestIsolate_PaddingIsBlack(t *testing.T) {
	tun := config.DefaultTuning().Isolation
	mask := Isolate(createPlateCrop(), tun)

	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			inside := x >= tun.Padding && x < w-tun.Padding && y >= tun.Padding && y < h-tun.Padding
			if !inside && mask.GrayAt(x, y).Y != 0 {
				t.Fatalf("padding pixel (%d,%d) = %d, want 0", x, y, mask.GrayAt(x, y).Y)
			}
		}
	}
}

func TestIsolate_UniformCropGivesPaddedMask(t *testing.T) {
	tun := config.DefaultTuning().Isolation
	img := image.NewGray(image.Rect(0, 0, 30, 10))
	for i := range img.Pix {
		img.Pix[i] = 200
	}

	mask := Isolate(img, tun)
	if mask.Rect.Dx() != 30*tun.Upscale+2*tun.Padding || mask.Rect.Dy() != 10*tun.Upscale+2*tun.Padding {
		t.Errorf("mask size = %v", mask.Rect)
	}
}

// charComp builds a component of width 40 and height h vertically centered
// in a 200-row mask.
func charComp(label, x, h int) imaging.Component {
	y := 100 - h/2
	return imaging.Component{Label: label, Bounds: image.Rect(x, y, x+40, y+h), Area: 40 * h * 3 / 4}
}

func TestFilterGlyphs_Rules(t *testing.T) {
	tun := config.DefaultTuning().Isolation
	const W, H = 700, 200

	comps := []imaging.Component{
		charComp(1, 300, 100),
		charComp(2, 100, 100),
		{Label: 3, Bounds: image.Rect(5, 50, 45, 150), Area: 3000},     // touches the border margin
		{Label: 4, Bounds: image.Rect(400, 90, 440, 130), Area: 1200},  // too short
		{Label: 5, Bounds: image.Rect(450, 50, 610, 150), Area: 3000},  // too wide for a character
		{Label: 6, Bounds: image.Rect(500, 50, 510, 150), Area: 800},   // too narrow
		{Label: 7, Bounds: image.Rect(520, 50, 560, 150), Area: 40},    // too sparse
		{Label: 8, Bounds: image.Rect(200, 50, 240, 150), Area: 17000}, // too large
	}

	got := filterGlyphs(comps, W, H, tun)
	if len(got) != 2 {
		t.Fatalf("kept %d glyphs, want 2: %+v", len(got), got)
	}
	if got[0].label != 2 || got[1].label != 1 {
		t.Errorf("order = %d,%d, want 2,1 (left to right)", got[0].label, got[1].label)
	}
}

func TestFilterGlyphs_MedianHeight(t *testing.T) {
	tun := config.DefaultTuning().Isolation
	const W, H = 700, 200

	var comps []imaging.Component
	for i := 0; i < 12; i++ {
		h := 100
		if i == 5 {
			h = 140
		}
		comps = append(comps, charComp(i+1, 20+50*i, h))
	}

	got := filterGlyphs(comps, W, H, tun)
	if len(got) != 11 {
		t.Fatalf("kept %d glyphs, want 11", len(got))
	}
	for _, g := range got {
		if g.label == 6 {
			t.Error("outlier height should be dropped")
		}
	}

	// The median rule only applies above MedianFilterAbove survivors.
	got = filterGlyphs(comps[:tun.MedianFilterAbove], W, H, tun)
	if len(got) != tun.MedianFilterAbove {
		t.Errorf("kept %d glyphs, want %d", len(got), tun.MedianFilterAbove)
	}
}
