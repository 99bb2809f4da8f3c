package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// drawText draws text on an image using basicfont
func drawText(img *image.RGBA, x, y int, text string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// createImageWithText renders text in black on white and scales it up by
// drawing each pixel as a scale x scale block.
func createImageWithText(text string, scale int) *image.RGBA {
	w, h := len(text)*7+40, 40
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(small, small.Bounds(), image.White, image.Point{}, draw.Src)
	drawText(small, 20, 25, text, color.Black)

	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := small.At(x, y)
			draw.Draw(img, image.Rect(x*scale, y*scale, (x+1)*scale, (y+1)*scale), image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	return img
}

func newTesseractOrSkip(t *testing.T) *Tesseract {
	t.Helper()
	tess := NewTesseract("eng", "")
	t.Cleanup(func() { tess.Close() })
	if !tess.Available() {
		t.Skipf("Tesseract not available: %s", tess.Info().Error)
	}
	return tess
}

func TestTesseract_Info(t *testing.T) {
	tess := NewTesseract("eng", "")
	defer tess.Close()

	info := Describe(tess)
	if info.Name != "tesseract" {
		t.Errorf("Name = %q, want tesseract", info.Name)
	}
	if info.Backend != "gosseract" {
		t.Errorf("Backend = %q, want gosseract", info.Backend)
	}
	if info.Available != tess.Available() {
		t.Error("Info and Available disagree")
	}
	if !info.Available && info.Error == "" {
		t.Error("unavailable engine should explain why")
	}
}

func TestTesseract_RecognizeWhitelisted(t *testing.T) {
	tess := newTesseractOrSkip(t)

	img := createImageWithText("ABC1D23", 4)
	text, err := tess.Recognize(context.Background(), img, Options{PageSegMode: PSMSingleLine, Whitelist: PlateChars})
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	for _, r := range strings.Join(strings.Fields(text), "") {
		if !strings.ContainsRune(PlateChars, r) {
			t.Errorf("text %q contains %q outside the whitelist", text, r)
		}
	}
}

func TestTesseract_RecognizeAfterClose(t *testing.T) {
	tess := NewTesseract("eng", "")
	if err := tess.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := tess.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	_, err := tess.Recognize(context.Background(), createImageWithText("ABC", 1), Options{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestTesseract_CanceledContext(t *testing.T) {
	tess := NewTesseract("eng", "")
	defer tess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tess.Recognize(ctx, createImageWithText("ABC", 1), Options{}); err == nil {
		t.Error("Recognize should fail on a canceled context")
	}
}
