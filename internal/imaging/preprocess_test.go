package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
)

// createPlateScene draws a light plate with dark bars on a mid-gray background.
func createPlateScene(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{90, 90, 90, 255}), image.Point{}, draw.Src)

	plate := image.Rect(width/2-70, height/2-20, width/2+70, height/2+20)
	draw.Draw(img, plate, image.NewUniform(color.RGBA{235, 235, 235, 255}), image.Point{}, draw.Src)
	for i := 0; i < 7; i++ {
		x := plate.Min.X + 10 + i*18
		bar := image.Rect(x, plate.Min.Y+8, x+10, plate.Max.Y-8)
		draw.Draw(img, bar, image.NewUniform(color.RGBA{20, 20, 20, 255}), image.Point{}, draw.Src)
	}
	return img
}

func TestPreprocess_AllRepresentations(t *testing.T) {
	img := createPlateScene(240, 120)
	set := Preprocess(img, config.DefaultTuning().Preprocess)

	if set.Err != nil {
		t.Fatalf("unexpected error: %v", set.Err)
	}

	want := []Representation{
		RepOriginal, RepSmoothed, RepGray, RepEqualized, RepBinaryOtsu,
		RepBinaryAdaptive, RepBinaryAdaptiveInverted, RepEdges,
		RepMorphClosed, RepMorphOpened,
	}
	names := set.Names()
	if len(names) != len(want) {
		t.Fatalf("got %d representations, want %d", len(names), len(want))
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("representation %d = %s, want %s", i, names[i], name)
		}
		rep, ok := set.Get(name)
		if !ok {
			t.Fatalf("missing %s", name)
		}
		if rep.Bounds().Dx() != 240 || rep.Bounds().Dy() != 120 {
			t.Errorf("%s has size %v", name, rep.Bounds())
		}
	}

	for _, name := range want[2:] {
		if _, ok := set.Gray(name); !ok {
			t.Errorf("%s should be a gray image", name)
		}
	}
	if _, ok := set.Gray(RepOriginal); ok {
		t.Error("original should not be reported as gray")
	}
}

func TestPreprocess_BinaryValues(t *testing.T) {
	set := Preprocess(createPlateScene(200, 100), config.DefaultTuning().Preprocess)

	for _, name := range []Representation{RepBinaryOtsu, RepBinaryAdaptive, RepBinaryAdaptiveInverted, RepEdges, RepMorphClosed, RepMorphOpened} {
		g, _ := set.Gray(name)
		for _, v := range g.Pix {
			if v != Foreground && v != Background {
				t.Fatalf("%s contains non-binary value %d", name, v)
			}
		}
	}
}

func TestPreprocess_IndependentCopies(t *testing.T) {
	img := createPlateScene(160, 80)
	set := Preprocess(img, config.DefaultTuning().Preprocess)

	// Mutating the input must not reach the stored original.
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	orig, _ := set.Get(RepOriginal)
	if r, _, _, _ := orig.At(80, 40).RGBA(); r == 0 {
		t.Error("original representation aliases the input image")
	}

	// Mutating one binary must not reach another.
	adaptive, _ := set.Gray(RepBinaryAdaptive)
	closed, _ := set.Gray(RepMorphClosed)
	before := CountNonZero(closed)
	for i := range adaptive.Pix {
		adaptive.Pix[i] = 0
	}
	if CountNonZero(closed) != before {
		t.Error("morph_closed aliases binary_adaptive")
	}
}

func TestPreprocess_DegenerateInput(t *testing.T) {
	t.Run("empty image", func(t *testing.T) {
		set := Preprocess(image.NewRGBA(image.Rect(0, 0, 0, 0)), config.DefaultTuning().Preprocess)
		if !errors.Is(set.Err, ErrEmptyImage) {
			t.Errorf("Err = %v, want ErrEmptyImage", set.Err)
		}
		if set.Len() != 0 {
			t.Errorf("got %d representations, want 0", set.Len())
		}
	})

	t.Run("nil image", func(t *testing.T) {
		set := Preprocess(nil, config.DefaultTuning().Preprocess)
		if set.Err == nil {
			t.Error("expected error")
		}
	})

	for _, c := range []color.Color{color.Black, color.White} {
		img := image.NewRGBA(image.Rect(0, 0, 64, 32))
		draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
		set := Preprocess(img, config.DefaultTuning().Preprocess)
		if set.Err != nil {
			t.Errorf("uniform image: unexpected error %v", set.Err)
		}
		edges, _ := set.Gray(RepEdges)
		if CountNonZero(edges) != 0 {
			t.Error("uniform image should have no edges")
		}
	}
}

func TestUpscaleAndPad(t *testing.T) {
	g := NewGrayFill(20, 10, 200)

	up := UpscaleGray(g, 3)
	if up.Rect.Dx() != 60 || up.Rect.Dy() != 30 {
		t.Errorf("upscaled size = %v, want 60x30", up.Rect)
	}
	if v := up.GrayAt(30, 15).Y; v < 195 || v > 205 {
		t.Errorf("upscaled interior = %d, want about 200", v)
	}

	padded := Pad(g, 5, 0)
	if padded.Rect.Dx() != 30 || padded.Rect.Dy() != 20 {
		t.Errorf("padded size = %v, want 30x20", padded.Rect)
	}
	if padded.GrayAt(2, 2).Y != 0 || padded.GrayAt(5, 5).Y != 200 || padded.GrayAt(24, 14).Y != 200 || padded.GrayAt(25, 15).Y != 0 {
		t.Error("padding misplaced")
	}
}

func TestSharpenAndDenoise(t *testing.T) {
	flat := NewGrayFill(20, 20, 100)
	if v := Sharpen(flat).GrayAt(10, 10).Y; v != 100 {
		t.Errorf("sharpen of a flat area = %d, want 100", v)
	}

	speck := grayRects(21, 21, 0, 255, image.Rect(10, 10, 11, 11))
	if v := Denoise(speck, 1).GrayAt(10, 10).Y; v != 0 {
		t.Errorf("isolated speck after median = %d, want 0", v)
	}
}

func TestCrop(t *testing.T) {
	img := createPlateScene(100, 60)

	tests := []struct {
		name    string
		r       image.Rectangle
		wantW   int
		wantH   int
		wantErr bool
	}{
		{"inside", image.Rect(10, 10, 40, 30), 30, 20, false},
		{"clamped", image.Rect(-5, -5, 20, 20), 20, 20, false},
		{"outside", image.Rect(200, 200, 210, 210), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Crop(img, tt.r)
			if tt.wantErr {
				if !errors.Is(err, ErrEmptyImage) {
					t.Errorf("err = %v, want ErrEmptyImage", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if out.Bounds().Dx() != tt.wantW || out.Bounds().Dy() != tt.wantH {
				t.Errorf("size = %v, want %dx%d", out.Bounds(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	enc, err := EncodePNG(NewGrayFill(12, 7, 50))
	if err != nil {
		t.Fatal(err)
	}
	if enc.MimeType != "image/png" || enc.Width != 12 || enc.Height != 7 {
		t.Errorf("unexpected metadata %+v", enc)
	}
	img, err := DecodeBase64(enc.ImageBase64)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 12 {
		t.Errorf("decoded width = %d, want 12", img.Bounds().Dx())
	}
	if _, err := DecodeBase64("%%%"); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestAnnotate(t *testing.T) {
	img := createPlateScene(200, 100)
	box := image.Rect(40, 40, 160, 80)

	out := Annotate(img, Annotation{Box: box, Label: "ABC-1D23", Color: "#00FF00"})
	if out.Bounds() != img.Bounds() {
		t.Fatalf("bounds changed: %v", out.Bounds())
	}
	if got := out.RGBAAt(40, 60); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("box edge color = %v, want green", got)
	}
	if got := out.RGBAAt(5, 95); got != img.RGBAAt(5, 95) {
		t.Errorf("pixel outside annotation changed: %v", got)
	}

	// The label background sits above the box.
	if got := out.RGBAAt(41, 30); got == img.RGBAAt(41, 30) {
		t.Error("label was not drawn above the box")
	}

	// The input is untouched.
	if img.RGBAAt(40, 60) == (color.RGBA{0, 255, 0, 255}) {
		t.Error("Annotate modified its input")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00FF0080", color.RGBA{0, 255, 0, 128}, false},
		{"", color.RGBA{}, true},
		{"#F00", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
	}

	for _, tt := range tests {
		got, err := parseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBilateral_SmoothsNoiseKeepsEdge(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			v := uint8(50)
			if x >= 20 {
				v = 200
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	img.SetGray(8, 10, color.Gray{Y: 70})

	out := Bilateral(img, 9, 30, 30)

	gray := func(x, y int) uint8 { return out.NRGBAAt(x, y).R }
	if v := gray(8, 10); v < 50 || v > 60 {
		t.Errorf("noisy pixel = %d, want pulled toward 50", v)
	}
	if gray(19, 10) > 60 || gray(20, 10) < 190 {
		t.Errorf("edge blurred: %d | %d", gray(19, 10), gray(20, 10))
	}
	if gray(2, 2) != 50 || gray(35, 15) != 200 {
		t.Errorf("flat regions changed: %d, %d", gray(2, 2), gray(35, 15))
	}
	if out.NRGBAAt(0, 0).A != 255 {
		t.Error("output should be opaque")
	}
}
