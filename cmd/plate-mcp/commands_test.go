package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
	"github.com/ironsheep/plate-tools-mcp/internal/pipeline"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	img.SetGray(0, 0, color.Gray{Y: 0})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 4, 4)
	writePNG(t, filepath.Join(dir, "a.PNG"), 4, 4)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0755); err != nil {
		t.Fatal(err)
	}

	got, err := listImages(dir)
	if err != nil {
		t.Fatalf("listImages failed: %v", err)
	}
	want := []string{filepath.Join(dir, "a.PNG"), filepath.Join(dir, "b.png")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("listImages = %v, want %v", got, want)
	}

	if _, err := listImages(filepath.Join(dir, "missing")); err == nil {
		t.Error("missing directory should fail")
	}
}

func TestRecognizeOne(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "car.png")
	writePNG(t, path, 64, 48)
	annotateDir := filepath.Join(dir, "out")

	p := pipeline.New(nil, nil, config.DefaultTuning())
	line := recognizeOne(context.Background(), p, path, annotateDir, "")

	if line.Error != "" {
		t.Fatalf("unexpected error: %s", line.Error)
	}
	if line.Plate != "" {
		t.Errorf("no engine, no plate; got %q", line.Plate)
	}
	if line.Result == nil || line.Result.Width != 64 {
		t.Errorf("result = %+v", line.Result)
	}
	if line.Annotated != filepath.Join(annotateDir, "car_annotated.png") {
		t.Errorf("Annotated = %q", line.Annotated)
	}
	if _, err := os.Stat(line.Annotated); err != nil {
		t.Errorf("annotated image not written: %v", err)
	}
}

func TestRecognizeOne_LoadError(t *testing.T) {
	p := pipeline.New(nil, nil, config.DefaultTuning())
	line := recognizeOne(context.Background(), p, filepath.Join(t.TempDir(), "missing.png"), "", "")

	if line.Error == "" {
		t.Error("missing file should be reported")
	}
	if line.Result != nil {
		t.Error("no result expected for a missing file")
	}
}

func TestRunRecognize_NoImages(t *testing.T) {
	p := pipeline.New(nil, nil, config.DefaultTuning())
	if code := runRecognize(context.Background(), p, []string{"-quiet"}); code != 2 {
		t.Errorf("exit code = %d, want 2", code)
	}
}

func TestIsShutdown(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"canceled", context.Canceled, true},
		{"wrapped canceled", fmt.Errorf("serve: %w", context.Canceled), true},
		{"other", errors.New("listen tcp: address in use"), false},
		{"deadline", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isShutdown(tt.err); got != tt.want {
				t.Errorf("isShutdown(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
