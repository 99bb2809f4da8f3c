package pipeline

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

const (
	acceptedColor  = "#00FF00"
	candidateColor = "#FFA500"
)

// Annotate draws the result onto a copy of the processed image: every
// validated candidate in orange and the accepted plate in green, labeled with
// its text, method and confidence.
func (r *Result) Annotate() (*image.RGBA, error) {
	if r.Image == nil {
		return nil, ErrNoImage
	}

	var anns []imaging.Annotation
	for i, c := range r.Candidates {
		if r.Record != nil && i == r.Record.CandidateIndex {
			continue
		}
		anns = append(anns, imaging.Annotation{Box: c.Bounds.Rect(), Color: candidateColor})
	}
	if r.Record != nil {
		anns = append(anns, imaging.Annotation{
			Box:   r.Record.Bounds.Rect(),
			Label: fmt.Sprintf("%s %s %.0f%%", r.Record.Text, r.Record.Method, r.Record.Confidence*100),
			Color: acceptedColor,
		})
	}
	return imaging.Annotate(r.Image, anns...), nil
}

// WriteDebugImages writes every intermediate image of the run into dir as
// PNG: the representation set, each candidate crop, and the isolated letter
// mask of the accepted plate. dir is created if needed.
func (r *Result) WriteDebugImages(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create debug directory: %w", err)
	}

	var written []string
	write := func(name string, img image.Image) error {
		path := filepath.Join(dir, name+".png")
		if err := imaging.Save(img, path); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	if set := r.Representations; set != nil {
		for i, name := range set.Names() {
			img, _ := set.Get(name)
			if err := write(fmt.Sprintf("%02d_%s", i, name), img); err != nil {
				return written, err
			}
		}
	}
	for i, c := range r.Candidates {
		if c.Crop == nil {
			continue
		}
		if err := write(fmt.Sprintf("candidate_%d_%s", i+1, c.Method), c.Crop); err != nil {
			return written, err
		}
	}
	if r.Record != nil && r.Record.Mask != nil {
		if err := write("letters_mask", r.Record.Mask); err != nil {
			return written, err
		}
	}
	return written, nil
}
