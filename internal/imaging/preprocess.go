package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/plate-tools-mcp/internal/config"
)

// ErrEmptyImage is returned for images or regions without pixels.
var ErrEmptyImage = errors.New("empty image")

// Representation names one derived image of a RepresentationSet.
type Representation string

const (
	RepOriginal               Representation = "original"
	RepSmoothed               Representation = "smoothed"
	RepGray                   Representation = "gray"
	RepEqualized              Representation = "equalized"
	RepBinaryOtsu             Representation = "binary_otsu"
	RepBinaryAdaptive         Representation = "binary_adaptive"
	RepBinaryAdaptiveInverted Representation = "binary_adaptive_inverted"
	RepEdges                  Representation = "edges"
	RepMorphClosed            Representation = "morph_closed"
	RepMorphOpened            Representation = "morph_opened"
)

// RepresentationSet maps representation names to independent derived images
// of one input. It is read-only once Preprocess returns.
type RepresentationSet struct {
	images map[Representation]image.Image
	order  []Representation

	// Err is the failure that stopped preprocessing early, if any. The
	// representations computed before the failure are still present.
	Err error
}

// Get returns the named representation.
func (s *RepresentationSet) Get(name Representation) (image.Image, bool) {
	img, ok := s.images[name]
	return img, ok
}

// Gray returns the named representation when it is a gray image.
func (s *RepresentationSet) Gray(name Representation) (*image.Gray, bool) {
	img, ok := s.images[name]
	if !ok {
		return nil, false
	}
	g, ok := img.(*image.Gray)
	return g, ok
}

// Names lists the representations in production order.
func (s *RepresentationSet) Names() []Representation {
	return append([]Representation(nil), s.order...)
}

// Len returns the number of representations.
func (s *RepresentationSet) Len() int { return len(s.order) }

func (s *RepresentationSet) put(name Representation, img image.Image) {
	s.images[name] = img
	s.order = append(s.order, name)
}

// Preprocess derives the full representation set from one color image.
//
// # Steps
//
//  1. original: an NRGBA copy of the input
//  2. smoothed: bilateral filter
//  3. gray: luminance of the smoothed image
//  4. equalized: CLAHE over the gray image
//  5. binary_otsu: global Otsu threshold of the equalized image
//  6. binary_adaptive, binary_adaptive_inverted: Gaussian adaptive threshold
//     in both polarities
//  7. edges: Canny over the equalized image
//  8. morph_closed: wide horizontal closing of binary_adaptive
//  9. morph_opened: square opening of morph_closed
//
// Every step works on its own copy. A step that panics on a degenerate image
// stops the sequence; the set then holds everything produced so far and Err
// describes the failure.
func Preprocess(img image.Image, t config.PreprocessTuning) (set *RepresentationSet) {
	set = &RepresentationSet{images: make(map[Representation]image.Image)}

	var step Representation
	defer func() {
		if r := recover(); r != nil {
			set.Err = fmt.Errorf("preprocessing stopped at %s: %v", step, r)
		}
	}()

	if img == nil || img.Bounds().Empty() {
		set.Err = ErrEmptyImage
		return set
	}

	step = RepOriginal
	original := ToNRGBA(img)
	set.put(RepOriginal, original)

	step = RepSmoothed
	smoothed := Bilateral(original, t.BilateralDiameter, t.BilateralSigmaColor, t.BilateralSigmaSpace)
	set.put(RepSmoothed, smoothed)

	step = RepGray
	gray := ToGray(smoothed)
	set.put(RepGray, gray)

	step = RepEqualized
	equalized := CLAHE(gray, t.CLAHEClip, t.CLAHETiles)
	set.put(RepEqualized, equalized)

	step = RepBinaryOtsu
	set.put(RepBinaryOtsu, Otsu(equalized, false))

	step = RepBinaryAdaptive
	adaptive := AdaptiveGaussian(equalized, t.AdaptiveBlock, t.AdaptiveC, false)
	set.put(RepBinaryAdaptive, adaptive)

	step = RepBinaryAdaptiveInverted
	set.put(RepBinaryAdaptiveInverted, AdaptiveGaussian(equalized, t.AdaptiveBlock, t.AdaptiveC, true))

	step = RepEdges
	set.put(RepEdges, Canny(equalized, t.CannyLow, t.CannyHigh))

	step = RepMorphClosed
	closed := Close(adaptive, Rect(t.CloseKernelW, t.CloseKernelH), t.CloseIterations)
	set.put(RepMorphClosed, closed)

	step = RepMorphOpened
	set.put(RepMorphOpened, Open(closed, Rect(t.OpenKernel, t.OpenKernel), 1))

	return set
}
