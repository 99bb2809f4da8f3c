package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/effect"
)

// Foreground and Background are the two pixel values used by every binary
// image in this package.
const (
	Foreground uint8 = 255
	Background uint8 = 0
)

// ToGray converts any image to a zero-origin *image.Gray copy.
//
// Color images go through bild's luminance grayscale first; images that are
// already gray are copied pixel for pixel. The result never aliases the input.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	}
	draw.Draw(dst, dst.Bounds(), effect.Grayscale(img), image.Point{}, draw.Src)
	return dst
}

// CloneGray returns an independent copy of g.
func CloneGray(g *image.Gray) *image.Gray {
	dst := image.NewGray(g.Rect)
	copy(dst.Pix, g.Pix)
	return dst
}

// NewGrayFill returns a w x h gray image with every pixel set to v.
func NewGrayFill(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	if v != 0 {
		for i := range g.Pix {
			g.Pix[i] = v
		}
	}
	return g
}

// Invert flips every pixel of a gray image (255 - v).
func Invert(g *image.Gray) *image.Gray {
	dst := CloneGray(g)
	for i, v := range dst.Pix {
		dst.Pix[i] = 255 - v
	}
	return dst
}

// CountNonZero returns the number of non-zero pixels.
func CountNonZero(g *image.Gray) int {
	n := 0
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// MeanRows returns the mean pixel value of rows [y1, y2) clamped to the image.
func MeanRows(g *image.Gray, y1, y2 int) float64 {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	y1 = clamp(y1, 0, h)
	y2 = clamp(y2, 0, h)
	if y2 <= y1 || w == 0 {
		return 0
	}
	var sum int
	for y := y1; y < y2; y++ {
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+w] {
			sum += int(v)
		}
	}
	return float64(sum) / float64((y2-y1)*w)
}

// ToNRGBA converts an image into a zero-origin *image.NRGBA copy.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// grayAt reads the red channel of an RGBA produced by bild from a gray source.
func grayAt(c color.RGBA) uint8 {
	return c.R
}
