package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
)

// Upscale enlarges img by an integer factor using bicubic (Catmull-Rom)
// resampling.
func Upscale(img image.Image, factor int) *image.NRGBA {
	b := img.Bounds()
	if factor <= 1 {
		return ToNRGBA(img)
	}
	return imaging.Resize(img, b.Dx()*factor, b.Dy()*factor, imaging.CatmullRom)
}

// UpscaleGray enlarges a gray image by an integer factor using bicubic
// resampling and returns a gray result.
func UpscaleGray(g *image.Gray, factor int) *image.Gray {
	if factor <= 1 {
		return ToGray(g)
	}
	return redChannel(Upscale(g, factor))
}

// sharpenKernel is the 3x3 high-boost kernel
//
//	-1 -1 -1
//	-1  9 -1
//	-1 -1 -1
var sharpenKernel = func() *convolution.Kernel {
	k := convolution.NewKernel(3, 3)
	for i := range k.Matrix {
		k.Matrix[i] = -1
	}
	k.Matrix[4] = 9
	return k
}()

// Sharpen convolves g with the 3x3 high-boost kernel. Results are clamped to
// the 0-255 range.
func Sharpen(g *image.Gray) *image.Gray {
	return redChannel(convolution.Convolve(g, sharpenKernel, &convolution.Options{KeepAlpha: true}))
}

// Denoise suppresses speckle noise with a median filter of the given radius.
// Glyph strokes survive because a median keeps edges that are wider than the
// window.
func Denoise(g *image.Gray, radius float64) *image.Gray {
	return redChannel(effect.Median(g, radius))
}

// Pad surrounds g with a border of n pixels set to value.
func Pad(g *image.Gray, n int, value uint8) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := NewGrayFill(w+2*n, h+2*n, value)
	for y := 0; y < h; y++ {
		copy(dst.Pix[(y+n)*dst.Stride+n:(y+n)*dst.Stride+n+w], g.Pix[g.PixOffset(g.Rect.Min.X, g.Rect.Min.Y+y):])
	}
	return dst
}

// redChannel copies the red channel of an image whose channels are equal into
// a zero-origin gray image.
func redChannel(img image.Image) *image.Gray {
	b := img.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src := img.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[y*dst.Stride+x] = src.Pix[src.PixOffset(b.Min.X+x, b.Min.Y+y)]
			}
		}
	case *image.RGBA:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				dst.Pix[y*dst.Stride+x] = grayAt(src.RGBAAt(b.Min.X+x, b.Min.Y+y))
			}
		}
	default:
		return ToGray(img)
	}
	return dst
}
