package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/histogram"
)

// OtsuLevel returns the global threshold that maximizes the between-class
// variance of the gray histogram. Pixels with a value greater than the level
// belong to the bright class.
//
// A uniform image has no split; its single value is returned, which makes
// Threshold produce an all-background image.
func OtsuLevel(g *image.Gray) uint8 {
	bins := histogram.NewRGBAHistogram(g).R.Bins

	total := 0
	var sumAll float64
	for i, c := range bins {
		total += c
		sumAll += float64(i * c)
	}
	if total == 0 {
		return 0
	}

	var (
		best      uint8
		bestVar   = -1.0
		weightLo  int
		sumLo     float64
		populated int
	)
	for _, c := range bins {
		if c > 0 {
			populated++
		}
	}
	if populated <= 1 {
		for i, c := range bins {
			if c > 0 {
				return uint8(i)
			}
		}
	}

	for t := 0; t < 256; t++ {
		weightLo += bins[t]
		if weightLo == 0 {
			continue
		}
		weightHi := total - weightLo
		if weightHi == 0 {
			break
		}
		sumLo += float64(t * bins[t])
		meanLo := sumLo / float64(weightLo)
		meanHi := (sumAll - sumLo) / float64(weightHi)
		between := float64(weightLo) * float64(weightHi) * (meanLo - meanHi) * (meanLo - meanHi)
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best
}

// Threshold binarizes g: pixels greater than level become Foreground, the rest
// Background. With inverted set the classes are swapped.
func Threshold(g *image.Gray, level uint8, inverted bool) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	on, off := Foreground, Background
	if inverted {
		on, off = Background, Foreground
	}
	for y := 0; y < h; y++ {
		src := g.Pix[g.PixOffset(g.Rect.Min.X, g.Rect.Min.Y+y):]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range row {
			if src[x] > level {
				row[x] = on
			} else {
				row[x] = off
			}
		}
	}
	return dst
}

// Otsu binarizes g at its Otsu level.
func Otsu(g *image.Gray, inverted bool) *image.Gray {
	return Threshold(g, OtsuLevel(g), inverted)
}

// AdaptiveGaussian binarizes g against a Gaussian-weighted local mean.
//
// A pixel is Foreground when it is brighter than the mean of its
// blockSize x blockSize neighbourhood minus c. With inverted set the output
// polarity is swapped. blockSize should be odd.
func AdaptiveGaussian(g *image.Gray, blockSize int, c float64, inverted bool) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	mean := blur.Gaussian(g, float64(blockSize/2))

	on, off := Foreground, Background
	if inverted {
		on, off = Background, Foreground
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := float64(g.Pix[g.PixOffset(g.Rect.Min.X+x, g.Rect.Min.Y+y)])
			m := float64(grayAt(mean.RGBAAt(mean.Rect.Min.X+x, mean.Rect.Min.Y+y)))
			if v > m-c {
				dst.Pix[y*dst.Stride+x] = on
			} else {
				dst.Pix[y*dst.Stride+x] = off
			}
		}
	}
	return dst
}
