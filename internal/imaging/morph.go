package imaging

import "image"

// Kernel is a rectangular structuring element of W columns by H rows.
//
// The anchor sits at (W/2, H/2). Pixels outside the image are ignored by both
// dilation and erosion, so borders neither grow nor shrink the foreground.
type Kernel struct {
	W, H int
}

// Rect returns a w x h rectangular structuring element.
func Rect(w, h int) Kernel {
	return Kernel{W: w, H: h}
}

// Dilate replaces each pixel with the maximum over the kernel window, repeated
// iterations times.
func Dilate(g *image.Gray, k Kernel, iterations int) *image.Gray {
	return morph(g, k, iterations, true)
}

// Erode replaces each pixel with the minimum over the kernel window, repeated
// iterations times.
func Erode(g *image.Gray, k Kernel, iterations int) *image.Gray {
	return morph(g, k, iterations, false)
}

// Open is erosion followed by dilation; it removes specks smaller than the
// kernel. Each pass is applied iterations times (all erosions, then all
// dilations).
func Open(g *image.Gray, k Kernel, iterations int) *image.Gray {
	return Dilate(Erode(g, k, iterations), k, iterations)
}

// Close is dilation followed by erosion; it bridges gaps narrower than the
// kernel.
func Close(g *image.Gray, k Kernel, iterations int) *image.Gray {
	return Erode(Dilate(g, k, iterations), k, iterations)
}

func morph(g *image.Gray, k Kernel, iterations int, dilate bool) *image.Gray {
	out := ToGray(g)
	if k.W < 1 {
		k.W = 1
	}
	if k.H < 1 {
		k.H = 1
	}
	for i := 0; i < iterations; i++ {
		out = morphPass(out, k, dilate)
	}
	return out
}

// morphPass runs one separable max/min filter: rows first, then columns.
func morphPass(src *image.Gray, k Kernel, dilate bool) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	tmp := image.NewGray(src.Rect)
	dst := image.NewGray(src.Rect)

	pick := func(a, b uint8) uint8 {
		if dilate {
			return max(a, b)
		}
		return min(a, b)
	}

	ax, ay := k.W/2, k.H/2
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+w]
		for x := 0; x < w; x++ {
			x1 := max(x-ax, 0)
			x2 := min(x-ax+k.W, w)
			v := row[x1]
			for i := x1 + 1; i < x2; i++ {
				v = pick(v, row[i])
			}
			tmp.Pix[y*tmp.Stride+x] = v
		}
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			y1 := max(y-ay, 0)
			y2 := min(y-ay+k.H, h)
			v := tmp.Pix[y1*tmp.Stride+x]
			for j := y1 + 1; j < y2; j++ {
				v = pick(v, tmp.Pix[j*tmp.Stride+x])
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}
	return dst
}
