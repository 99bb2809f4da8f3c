package imaging

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Bilateral smooths a color image while preserving edges.
//
// Each output pixel is a weighted mean over a diameter x diameter window. The
// spatial weight falls off with pixel distance (sigmaSpace) and the range weight
// falls off with the CIE-Lab distance between the two colors (sigmaColor, in
// 8-bit units). Strong color boundaries therefore survive while flat regions
// are denoised.
//
// Lab values are computed once per pixel; the distance is scaled by 255 so that
// sigmaColor has the same magnitude as an 8-bit intensity difference.
func Bilateral(img image.Image, diameter int, sigmaColor, sigmaSpace float64) *image.NRGBA {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewNRGBA(src.Rect)
	if w == 0 || h == 0 {
		return dst
	}

	radius := diameter / 2
	if radius < 1 {
		radius = 1
	}

	type lab struct{ l, a, b float64 }
	labs := make([]lab, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := src.PixOffset(x, y)
			c := colorful.Color{
				R: float64(src.Pix[i]) / 255,
				G: float64(src.Pix[i+1]) / 255,
				B: float64(src.Pix[i+2]) / 255,
			}
			l, a, b := c.Lab()
			labs[y*w+x] = lab{l, a, b}
		}
	}

	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)
	colorCoeff := -0.5 / (sigmaColor * sigmaColor)

	spatial := make([]float64, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			if d2 > float64(radius*radius) {
				spatial[(dy+radius)*(2*radius+1)+dx+radius] = 0
				continue
			}
			spatial[(dy+radius)*(2*radius+1)+dx+radius] = math.Exp(d2 * spaceCoeff)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := labs[y*w+x]
			var sumR, sumG, sumB, sumW float64
			for dy := -radius; dy <= radius; dy++ {
				py := y + dy
				if py < 0 || py >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					px := x + dx
					if px < 0 || px >= w {
						continue
					}
					sw := spatial[(dy+radius)*(2*radius+1)+dx+radius]
					if sw == 0 {
						continue
					}
					n := labs[py*w+px]
					dl, da, db := (n.l-center.l)*255, (n.a-center.a)*255, (n.b-center.b)*255
					weight := sw * math.Exp((dl*dl+da*da+db*db)*colorCoeff)

					i := src.PixOffset(px, py)
					sumR += float64(src.Pix[i]) * weight
					sumG += float64(src.Pix[i+1]) * weight
					sumB += float64(src.Pix[i+2]) * weight
					sumW += weight
				}
			}
			o := dst.PixOffset(x, y)
			dst.Pix[o] = uint8(math.Round(sumR / sumW))
			dst.Pix[o+1] = uint8(math.Round(sumG / sumW))
			dst.Pix[o+2] = uint8(math.Round(sumB / sumW))
			dst.Pix[o+3] = 255
		}
	}

	return dst
}
