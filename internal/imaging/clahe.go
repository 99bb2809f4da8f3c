package imaging

import (
	"image"
	"math"
)

// CLAHE applies contrast-limited adaptive histogram equalization.
//
// The image is split into a tiles x tiles grid. Each tile gets its own
// equalization lookup table built from a histogram whose bins are clipped at
// clipLimit * tileArea / 256; the clipped excess is spread evenly over all
// bins. Output pixels are bilinearly interpolated between the lookup tables of
// the four nearest tile centers, which removes visible tile seams.
//
// A clipLimit <= 0 disables clipping (plain tile-based equalization).
func CLAHE(g *image.Gray, clipLimit float64, tiles int) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}
	if tiles < 1 {
		tiles = 1
	}
	tilesX, tilesY := min(tiles, w), min(tiles, h)

	tileW := int(math.Ceil(float64(w) / float64(tilesX)))
	tileH := int(math.Ceil(float64(h) / float64(tilesY)))
	// Rounding the tile size up can leave trailing tiles with no pixels.
	tilesX, tilesY = (w+tileW-1)/tileW, (h+tileH-1)/tileH

	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x1, y1 := tx*tileW, ty*tileH
			x2, y2 := min(x1+tileW, w), min(y1+tileH, h)
			luts[ty*tilesX+tx] = tileLUT(g, x1, y1, x2, y2, clipLimit)
		}
	}

	for y := 0; y < h; y++ {
		// Position relative to tile centers.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := ty0 + 1
		ty0 = clamp(ty0, 0, tilesY-1)
		ty1 = clamp(ty1, 0, tilesY-1)

		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := tx0 + 1
			tx0 = clamp(tx0, 0, tilesX-1)
			tx1 = clamp(tx1, 0, tilesX-1)

			v := g.Pix[g.PixOffset(g.Rect.Min.X+x, g.Rect.Min.Y+y)]
			top := (1-wx)*float64(luts[ty0*tilesX+tx0][v]) + wx*float64(luts[ty0*tilesX+tx1][v])
			bottom := (1-wx)*float64(luts[ty1*tilesX+tx0][v]) + wx*float64(luts[ty1*tilesX+tx1][v])
			dst.Pix[y*dst.Stride+x] = uint8(math.Round((1-wy)*top + wy*bottom))
		}
	}

	return dst
}

// tileLUT builds the clipped-histogram equalization table for one tile.
func tileLUT(g *image.Gray, x1, y1, x2, y2 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			hist[g.Pix[g.PixOffset(g.Rect.Min.X+x, g.Rect.Min.Y+y)]]++
		}
	}
	area := (x2 - x1) * (y2 - y1)

	var lut [256]uint8
	if area == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	if clipLimit > 0 {
		limit := int(math.Max(1, clipLimit*float64(area)/256))
		excess := 0
		for i, c := range hist {
			if c > limit {
				excess += c - limit
				hist[i] = limit
			}
		}
		share, rest := excess/256, excess%256
		for i := range hist {
			hist[i] += share
			if i < rest {
				hist[i]++
			}
		}
	}

	scale := 255.0 / float64(area)
	cdf := 0
	for i, c := range hist {
		cdf += c
		lut[i] = uint8(math.Min(255, math.Round(float64(cdf)*scale)))
	}
	return lut
}
