package imaging

import "image"

// Component describes one 8-connected region of non-zero pixels.
type Component struct {
	// Label is the 1-based label written into the label map.
	Label int

	// Bounds is the tight bounding box; Max is exclusive.
	Bounds image.Rectangle

	// Area is the number of pixels in the region.
	Area int
}

// Width returns the bounding box width in pixels.
func (c Component) Width() int { return c.Bounds.Dx() }

// Height returns the bounding box height in pixels.
func (c Component) Height() int { return c.Bounds.Dy() }

// LabelMap holds one label per pixel in row-major order; 0 is background.
type LabelMap struct {
	Width, Height int
	Labels        []int
}

// At returns the label at (x, y).
func (m *LabelMap) At(x, y int) int {
	return m.Labels[y*m.Width+x]
}

// Paint sets every pixel of dst carrying one of the given labels to
// Foreground. dst must have the same dimensions as the label map.
func (m *LabelMap) Paint(dst *image.Gray, labels ...int) {
	keep := make(map[int]bool, len(labels))
	for _, l := range labels {
		keep[l] = true
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if l := m.Labels[y*m.Width+x]; l != 0 && keep[l] {
				dst.Pix[dst.PixOffset(dst.Rect.Min.X+x, dst.Rect.Min.Y+y)] = Foreground
			}
		}
	}
}

// ConnectedComponents labels the 8-connected foreground regions of a binary
// image. Components are numbered in raster order of their first pixel.
//
// Uses an iterative flood fill with an explicit stack, so large regions
// cannot overflow the goroutine stack.
func ConnectedComponents(g *image.Gray) ([]Component, *LabelMap) {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	lm := &LabelMap{Width: w, Height: h, Labels: make([]int, w*h)}
	var comps []Component

	on := func(x, y int) bool {
		return g.Pix[g.PixOffset(g.Rect.Min.X+x, g.Rect.Min.Y+y)] != 0
	}

	stack := make([]image.Point, 0, 256)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if lm.Labels[y*w+x] != 0 || !on(x, y) {
				continue
			}

			label := len(comps) + 1
			c := Component{Label: label, Bounds: image.Rect(x, y, x+1, y+1)}
			lm.Labels[y*w+x] = label
			stack = append(stack[:0], image.Pt(x, y))

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				c.Area++
				c.Bounds = c.Bounds.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						if lm.Labels[ny*w+nx] != 0 || !on(nx, ny) {
							continue
						}
						lm.Labels[ny*w+nx] = label
						stack = append(stack, image.Pt(nx, ny))
					}
				}
			}
			comps = append(comps, c)
		}
	}
	return comps, lm
}

// FillHoles returns a copy of a binary image where every background region
// that is not 4-connected to the image border is set to Foreground.
//
// The 8-connected components of the result are exactly the regions enclosed
// by the outer contours of the input, which is what an external-contour search
// needs: one filled blob per outermost shape.
func FillHoles(g *image.Gray) *image.Gray {
	w, h := g.Rect.Dx(), g.Rect.Dy()
	dst := ToGray(g)
	if w == 0 || h == 0 {
		return dst
	}

	outside := make([]bool, w*h)
	stack := make([]image.Point, 0, 256)
	push := func(x, y int) {
		i := y*w + x
		if outside[i] || dst.Pix[y*dst.Stride+x] != 0 {
			return
		}
		outside[i] = true
		stack = append(stack, image.Pt(x, y))
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < w-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < h-1 {
			push(p.X, p.Y+1)
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !outside[y*w+x] {
				dst.Pix[y*dst.Stride+x] = Foreground
			}
		}
	}
	return dst
}
