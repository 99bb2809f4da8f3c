package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotation is one box to draw onto an image.
type Annotation struct {
	Box   image.Rectangle
	Label string
	// Color is a hex string such as "#00FF00" or "#00FF0080". Invalid or
	// empty values fall back to opaque green.
	Color string
}

// Annotate returns a copy of img with every annotation drawn as a 3-pixel
// rectangle outline and its label rendered above the box (or inside it when
// the box touches the top edge).
func Annotate(img image.Image, annotations ...Annotation) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	for _, a := range annotations {
		c, err := parseHexColor(a.Color)
		if err != nil {
			c = color.RGBA{0, 255, 0, 255}
		}
		drawBox(result, a.Box, 3, c)
		if a.Label != "" {
			y := a.Box.Min.Y - 4
			if y-basicfont.Face7x13.Ascent < 0 {
				y = a.Box.Min.Y + basicfont.Face7x13.Ascent + 4
			}
			drawLabel(result, a.Box.Min.X, y, a.Label, color.RGBA{0, 0, 0, 255}, c)
		}
	}
	return result
}

// drawBox draws a rectangle outline of the given thickness, clipped to img.
func drawBox(img *image.RGBA, r image.Rectangle, thickness int, c color.RGBA) {
	src := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness),
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y),
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(img, e.Intersect(img.Bounds()), src, image.Point{}, draw.Over)
	}
}

// drawLabel renders text with the 7x13 bitmap face on a filled background.
// (x, baseline) is the left end of the text baseline.
func drawLabel(img *image.RGBA, x, baseline int, text string, fg, bg color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot:  fixed.P(x+2, baseline),
	}

	width := d.MeasureString(text).Ceil()
	box := image.Rect(x, baseline-face.Ascent-2, x+width+4, baseline+face.Descent+2)
	draw.Draw(img, box.Intersect(img.Bounds()), image.NewUniform(bg), image.Point{}, draw.Src)

	d.DrawString(text)
}

// parseHexColor parses a hex color string like "#FF0000" or "#FF000080"
func parseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
