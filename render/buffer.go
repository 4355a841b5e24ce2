// Package render implements the Renderer (spec.md §4.3): rasterizing a
// single Page into an RGBA pixel buffer, with a bounded page-image cache
// and the text-block glyph compositor shared by every text-bearing
// element.
package render

import "ereader/rgba"

// Buffer is an RGBA byte buffer, top-left origin, row-major, 4 bytes per
// pixel (spec.md §6 pixel buffer convention).
type Buffer struct {
	Width, Height int
	Pix           []byte
}

// NewBuffer allocates a buffer filled with bg.
func NewBuffer(width, height int, bg rgba.Color) Buffer {
	pix := make([]byte, 4*width*height)
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = bg.R
		pix[i+1] = bg.G
		pix[i+2] = bg.B
		pix[i+3] = bg.A
	}
	return Buffer{Width: width, Height: height, Pix: pix}
}

// Clone returns an independent copy of the buffer, handed to callers per
// spec.md's "a returned buffer is a copy" ownership rule.
func (b Buffer) Clone() Buffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

func (b Buffer) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// SetPixel writes c at (x, y) without blending, clipping to bounds.
func (b Buffer) SetPixel(x, y int, c rgba.Color) {
	if !b.inBounds(x, y) {
		return
	}
	i := 4 * (y*b.Width + x)
	b.Pix[i+0] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
	b.Pix[i+3] = c.A
}

// BlendPixel blends c (at whatever alpha it carries) over the existing
// pixel at (x, y), clipping to bounds.
func (b Buffer) BlendPixel(x, y int, c rgba.Color) {
	if !b.inBounds(x, y) {
		return
	}
	i := 4 * (y*b.Width + x)
	bg := rgba.New(b.Pix[i+0], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3])
	blended := c.BlendOver(bg)
	b.Pix[i+0] = blended.R
	b.Pix[i+1] = blended.G
	b.Pix[i+2] = blended.B
	b.Pix[i+3] = blended.A
}

// FillRect paints a solid rectangle, clipping to bounds.
func (b Buffer) FillRect(x0, y0, w, h int, c rgba.Color) {
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			b.SetPixel(x, y, c)
		}
	}
}
