package fonts

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"ereader/ereaderrors"
)

// Glyph is a rasterized glyph: an 8-bit coverage bitmap plus the metrics the
// text-block rasterizer needs to position and advance past it (spec.md
// §4.3.2).
type Glyph struct {
	Width, Height int
	XMin, YMin    int
	Advance       float64
	Coverage      []byte // row-major, Width*Height bytes, one alpha sample per pixel
}

func toPpem(sizePx float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(sizePx * 64))
}

// Advance returns the horizontal advance for r at sizePx, in pixels.
func (f *face) Advance(r rune, sizePx float64) (float64, error) {
	gi, err := f.font.GlyphIndex(&f.buf, r)
	if err != nil {
		return 0, ereaderrors.Wrap(ereaderrors.FontError, "glyph index lookup failed", err)
	}
	if gi == 0 {
		// .notdef: still advance by half the pixel size to avoid stacking
		// glyphs on unmapped runes.
		return sizePx * 0.5, nil
	}
	adv, err := f.font.GlyphAdvance(&f.buf, gi, toPpem(sizePx), font.HintingNone)
	if err != nil {
		return 0, ereaderrors.Wrap(ereaderrors.FontError, "glyph advance lookup failed", err)
	}
	return float64(adv) / 64.0, nil
}

// Rasterize renders r at sizePx into an 8-bit coverage bitmap, plus the
// bearing/advance metrics needed to blit it onto the page.
func (f *face) Rasterize(r rune, sizePx float64) (Glyph, error) {
	ppem := toPpem(sizePx)

	gi, err := f.font.GlyphIndex(&f.buf, r)
	if err != nil {
		return Glyph{}, ereaderrors.Wrap(ereaderrors.FontError, "glyph index lookup failed", err)
	}

	adv, err := f.font.GlyphAdvance(&f.buf, gi, ppem, font.HintingNone)
	if err != nil {
		return Glyph{}, ereaderrors.Wrap(ereaderrors.FontError, "glyph advance lookup failed", err)
	}

	if gi == 0 || r == ' ' || r == '\t' {
		// Whitespace and unmapped glyphs carry no visible coverage.
		return Glyph{Advance: float64(adv) / 64.0}, nil
	}

	segs, err := f.font.LoadGlyph(&f.buf, gi, ppem, nil)
	if err != nil {
		return Glyph{}, ereaderrors.Wrap(ereaderrors.FontError, "glyph outline load failed", err)
	}
	if len(segs) == 0 {
		return Glyph{Advance: float64(adv) / 64.0}, nil
	}

	minX, minY, maxX, maxY := glyphBounds(segs)
	w := int(math.Ceil(maxX - minX))
	h := int(math.Ceil(maxY - minY))
	if w <= 0 || h <= 0 {
		return Glyph{Advance: float64(adv) / 64.0}, nil
	}

	raster := vector.NewRasterizer(w, h)
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			p := seg.Args[0]
			raster.MoveTo(toLocalX(p, minX), toLocalY(p, maxY))
		case sfnt.SegmentOpLineTo:
			p := seg.Args[0]
			raster.LineTo(toLocalX(p, minX), toLocalY(p, maxY))
		case sfnt.SegmentOpQuadTo:
			ctrl, end := seg.Args[0], seg.Args[1]
			raster.QuadTo(toLocalX(ctrl, minX), toLocalY(ctrl, maxY), toLocalX(end, minX), toLocalY(end, maxY))
		case sfnt.SegmentOpCubeTo:
			c1, c2, end := seg.Args[0], seg.Args[1], seg.Args[2]
			raster.CubeTo(
				toLocalX(c1, minX), toLocalY(c1, maxY),
				toLocalX(c2, minX), toLocalY(c2, maxY),
				toLocalX(end, minX), toLocalY(end, maxY),
			)
		}
	}

	alpha := image.NewAlpha(image.Rect(0, 0, w, h))
	raster.Draw(alpha, alpha.Bounds(), image.Opaque, image.Point{})

	return Glyph{
		Width:    w,
		Height:   h,
		XMin:     int(math.Floor(minX)),
		YMin:     int(math.Floor(minY)),
		Advance:  float64(adv) / 64.0,
		Coverage: alpha.Pix,
	}, nil
}

// glyphBounds computes the outline bounding box in font units (pixels at the
// requested ppem), scanning only the meaningful points per segment op.
func glyphBounds(segs sfnt.Segments) (minX, minY, maxX, maxY float64) {
	first := true
	consider := func(p fixed.Point26_6) {
		x, y := float64(p.X)/64.0, float64(p.Y)/64.0
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
			return
		}
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	for _, seg := range segs {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo, sfnt.SegmentOpLineTo:
			consider(seg.Args[0])
		case sfnt.SegmentOpQuadTo:
			consider(seg.Args[0])
			consider(seg.Args[1])
		case sfnt.SegmentOpCubeTo:
			consider(seg.Args[0])
			consider(seg.Args[1])
			consider(seg.Args[2])
		}
	}
	return
}

func toLocalX(p fixed.Point26_6, minX float64) float32 {
	return float32(float64(p.X)/64.0 - minX)
}

// toLocalY flips the font's y-up coordinate space into the rasterizer's
// y-down pixel space by measuring down from the outline's top (maxY).
func toLocalY(p fixed.Point26_6, maxY float64) float32 {
	return float32(maxY - float64(p.Y)/64.0)
}
