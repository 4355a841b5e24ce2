package render

import (
	"math"

	"ereader/ereaderrors"
	"ereader/fonts"
	"ereader/layout"
	"ereader/rgba"
	"ereader/selection"
	"ereader/settings"
)

// textOrigin is the top-left anchor and wrap width for one rasterized
// block of spans.
type textOrigin struct {
	X, Y     float64
	MaxWidth float64
}

// rasterizeSpans implements the text-block rasterizer (spec.md §4.3.2): it
// walks spans, wrapping at MaxWidth and on '\n', blitting each glyph's
// coverage over buf, and appends one Positioned Character per rendered
// glyph (including whitespace) to chars, starting from textIndex.
func rasterizeSpans(
	buf Buffer,
	spans []layout.TextSpan,
	origin textOrigin,
	fontSize, lineHeight float64,
	defaultColor rgba.Color,
	s settings.Settings,
	reg *fonts.Registry,
	chapterID string,
	textIndex int,
	chars *[]selection.PositionedChar,
) (int, error) {
	currentX, currentY := origin.X, origin.Y

	for _, span := range spans {
		size := fontSize
		if span.Style.FontSize != nil {
			size = *span.Style.FontSize
		}
		color := defaultColor
		if span.Style.Link != "" {
			color = s.LinkColor
		}
		if span.Style.Color != nil {
			c := *span.Style.Color
			color = rgba.New(c[0], c[1], c[2], c[3])
		}

		face, err := resolveFace(reg, s.FontFamily, span.Style)
		if err != nil {
			return textIndex, err
		}

		for _, r := range span.Text {
			if r == '\n' {
				currentX = origin.X
				currentY += fontSize * lineHeight
				continue
			}

			glyph, err := face.Rasterize(r, size)
			if err != nil {
				return textIndex, err
			}

			if currentX+glyph.Advance > origin.X+origin.MaxWidth {
				currentX = origin.X
				currentY += fontSize * lineHeight
			}

			if chars != nil {
				*chars = append(*chars, selection.PositionedChar{
					Char:      r,
					X:         currentX,
					Y:         currentY,
					Width:     glyph.Advance,
					Height:    fontSize * lineHeight,
					TextIndex: textIndex,
					ChapterID: chapterID,
					LinkURL:   span.Style.Link,
				})
			}
			textIndex++

			blitGlyph(buf, glyph, currentX, currentY, fontSize, color, s.BackgroundColor)
			if span.Style.Underline {
				drawDecoration(buf, currentX, currentY, glyph.Advance, fontSize, 0.15, color)
			}
			if span.Style.Strikethrough {
				drawDecoration(buf, currentX, currentY, glyph.Advance, fontSize, -0.3, color)
			}
			currentX += glyph.Advance
		}
	}

	return textIndex, nil
}

// drawDecoration paints a 1px bar spanning one glyph's advance width, used
// for underline and strikethrough (offset is relative to the baseline,
// positive moving down).
func drawDecoration(buf Buffer, currentX, currentY, advance, fontSize, offset float64, color rgba.Color) {
	baseline := currentY + math.Floor(0.8*fontSize)
	row := int(math.Round(baseline + offset*fontSize))
	x0 := int(math.Round(currentX))
	x1 := int(math.Round(currentX + advance))
	for x := x0; x < x1; x++ {
		buf.SetPixel(x, row, color)
	}
}

func blitGlyph(buf Buffer, g fonts.Glyph, currentX, currentY, fontSize float64, color, background rgba.Color) {
	if g.Width == 0 || g.Height == 0 {
		return
	}
	baseline := currentY + math.Floor(0.8*fontSize)
	top := baseline - float64(g.YMin) - float64(g.Height)
	left := currentX + float64(g.XMin)

	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			alpha := g.Coverage[row*g.Width+col]
			if alpha == 0 {
				continue
			}
			px := int(math.Round(left)) + col
			py := int(math.Round(top)) + row
			if alpha == 255 {
				buf.SetPixel(px, py, color)
				continue
			}
			blended := rgba.New(color.R, color.G, color.B, alpha).BlendOver(background)
			buf.SetPixel(px, py, blended)
		}
	}
}

// resolveFace implements the font-style resolution chain (spec.md §4.3.2):
// Bold -> Bold (fallback Regular); Italic -> Italic (fallback Regular);
// both set -> Bold, the chosen degradation for BoldItalic spans; neither
// -> Regular.
func resolveFace(reg *fonts.Registry, family string, style layout.SpanStyle) (interface {
	Rasterize(r rune, sizePx float64) (fonts.Glyph, error)
}, error) {
	want := fonts.Regular
	switch {
	case style.Bold:
		want = fonts.Bold
	case style.Italic:
		want = fonts.Italic
	}
	f, err := reg.Face(family, want)
	if err != nil {
		return nil, ereaderrors.Wrap(ereaderrors.FontError, "no face available for span", err)
	}
	return f, nil
}
