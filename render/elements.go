package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"ereader/fonts"
	"ereader/layout"
	"ereader/rgba"
	"ereader/selection"
	"ereader/settings"
)

var (
	blockQuoteBar  = rgba.New(180, 180, 180, 255)
	horizontalRule = rgba.New(200, 200, 200, 255)
	codeBlockBG    = rgba.New(245, 245, 245, 255)
	codeBlockText  = rgba.New(50, 50, 50, 255)
	captionColor   = rgba.New(100, 100, 100, 255)
)

// elementCtx carries everything per-element rendering needs beyond
// geometry: the settings snapshot, font registry, and the page's
// in-progress Positioned Character index.
type elementCtx struct {
	buf       Buffer
	s         settings.Settings
	reg       *fonts.Registry
	chapterID string
	textIndex int
	chars     *[]selection.PositionedChar
}

// renderElement dispatches el at (x, y) within a column of width maxWidth,
// whose paginated height is height (spec.md §4.3.1).
func (ctx *elementCtx) renderElement(el layout.Block, x, y, maxWidth, height float64) error {
	switch v := el.(type) {
	case layout.Paragraph:
		startX := x
		if v.Indent {
			startX += ctx.s.ParagraphIndent
		}
		return ctx.renderSpans(v.Spans, startX, y, maxWidth, ctx.s.FontSize, ctx.s.LineHeight, ctx.s.TextColor)

	case layout.RawText:
		return ctx.renderSpans([]layout.TextSpan{layout.NewSpan(v.Text)}, x, y, maxWidth, ctx.s.FontSize, ctx.s.LineHeight, ctx.s.TextColor)

	case layout.Heading:
		size := ctx.s.HeadingSize(v.Level)
		return ctx.renderSpans(v.Spans, x, y, maxWidth, size, ctx.s.LineHeight*0.9, ctx.s.HeadingColor)

	case layout.BlockQuote:
		return ctx.renderBlockQuote(v, x, y, maxWidth, height)

	case layout.List:
		return ctx.renderList(v, x, y, maxWidth)

	case layout.HorizontalRule:
		ctx.buf.FillRect(int(x), int(y+ctx.s.FontSize), int(maxWidth), 1, horizontalRule)
		return nil

	case layout.Image:
		ctx.renderImage(v, x, y, maxWidth, height)
		return nil

	case layout.CodeBlock:
		return ctx.renderCodeBlock(v, x, y, maxWidth, height)

	case layout.Figure:
		return ctx.renderFigure(v, x, y, maxWidth, height)

	case layout.Table:
		return ctx.renderTable(v, x, y, maxWidth)

	default:
		return nil
	}
}

func (ctx *elementCtx) renderSpans(spans []layout.TextSpan, x, y, maxWidth, fontSize, lineHeight float64, color rgba.Color) error {
	origin := textOrigin{X: x, Y: y, MaxWidth: maxWidth}
	next, err := rasterizeSpans(ctx.buf, spans, origin, fontSize, lineHeight, color, ctx.s, ctx.reg, ctx.chapterID, ctx.textIndex, ctx.chars)
	if err != nil {
		return err
	}
	ctx.textIndex = next
	return nil
}

func (ctx *elementCtx) renderBlockQuote(bq layout.BlockQuote, x, y, maxWidth, height float64) error {
	barHeight := math.Min(100, height)
	ctx.buf.FillRect(int(x), int(y), 3, int(barHeight), blockQuoteBar)

	childX := x + ctx.s.FontSize
	childWidth := maxWidth - 2*ctx.s.FontSize
	childY := y
	for _, child := range bq.Elements {
		if err := ctx.renderElement(child, childX, childY, childWidth, height); err != nil {
			return err
		}
		childY += ctx.s.LineHeightPx()
	}
	return nil
}

func (ctx *elementCtx) renderList(l layout.List, x, y, maxWidth float64) error {
	markerWidth := 1.5 * ctx.s.FontSize
	itemY := y
	for i, item := range l.Items {
		marker := "•"
		if l.Ordered {
			marker = fmt.Sprintf("%d.", l.Start+i)
		}
		markerSpans := []layout.TextSpan{layout.NewSpan(marker)}
		if err := ctx.renderSpans(markerSpans, x, itemY, markerWidth, ctx.s.FontSize, ctx.s.LineHeight, ctx.s.TextColor); err != nil {
			return err
		}

		childX := x + markerWidth + 0.5*ctx.s.FontSize
		childWidth := maxWidth - markerWidth - 0.5*ctx.s.FontSize
		childY := itemY
		for _, child := range item {
			if err := ctx.renderElement(child, childX, childY, childWidth, ctx.s.LineHeightPx()); err != nil {
				return err
			}
		}
		itemY += ctx.s.LineHeightPx()
	}
	return nil
}

func (ctx *elementCtx) renderCodeBlock(cb layout.CodeBlock, x, y, maxWidth, height float64) error {
	ctx.buf.FillRect(int(x), int(y), int(maxWidth), int(height), codeBlockBG)

	insetX := 0.5 * ctx.s.FontSize
	insetY := 0.25 * ctx.s.FontSize
	spans := []layout.TextSpan{layout.NewSpan(cb.Code)}
	return ctx.renderSpans(spans, x+insetX, y+insetY, maxWidth-2*insetX, ctx.s.FontSize*0.9, 1.4, codeBlockText)
}

func (ctx *elementCtx) renderFigure(f layout.Figure, x, y, maxWidth, height float64) error {
	if err := ctx.renderElement(f.Content, x, y, maxWidth, height); err != nil {
		return err
	}
	if len(f.Caption) == 0 {
		return nil
	}
	captionY := y + 2*ctx.s.FontSize
	return ctx.renderSpans(f.Caption, x, captionY, maxWidth, ctx.s.FontSize*0.85, ctx.s.LineHeight, captionColor)
}

func (ctx *elementCtx) renderTable(tbl layout.Table, x, y, maxWidth float64) error {
	columns := 0
	for _, row := range tbl.Headers {
		if len(row) > columns {
			columns = len(row)
		}
	}
	for _, row := range tbl.Rows {
		if len(row) > columns {
			columns = len(row)
		}
	}
	if columns == 0 {
		return nil
	}
	colWidth := maxWidth / float64(columns)
	rowHeight := 1.5 * ctx.s.LineHeightPx()

	rowY := y
	for _, row := range tbl.Headers {
		if err := ctx.renderTableRow(row, x, rowY, colWidth, ctx.s.HeadingColor); err != nil {
			return err
		}
		rowY += rowHeight
	}
	for _, row := range tbl.Rows {
		if err := ctx.renderTableRow(row, x, rowY, colWidth, ctx.s.TextColor); err != nil {
			return err
		}
		rowY += rowHeight
	}
	return nil
}

func (ctx *elementCtx) renderTableRow(row layout.TableRow, x, y, colWidth float64, color rgba.Color) error {
	for i, cell := range row {
		cellX := x + float64(i)*colWidth
		if err := ctx.renderSpans(cell, cellX, y, colWidth, ctx.s.FontSize, ctx.s.LineHeight, color); err != nil {
			return err
		}
	}
	return nil
}

// renderImage decodes v.Data, fits it within (maxWidth, remaining height),
// centers it horizontally, and nearest-neighbor copies it into the buffer.
// Decode failures leave the reserved space blank (spec.md §7).
func (ctx *elementCtx) renderImage(v layout.Image, x, y, maxWidth, height float64) {
	img, err := decodeImage(v.Data)
	if err != nil || img == nil {
		return
	}

	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	if w <= 0 || h <= 0 {
		return
	}

	scale := 1.0
	if w > maxWidth {
		scale = math.Min(scale, maxWidth/w)
	}
	if h > height {
		scale = math.Min(scale, height/h)
	}
	dstW := int(math.Round(w * scale))
	dstH := int(math.Round(h * scale))
	if dstW < 1 || dstH < 1 {
		return
	}

	resized := img
	if dstW != bounds.Dx() || dstH != bounds.Dy() {
		resized = imaging.Resize(img, dstW, dstH, imaging.NearestNeighbor)
	}

	offsetX := x + (maxWidth-float64(dstW))/2
	for py := 0; py < dstH; py++ {
		for px := 0; px < dstW; px++ {
			r, g, b, a := resized.At(px, py).RGBA()
			c := rgba.New(uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
			ctx.buf.BlendPixel(int(offsetX)+px, int(y)+py, c)
		}
	}
}

// decodeImage tries the registered raster codecs first, falling back to an
// SVG rasterization pass for vector images.
func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return decodeSVG(data)
}

// defaultSVGSize is used when an SVG's viewBox carries no usable size.
const defaultSVGSize = 512

func decodeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	w, h := int(math.Ceil(icon.ViewBox.W)), int(math.Ceil(icon.ViewBox.H))
	if w <= 0 {
		w = defaultSVGSize
	}
	if h <= 0 {
		h = defaultSVGSize
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, canvas, canvas.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)
	return canvas, nil
}
