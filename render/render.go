package render

import (
	"go.uber.org/zap"

	"ereader/ereaderrors"
	"ereader/fonts"
	"ereader/paginate"
	"ereader/selection"
	"ereader/settings"
)

// columnHeightMarker mirrors paginate's Y-offset convention for column-2
// elements (spec.md §3 invariant). Duplicated here rather than imported
// since paginate does not export its internal helper, and the Renderer
// only needs the threshold, not the pagination logic itself.
func columnHeightMarker(contentHeight float64) float64 {
	return contentHeight + 1.0
}

// Renderer rasterizes Pages into RGBA buffers, backed by a bounded
// page-image cache (spec.md §4.3).
type Renderer struct {
	reg   *fonts.Registry
	cache *pageCache
	log   *zap.Logger
}

// NewRenderer builds a Renderer backed by reg for glyph rasterization.
func NewRenderer(reg *fonts.Registry, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{reg: reg, cache: newPageCache(), log: log.Named("render")}
}

// RenderResult is a rendered page's pixel buffer plus the Positioned
// Character index produced as a side effect (spec.md §4.5).
type RenderResult struct {
	Buffer Buffer
	Chars  []selection.PositionedChar
}

// RenderPage rasterizes page at (width, height), serving from cache when
// present (spec.md §4.3 steps 1 and 5).
func (r *Renderer) RenderPage(page paginate.Page, width, height int, s settings.Settings) (RenderResult, error) {
	key := cacheKey{page: page.Index, width: width, height: height}
	if buf, ok := r.cache.get(key); ok {
		return RenderResult{Buffer: buf.Clone()}, nil
	}

	buf := NewBuffer(width, height, s.BackgroundColor)
	marker := columnHeightMarker(s.ContentHeight())

	var chars []selection.PositionedChar
	ctx := &elementCtx{buf: buf, s: s, reg: r.reg, chapterID: page.ChapterID, chars: &chars}
	for _, el := range page.Elements {
		y := el.Y
		x := s.Column1X()
		if y >= marker {
			y -= marker
			x = s.Column2X()
		}

		maxWidth := s.ContentWidth()
		renderY := s.PaddingY + y
		if err := ctx.renderElement(el.Block, x, renderY, maxWidth, el.Height); err != nil {
			r.log.Debug("element render failed", zap.Error(err))
			if ereaderrors.Is(err, ereaderrors.FontError) {
				return RenderResult{}, err
			}
		}
	}

	r.cache.put(key, buf)
	return RenderResult{Buffer: buf.Clone(), Chars: chars}, nil
}

// ClearCache flushes every cached page image (the clear_render_cache
// operation, spec.md §6).
func (r *Renderer) ClearCache() {
	r.cache.clear()
}

// CacheSize reports the number of currently cached pages, for tests
// asserting the bounded-cache invariant (spec.md §8.8).
func (r *Renderer) CacheSize() int {
	return r.cache.len()
}
