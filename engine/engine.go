// Package engine implements the single process-wide engine state machine
// (spec.md §5/§6): Settings, Font Registry, the current Layout Document,
// Paginated Book, Renderer, and Selection state, exposed as the ordered
// set of host operations. Modeled on the teacher's state.LocalEnv: one
// struct holding everything the process needs, reached through a package
// singleton rather than a context-carried one, since the host calls these
// operations directly with no request-scoped context of its own.
package engine

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ereader/ereaderrors"
	"ereader/fonts"
	"ereader/htmlblock"
	"ereader/layout"
	"ereader/paginate"
	"ereader/render"
	"ereader/selection"
	"ereader/settings"
)

// Engine holds every piece of state the reader operations touch. The
// engine is not re-entrant (spec.md §5): callers must not invoke an
// operation while another is in flight. The mutex exists to turn a
// violation of that contract into a predictable wait rather than a data
// race, not to offer concurrent access.
type Engine struct {
	mu  sync.Mutex
	log *zap.Logger

	fontReg  *fonts.Registry
	settings settings.Settings

	bookID string
	doc    *layout.Document

	book                            *paginate.PaginatedBook
	containerWidth, containerHeight int

	renderer *render.Renderer
	sel      *selection.Engine

	currentPage int
}

var (
	singleton   *Engine
	singletonMu sync.Mutex
)

// Init idempotently creates the singleton engine state if absent
// (spec.md §6: init()).
func Init(log *zap.Logger) *Engine {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singleton != nil {
		return singleton
	}
	singleton = newEngine(log)
	return singleton
}

// newEngine builds a fresh, independent Engine. Init uses it to create the
// process-wide singleton; tests use it directly to avoid cross-test state
// bleeding through the singleton.
func newEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("engine")

	reg := fonts.NewRegistry(log)
	return &Engine{
		log:      log,
		fontReg:  reg,
		settings: settings.Default(),
		renderer: render.NewRenderer(reg, log),
		sel:      selection.NewEngine(),
	}
}

// LoadFont registers font bytes under name's parsed (family, style)
// (spec.md §6: load_font).
func (e *Engine) LoadFont(name string, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fontReg.Load(name, data)
}

// UpdateSettingsResult is the result of UpdateSettings.
type UpdateSettingsResult struct {
	TotalPages   int  `json:"totalPages"`
	Repaginated  bool `json:"repaginated"`
}

// UpdateSettings replaces Settings from JSON, re-paginating if a document
// is loaded and Paginate has already supplied container dimensions for it;
// otherwise it reports zero pages and no repagination (spec.md §6:
// update_settings).
func (e *Engine) UpdateSettings(data []byte) (UpdateSettingsResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := settings.FromJSON(data)
	if err != nil {
		return UpdateSettingsResult{}, err
	}
	e.settings = next
	e.renderer.ClearCache()

	if e.doc == nil || e.containerWidth == 0 || e.containerHeight == 0 {
		e.book = nil
		return UpdateSettingsResult{TotalPages: 0, Repaginated: false}, nil
	}

	e.repaginateLocked()
	return UpdateSettingsResult{TotalPages: e.book.TotalPages, Repaginated: true}, nil
}

// LoadBookResult is the result of LoadBook.
type LoadBookResult struct {
	Loaded       bool `json:"loaded"`
	ChapterCount int  `json:"chapterCount"`
}

type bookJSON struct {
	Chapters []chapterJSON `json:"chapters"`
}

type chapterJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	HTMLContent string `json:"htmlContent"`
}

// LoadBook parses a book JSON document into a Layout Document. The
// Paginated Book is cleared until paginate supplies dimensions (spec.md
// §6: load_book).
func (e *Engine) LoadBook(data []byte) (LoadBookResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var parsed bookJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		return LoadBookResult{}, ereaderrors.Wrap(ereaderrors.ParseError, "unable to parse book JSON", err)
	}

	chapters := make([]layout.Chapter, 0, len(parsed.Chapters))
	for _, c := range parsed.Chapters {
		blocks, err := htmlblock.Parse(c.HTMLContent)
		if err != nil {
			return LoadBookResult{}, ereaderrors.Wrap(ereaderrors.ParseError, "unable to parse chapter HTML", err)
		}
		chapters = append(chapters, layout.Chapter{ID: c.ID, Title: c.Title, Elements: blocks})
	}

	id, err := uuid.NewV7()
	if err != nil {
		return LoadBookResult{}, ereaderrors.Wrap(ereaderrors.ParseError, "unable to stamp a book instance id", err)
	}

	e.bookID = id.String()
	e.doc = &layout.Document{Chapters: chapters}
	e.book = nil
	e.containerWidth, e.containerHeight = 0, 0
	e.renderer.ClearCache()
	e.sel.SetChars(nil)

	e.log.Info("book loaded", zap.String("bookId", e.bookID), zap.Int("chapters", len(chapters)))
	return LoadBookResult{Loaded: true, ChapterCount: len(chapters)}, nil
}

// PageChapterEntry maps one page index to its chapter.
type PageChapterEntry struct {
	PageIndex    int    `json:"pageIndex"`
	ChapterID    string `json:"chapterId"`
	ChapterTitle string `json:"chapterTitle"`
}

// PaginateResult is the result of Paginate.
type PaginateResult struct {
	TotalPages     int                `json:"totalPages"`
	PageChapterMap []PageChapterEntry `json:"pageChapterMap"`
}

// Paginate sets container dimensions and paginates the current document
// (spec.md §6: paginate).
func (e *Engine) Paginate(width, height int) (PaginateResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.doc == nil {
		return PaginateResult{}, ereaderrors.New(ereaderrors.NoBookLoaded, "no book is loaded")
	}

	e.containerWidth, e.containerHeight = width, height
	e.repaginateLocked()

	entries := make([]PageChapterEntry, len(e.book.Pages))
	for i, p := range e.book.Pages {
		entries[i] = PageChapterEntry{PageIndex: p.Index, ChapterID: p.ChapterID, ChapterTitle: p.ChapterTitle}
	}
	return PaginateResult{TotalPages: e.book.TotalPages, PageChapterMap: entries}, nil
}

// repaginateLocked re-runs the Paginator against the current Settings and
// Document. Caller must hold e.mu.
func (e *Engine) repaginateLocked() {
	e.settings.ContainerWidth = float64(e.containerWidth)
	e.settings.ContainerHeight = float64(e.containerHeight)
	book := paginate.Paginate(e.settings, *e.doc)
	e.book = &book
	e.renderer.ClearCache()
}

// PrerenderPages best-effort renders [current-rng, current+rng] to warm the
// cache, ignoring individual failures (spec.md §6: prerender_pages).
func (e *Engine) PrerenderPages(current, width, height, rng int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.book == nil {
		return
	}
	for i := current - rng; i <= current+rng; i++ {
		if i < 0 || i >= len(e.book.Pages) {
			continue
		}
		if _, err := e.renderer.RenderPage(e.book.Pages[i], width, height, e.settings); err != nil {
			e.log.Debug("prerender failed", zap.Int("page", i), zap.Error(err))
		}
	}
}

// RenderPage rasterizes page index at (width, height) and updates the
// Selection Engine's character index for that page (spec.md §6:
// render_page).
func (e *Engine) RenderPage(index, width, height int) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.book == nil {
		return nil, ereaderrors.New(ereaderrors.NotPaginated, "document has not been paginated")
	}
	if index < 0 || index >= len(e.book.Pages) {
		return nil, ereaderrors.NewPageNotFound(index)
	}

	result, err := e.renderer.RenderPage(e.book.Pages[index], width, height, e.settings)
	if err != nil {
		return nil, err
	}
	if result.Chars != nil {
		e.currentPage = index
		e.sel.SetChars(result.Chars)
	}
	return result.Buffer.Pix, nil
}

// GetPageChapter returns the chapter a page belongs to (spec.md §6:
// get_page_chapter).
func (e *Engine) GetPageChapter(index int) (PageChapterEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.book == nil {
		return PageChapterEntry{}, ereaderrors.New(ereaderrors.NotPaginated, "document has not been paginated")
	}
	if index < 0 || index >= len(e.book.Pages) {
		return PageChapterEntry{}, ereaderrors.NewPageNotFound(index)
	}
	p := e.book.Pages[index]
	return PageChapterEntry{PageIndex: p.Index, ChapterID: p.ChapterID, ChapterTitle: p.ChapterTitle}, nil
}

// SearchResult is one search hit returned to the host.
type SearchResult struct {
	PageIndex    int    `json:"pageIndex"`
	ChapterID    string `json:"chapterId"`
	ChapterTitle string `json:"chapterTitle"`
	Snippet      string `json:"snippet"`
	MatchStart   int    `json:"matchStart"`
	MatchEnd     int    `json:"matchEnd"`
}

// SearchText performs a linear scan over the Paginated Book (spec.md §6:
// search_text).
func (e *Engine) SearchText(query string) ([]SearchResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.book == nil {
		return nil, ereaderrors.New(ereaderrors.NotPaginated, "document has not been paginated")
	}
	hits := paginate.Search(*e.book, query)
	out := make([]SearchResult, len(hits))
	for i, h := range hits {
		out[i] = SearchResult{
			PageIndex:    h.PageIndex,
			ChapterID:    h.ChapterID,
			ChapterTitle: h.ChapterTitle,
			Snippet:      h.Snippet,
			MatchStart:   h.MatchStart,
			MatchEnd:     h.MatchEnd,
		}
	}
	return out, nil
}

// PaginationStats is the result of GetPaginationStats.
type PaginationStats struct {
	HasDocument    bool `json:"hasDocument"`
	IsPaginated    bool `json:"isPaginated"`
	TotalChapters  int  `json:"totalChapters"`
	TotalPages     int  `json:"totalPages"`
}

// GetPaginationStats reports current document/pagination state (spec.md
// §6: get_pagination_stats).
func (e *Engine) GetPaginationStats() PaginationStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := PaginationStats{HasDocument: e.doc != nil}
	if e.doc != nil {
		stats.TotalChapters = len(e.doc.Chapters)
	}
	if e.book != nil {
		stats.IsPaginated = true
		stats.TotalPages = e.book.TotalPages
	}
	return stats
}

// GetSettings returns the current Settings snapshot (spec.md §6:
// get_settings).
func (e *Engine) GetSettings() settings.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// UnloadBook drops the Layout Document and Paginated Book and flushes the
// render cache; fonts persist (spec.md §5/§6: unload_book).
func (e *Engine) UnloadBook() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.doc = nil
	e.book = nil
	e.bookID = ""
	e.containerWidth, e.containerHeight = 0, 0
	e.renderer.ClearCache()
	e.sel.SetChars(nil)
}

// ClearRenderCache flushes only the page-image cache (spec.md §6:
// clear_render_cache).
func (e *Engine) ClearRenderCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderer.ClearCache()
}

// SelectionStart begins a drag at (x, y) (spec.md §6: selection_start).
func (e *Engine) SelectionStart(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.Start(x, y)
}

// SelectionUpdate extends the selection to (x, y) (spec.md §6:
// selection_update).
func (e *Engine) SelectionUpdate(x, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.Update(x, y)
}

// SelectionResult is the resolved selection returned to the host.
type SelectionResult struct {
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
	ChapterID  string `json:"chapterId"`
	Text       string `json:"text"`
}

// SelectionEnd stops the drag and returns the resolved selection, or nil
// (spec.md §6: selection_end).
func (e *Engine) SelectionEnd() *SelectionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	sel := e.sel.End()
	if sel == nil {
		return nil
	}
	return &SelectionResult{StartIndex: sel.StartIndex, EndIndex: sel.EndIndex, ChapterID: sel.ChapterID, Text: sel.Text}
}

// SelectionClear drops the current selection (spec.md §6: selection_clear).
func (e *Engine) SelectionClear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.Clear()
}

// Rect is a highlight rectangle returned to the host.
type Rect struct {
	X, Y, Width, Height float64
}

// GetSelectionRects returns the current selection's highlight rectangles
// (spec.md §6: get_selection_rects).
func (e *Engine) GetSelectionRects() []Rect {
	e.mu.Lock()
	defer e.mu.Unlock()
	rects := e.sel.Rects()
	out := make([]Rect, len(rects))
	for i, r := range rects {
		out[i] = Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
	}
	return out
}

// GetSelectedText returns the current selection's text (spec.md §6:
// get_selected_text).
func (e *Engine) GetSelectedText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel.SelectedText()
}

// GetLinkAtPosition returns the link URL under (x, y), or "" (supplemented
// feature; see SPEC_FULL.md §5, original_source get_link_at_position).
func (e *Engine) GetLinkAtPosition(x, y float64) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel.LinkAt(x, y)
}
