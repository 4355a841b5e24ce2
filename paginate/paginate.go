// Package paginate implements the Paginator (spec.md §4.2): the pure
// function from (Settings, Layout Document) to a Paginated Book of
// measured, positioned pages, plus the full-text search that walks the
// resulting pages.
package paginate

import (
	"math"
	"strings"

	"ereader/layout"
	"ereader/settings"
)

// PageElement is one Block positioned within a Page's content column.
type PageElement struct {
	Block  layout.Block
	Y      float64
	Height float64
}

// Page is a single screen's worth of content. In two-column Settings, a
// Page is a spread: column-2 elements carry the column-height marker added
// to their Y coordinate (spec.md §3 invariant; see columnHeightMarker).
type Page struct {
	Index         int
	ChapterID     string
	ChapterTitle  string
	Elements      []PageElement
	ContentHeight float64
}

// TextContent joins every element's plain text, used for search.
func (p Page) TextContent() string {
	parts := make([]string, 0, len(p.Elements))
	for _, e := range p.Elements {
		parts = append(parts, layout.TextContent(e.Block))
	}
	return strings.Join(parts, "\n")
}

// PaginatedBook is the full set of pages produced from one Document at one
// Settings snapshot.
type PaginatedBook struct {
	Pages      []Page
	TotalPages int
}

// SearchResult is one match produced by Search.
type SearchResult struct {
	PageIndex    int
	ChapterID    string
	ChapterTitle string
	Snippet      string
	MatchStart   int
	MatchEnd     int
}

// Paginate runs the Paginator over doc at the given Settings snapshot.
func Paginate(s settings.Settings, doc layout.Document) PaginatedBook {
	availableHeight := s.ContentHeight()
	if s.Columns >= 2 {
		return paginateTwoColumn(s, doc, availableHeight)
	}
	return paginateSingleColumn(s, doc, availableHeight)
}

func paginateSingleColumn(s settings.Settings, doc layout.Document, availableHeight float64) PaginatedBook {
	var pages []Page
	for _, ch := range doc.Chapters {
		pages = append(pages, paginateChapter(s, ch, len(pages), availableHeight)...)
	}
	return PaginatedBook{Pages: pages, TotalPages: len(pages)}
}

// columnHeightMarker offsets a paired right-hand column's element Y
// coordinates so a renderer can recover which column an element belongs
// to purely from its Y value (spec.md §3 invariant).
func columnHeightMarker(availableHeight float64) float64 {
	return availableHeight + 1.0
}

func paginateTwoColumn(s settings.Settings, doc layout.Document, availableHeight float64) PaginatedBook {
	var columnPages []Page
	for _, ch := range doc.Chapters {
		columnPages = append(columnPages, paginateChapter(s, ch, len(columnPages), availableHeight)...)
	}

	marker := columnHeightMarker(availableHeight)
	var pages []Page
	for i := 0; i < len(columnPages); i += 2 {
		left := columnPages[i]
		spreadIndex := len(pages)

		combined := make([]PageElement, 0, len(left.Elements))
		combined = append(combined, left.Elements...)

		if i+1 < len(columnPages) {
			right := columnPages[i+1]
			for _, e := range right.Elements {
				combined = append(combined, PageElement{Block: e.Block, Y: e.Y + marker, Height: e.Height})
			}
		}

		pages = append(pages, Page{
			Index:         spreadIndex,
			ChapterID:     left.ChapterID,
			ChapterTitle:  left.ChapterTitle,
			Elements:      combined,
			ContentHeight: left.ContentHeight,
		})
	}
	return PaginatedBook{Pages: pages, TotalPages: len(pages)}
}

func paginateChapter(s settings.Settings, ch layout.Chapter, startPageIndex int, availableHeight float64) []Page {
	var pages []Page
	var current []PageElement
	currentY := 0.0

	flush := func() {
		pages = append(pages, Page{
			Index:         startPageIndex + len(pages),
			ChapterID:     ch.ID,
			ChapterTitle:  ch.Title,
			Elements:      current,
			ContentHeight: currentY,
		})
		current = nil
		currentY = 0.0
	}

	for i, el := range ch.Elements {
		height := measureElement(s, el)

		if currentY+height > availableHeight && len(current) > 0 {
			flush()
		}

		if layout.KeepWithNext(el) && i+1 < len(ch.Elements) {
			nextHeight := measureElement(s, ch.Elements[i+1])
			if currentY+height+nextHeight > availableHeight && len(current) > 0 {
				flush()
			}
		}

		current = append(current, PageElement{Block: el, Y: currentY, Height: height})
		currentY += height
		if _, isHeading := el.(layout.Heading); !isHeading {
			currentY += s.ParagraphSpacing
		}
	}

	if len(current) > 0 {
		flush()
	}

	if len(pages) == 0 {
		pages = append(pages, Page{Index: startPageIndex, ChapterID: ch.ID, ChapterTitle: ch.Title})
	}
	return pages
}

// measureElement implements the per-block measurement table (spec.md
// §4.2).
func measureElement(s settings.Settings, b layout.Block) float64 {
	switch v := b.(type) {
	case layout.Paragraph:
		return measureTextBlock(s, spansOf(v.Spans), s.FontSize)

	case layout.Heading:
		size := s.HeadingSize(v.Level)
		text := measureTextBlock(s, spansOf(v.Spans), size)
		var extra float64
		switch v.Level {
		case 1:
			extra = s.FontSize * 1.5
		case 2:
			extra = s.FontSize * 1.2
		default:
			extra = s.FontSize * 0.8
		}
		return text + extra

	case layout.BlockQuote:
		height := 0.0
		for _, el := range v.Elements {
			height += measureElement(s, el)
			height += s.ParagraphSpacing * 0.5
		}
		return height + s.FontSize*0.5

	case layout.List:
		height := 0.0
		for _, item := range v.Items {
			for _, el := range item {
				height += measureElement(s, el)
			}
			height += s.LineHeightPx() * 0.3
		}
		return height

	case layout.Image:
		return measureImage(s, v)

	case layout.Figure:
		height := measureElement(s, v.Content)
		if len(v.Caption) > 0 {
			height += measureTextBlock(s, spansOf(v.Caption), s.FontSize*0.9)
			height += s.FontSize * 0.5
		}
		return height

	case layout.HorizontalRule:
		return s.FontSize * 2.0

	case layout.CodeBlock:
		lineCount := float64(max(1, countLines(v.Code)))
		codeLineHeight := s.FontSize * 1.4
		return lineCount*codeLineHeight + s.FontSize

	case layout.Table:
		rowCount := float64(len(v.Headers) + len(v.Rows))
		rowHeight := s.LineHeightPx() * 1.5
		return rowCount*rowHeight + s.FontSize

	case layout.RawText:
		lineCount := math.Ceil(float64(len(v.Text)) / 60.0)
		if lineCount < 1 {
			lineCount = 1
		}
		return lineCount * s.LineHeightPx()

	default:
		return 0
	}
}

func measureImage(s settings.Settings, img layout.Image) float64 {
	availableHeight := s.ContentHeight()
	contentWidth := s.ContentWidth()

	rawHeight := 200.0
	if img.Height != nil {
		rawHeight = float64(*img.Height)
	}
	rawWidth := contentWidth
	if img.Width != nil {
		rawWidth = float64(*img.Width)
	}

	scaleForWidth := 1.0
	if rawWidth > contentWidth {
		scaleForWidth = contentWidth / rawWidth
	}
	scaleForHeight := 1.0
	if rawHeight > availableHeight {
		scaleForHeight = availableHeight / rawHeight
	}
	scale := math.Min(scaleForWidth, scaleForHeight)
	return rawHeight * scale
}

// measureTextBlock is the conservative wrap estimate shared by every
// text-bearing block (spec.md §4.2).
func measureTextBlock(s settings.Settings, text string, fontSize float64) float64 {
	if text == "" {
		return 0
	}

	contentWidth := s.ContentWidth()
	avgCharWidth := fontSize * 0.42
	effectiveWidth := contentWidth * 0.95
	charsPerLine := effectiveWidth / avgCharWidth
	if charsPerLine < 1 {
		charsPerLine = 1
	}

	lineCount := 0.0
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			lineCount++
			continue
		}
		lineCount += math.Ceil(float64(len(line)) / charsPerLine)
	}
	if lineCount < 1 {
		lineCount = 1
	}

	lineHeight := fontSize * s.LineHeight
	return lineCount * lineHeight
}

func spansOf(spans []layout.TextSpan) string {
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}

// countLines mirrors Rust's str::lines(): the count of segments split on
// '\n', except a single trailing newline does not introduce an extra
// empty segment.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	trimmed := strings.TrimSuffix(s, "\n")
	return strings.Count(trimmed, "\n") + 1
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Search performs a linear, case-insensitive scan for query across every
// page's text content, in (page, offset) order (spec.md §4.4).
func Search(book PaginatedBook, query string) []SearchResult {
	if query == "" {
		return nil
	}
	queryLower := strings.ToLower(query)

	var results []SearchResult
	for _, page := range book.Pages {
		text := page.TextContent()
		textLower := strings.ToLower(text)

		searchStart := 0
		for {
			pos := strings.Index(textLower[searchStart:], queryLower)
			if pos < 0 {
				break
			}
			matchStart := searchStart + pos
			matchEnd := matchStart + len(query)

			snippetStart := max(0, matchStart-40)
			snippetEnd := min(len(text), matchEnd+40)
			snippet := text[snippetStart:snippetEnd]
			if snippetStart > 0 {
				snippet = "…" + snippet
			}
			if snippetEnd < len(text) {
				snippet = snippet + "…"
			}

			results = append(results, SearchResult{
				PageIndex:    page.Index,
				ChapterID:    page.ChapterID,
				ChapterTitle: page.ChapterTitle,
				Snippet:      snippet,
				MatchStart:   matchStart,
				MatchEnd:     matchEnd,
			})

			searchStart = matchEnd
			if searchStart >= len(textLower) {
				break
			}
		}
	}
	return results
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
