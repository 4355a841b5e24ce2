package layout

import "strings"

// Chapter is one titled section of a book: an ordered sequence of block
// elements produced by the HTML-to-Block Parser for a single source HTML
// fragment (spec.md §3).
type Chapter struct {
	ID       string
	Title    string
	Elements []Block
}

// Document is a parsed book: its chapters in reading order. It carries no
// pagination or rendering state of its own (spec.md §3: Layout Document).
type Document struct {
	Chapters []Chapter
}

// TextContent returns the chapter's plain-text content, each element's text
// joined by a newline, for full-text search indexing.
func (c Chapter) TextContent() string {
	return joinBlocks(c.Elements)
}

// TextContent returns the whole document's plain-text content, chapters
// joined by a newline.
func (d Document) TextContent() string {
	parts := make([]string, 0, len(d.Chapters))
	for _, c := range d.Chapters {
		parts = append(parts, c.TextContent())
	}
	return strings.Join(parts, "\n")
}
