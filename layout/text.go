package layout

import "strings"

// TextContent extracts the plain-text content of a Block, used for
// full-text search and for the parser-idempotence property (spec.md §8.4).
func TextContent(b Block) string {
	switch v := b.(type) {
	case Paragraph:
		return spansText(v.Spans)
	case Heading:
		return spansText(v.Spans)
	case Image:
		return v.Alt
	case BlockQuote:
		return joinBlocks(v.Elements)
	case List:
		var parts []string
		for _, item := range v.Items {
			parts = append(parts, joinBlocks(item))
		}
		return strings.Join(parts, "\n")
	case HorizontalRule:
		return ""
	case CodeBlock:
		return v.Code
	case Table:
		var parts []string
		for _, row := range v.Headers {
			parts = append(parts, joinCells(row))
		}
		for _, row := range v.Rows {
			parts = append(parts, joinCells(row))
		}
		return strings.Join(parts, "\n")
	case Figure:
		parts := []string{TextContent(v.Content)}
		if len(v.Caption) > 0 {
			parts = append(parts, spansText(v.Caption))
		}
		return strings.Join(parts, "\n")
	case RawText:
		return v.Text
	default:
		return ""
	}
}

func joinBlocks(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, TextContent(b))
	}
	return strings.Join(parts, "\n")
}

func joinCells(row TableRow) string {
	parts := make([]string, 0, len(row))
	for _, cell := range row {
		parts = append(parts, spansText(cell))
	}
	return strings.Join(parts, " ")
}

// IsWhitespaceOnly reports whether a Block's plain-text content is empty or
// contains only whitespace, used by the HTML-to-Block Parser's
// empty-element filtering pass (spec.md §4.1) - except for Image and
// HorizontalRule, which never carry filterable text and are never dropped
// on that basis.
func IsWhitespaceOnly(b Block) bool {
	switch b.(type) {
	case Image, HorizontalRule:
		return false
	}
	return strings.TrimSpace(TextContent(b)) == ""
}
