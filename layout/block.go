// Package layout defines the structured, style-bearing block model produced
// by the HTML-to-Block Parser and consumed by the Paginator and Renderer:
// the closed set of Block Element variants, inline Span Style, and the
// chapter-ordered Layout Document (spec.md §3).
package layout

import "strings"

// SpanStyle carries the inline formatting state accumulated while walking
// HTML children. Boolean flags OR together on merge; Link/FontSize/Color
// overrides are right-biased (spec.md §3 Span Style merge rule).
type SpanStyle struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool
	Link          string
	FontSize      *float64
	Color         *[4]uint8
}

// Merge combines s with other, OR-ing booleans and preferring other's
// optionals when set.
func (s SpanStyle) Merge(other SpanStyle) SpanStyle {
	out := SpanStyle{
		Bold:          s.Bold || other.Bold,
		Italic:        s.Italic || other.Italic,
		Underline:     s.Underline || other.Underline,
		Strikethrough: s.Strikethrough || other.Strikethrough,
		Link:          s.Link,
		FontSize:      s.FontSize,
		Color:         s.Color,
	}
	if other.Link != "" {
		out.Link = other.Link
	}
	if other.FontSize != nil {
		out.FontSize = other.FontSize
	}
	if other.Color != nil {
		out.Color = other.Color
	}
	return out
}

// TextSpan is a contiguous run of text sharing one SpanStyle.
type TextSpan struct {
	Text  string
	Style SpanStyle
}

// NewSpan builds a plain TextSpan with the zero SpanStyle.
func NewSpan(text string) TextSpan { return TextSpan{Text: text} }

// spansText concatenates the text of a span slice, used by measurement and
// plain-text extraction alike.
func spansText(spans []TextSpan) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Block is the closed tagged sum of block-level content. Implementations
// live in this file; the type switch in paginate and render packages is
// expected to handle every one of them explicitly.
type Block interface {
	blockTag()
}

// Paragraph is a block of inline spans, optionally first-line indented.
type Paragraph struct {
	Spans  []TextSpan
	Indent bool
}

func (Paragraph) blockTag() {}

// Heading is a title-level block at a given nesting level (1..=6).
type Heading struct {
	Level int
	Spans []TextSpan
}

func (Heading) blockTag() {}

// Image references embedded or external image data with optional intrinsic
// dimensions.
type Image struct {
	Src    string
	Alt    string
	Data   []byte
	Width  *int
	Height *int
}

func (Image) blockTag() {}

// BlockQuote nests an ordered sequence of child blocks.
type BlockQuote struct {
	Elements []Block
}

func (BlockQuote) blockTag() {}

// List is an ordered or unordered list; each item is itself a sequence of
// blocks (spec.md §3: "items: ordered sequence of element lists").
type List struct {
	Ordered bool
	Start   int
	Items   [][]Block
}

func (List) blockTag() {}

// HorizontalRule is a bare separator with no content.
type HorizontalRule struct{}

func (HorizontalRule) blockTag() {}

// CodeBlock is preformatted code, optionally tagged with a language hint.
type CodeBlock struct {
	Language string
	Code     string
}

func (CodeBlock) blockTag() {}

// TableRow is one table row: a sequence of cells, each cell a slice of spans.
type TableRow []([]TextSpan)

// Table is a grid of header/body rows, each row a sequence of cells of
// spans.
type Table struct {
	Headers []TableRow
	Rows    []TableRow
}

func (Table) blockTag() {}

// Figure wraps one content Block with an optional caption.
type Figure struct {
	Content Block
	Caption []TextSpan
}

func (Figure) blockTag() {}

// RawText is unstructured text that did not resolve to any recognized tag.
type RawText struct {
	Text string
}

func (RawText) blockTag() {}

// KeepWithNext reports whether b must not be separated from its immediate
// successor by a page break. Only Heading sets this (spec.md §3 invariant
// 6 / Glossary "Keep-with-next").
func KeepWithNext(b Block) bool {
	_, ok := b.(Heading)
	return ok
}
