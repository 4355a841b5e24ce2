// Package htmlblock implements the HTML-to-Block Parser (spec.md §4.1):
// converting one chapter's HTML fragment into an ordered list of
// layout.Block elements bearing merged inline spans. It is not a full HTML
// conformance engine; it recognizes a documented tag set and degrades
// gracefully, in the same spirit as the teacher's fb2.Parse walking an XML
// tree into a normalized document model.
package htmlblock

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"ereader/layout"
)

// Parse converts an HTML fragment into block elements.
func Parse(fragment string) ([]layout.Block, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, err
	}

	var blocks []layout.Block
	for _, n := range nodes {
		blocks = append(blocks, blockChildren(n)...)
	}
	return filterEmpty(blocks), nil
}

var dropped = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Meta:   true,
	atom.Link:   true,
	atom.Head:   true,
	atom.Title:  true,
}

var inlineBlockLevel = map[atom.Atom]bool{
	atom.Span:   true,
	atom.Em:     true,
	atom.I:      true,
	atom.Strong: true,
	atom.B:      true,
	atom.A:      true,
	atom.U:      true,
	atom.S:      true,
	atom.Del:    true,
	atom.Sup:    true,
	atom.Sub:    true,
	atom.Small:  true,
	atom.Cite:   true,
}

// blockChildren walks n's children (or n itself, for a text node) at block
// level, producing zero or more Block elements.
func blockChildren(n *html.Node) []layout.Block {
	switch n.Type {
	case html.TextNode:
		text := normalizeWhitespace(n.Data)
		if text == "" {
			return nil
		}
		return []layout.Block{layout.Paragraph{Spans: []layout.TextSpan{layout.NewSpan(text)}}}
	case html.ElementNode:
		return blockElement(n)
	case html.DocumentNode:
		var out []layout.Block
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			out = append(out, blockChildren(c)...)
		}
		return out
	default:
		return nil
	}
}

func blockElement(n *html.Node) []layout.Block {
	if dropped[n.DataAtom] {
		return nil
	}

	switch n.DataAtom {
	case atom.P, atom.Div:
		return []layout.Block{layout.Paragraph{Spans: collectSpans(n, layout.SpanStyle{}), Indent: true}}

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		spans := collectSpans(n, layout.SpanStyle{})
		if allBlank(spans) {
			return nil
		}
		return []layout.Block{layout.Heading{Level: level, Spans: spans}}

	case atom.Blockquote:
		return []layout.Block{layout.BlockQuote{Elements: blockChildrenOf(n)}}

	case atom.Ul:
		return []layout.Block{layout.List{Ordered: false, Start: 1, Items: listItems(n)}}

	case atom.Ol:
		start := 1
		if v, ok := intAttr(n, "start"); ok {
			start = v
		}
		return []layout.Block{layout.List{Ordered: true, Start: start, Items: listItems(n)}}

	case atom.Img:
		img := layout.Image{Src: attr(n, "src"), Alt: attr(n, "alt")}
		if v, ok := intAttr(n, "width"); ok {
			img.Width = &v
		}
		if v, ok := intAttr(n, "height"); ok {
			img.Height = &v
		}
		return []layout.Block{img}

	case atom.Figure:
		return []layout.Block{figure(n)}

	case atom.Hr:
		return []layout.Block{layout.HorizontalRule{}}

	case atom.Pre:
		return []layout.Block{codeBlock(n)}

	case atom.Table:
		return []layout.Block{table(n)}

	case atom.Br:
		return nil

	case atom.Section, atom.Article, atom.Aside, atom.Header, atom.Footer, atom.Nav, atom.Main:
		return collapseContainer(blockChildrenOf(n))

	case atom.Figcaption:
		// figcaption is only meaningful inside figure, handled there.
		return nil
	}

	if inlineBlockLevel[n.DataAtom] || n.DataAtom == atom.Strike {
		spans := collectSpans(n, layout.SpanStyle{})
		if allBlank(spans) {
			return nil
		}
		return []layout.Block{layout.Paragraph{Spans: spans, Indent: false}}
	}

	// Unknown tag: degrade to Paragraph of its collected spans.
	spans := collectSpans(n, layout.SpanStyle{})
	if allBlank(spans) {
		return nil
	}
	return []layout.Block{layout.Paragraph{Spans: spans, Indent: false}}
}

func blockChildrenOf(n *html.Node) []layout.Block {
	var out []layout.Block
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, blockChildren(c)...)
	}
	return filterEmpty(out)
}

// collapseContainer implements the container-only tag rule: a single
// produced block passes through, several are wrapped in a BlockQuote, none
// vanish.
func collapseContainer(children []layout.Block) []layout.Block {
	switch len(children) {
	case 0:
		return nil
	case 1:
		return children
	default:
		return []layout.Block{layout.BlockQuote{Elements: children}}
	}
}

func listItems(n *html.Node) [][]layout.Block {
	var items [][]layout.Block
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Li {
			items = append(items, blockChildrenOf(c))
		}
	}
	return items
}

func figure(n *html.Node) layout.Block {
	var content layout.Block
	var caption []layout.TextSpan
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.Figcaption {
			caption = collectSpans(c, layout.SpanStyle{})
			continue
		}
		if content == nil {
			blocks := blockChildren(c)
			if len(blocks) > 0 {
				content = blocks[0]
			}
		}
	}
	if content == nil {
		content = layout.Paragraph{}
	}
	return layout.Figure{Content: content, Caption: caption}
}

func codeBlock(n *html.Node) layout.Block {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Code {
			return layout.CodeBlock{Language: languageHint(c), Code: rawText(c)}
		}
	}
	return layout.CodeBlock{Code: rawText(n)}
}

func languageHint(n *html.Node) string {
	class := attr(n, "class")
	for _, tok := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(tok, "language-"); ok {
			return lang
		}
	}
	return ""
}

func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func table(n *html.Node) layout.Block {
	var tbl layout.Table
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Thead:
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.DataAtom == atom.Tr {
					tbl.Headers = append(tbl.Headers, tableRow(r))
				}
			}
		case atom.Tbody:
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.DataAtom == atom.Tr {
					tbl.Rows = append(tbl.Rows, tableRow(r))
				}
			}
		case atom.Tr:
			tbl.Rows = append(tbl.Rows, tableRow(c))
		}
	}
	return tbl
}

func tableRow(n *html.Node) layout.TableRow {
	var row layout.TableRow
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Td || c.DataAtom == atom.Th) {
			row = append(row, collectSpans(c, layout.SpanStyle{}))
		}
	}
	return row
}

// collectSpans walks n's children accumulating inline TextSpans under the
// given inherited style, merging adjacent spans with identical style.
func collectSpans(n *html.Node, inherited layout.SpanStyle) []layout.TextSpan {
	var spans []layout.TextSpan
	var walk func(n *html.Node, style layout.SpanStyle)
	walk = func(n *html.Node, style layout.SpanStyle) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				text := normalizeWhitespace(c.Data)
				if text != "" {
					spans = append(spans, layout.TextSpan{Text: text, Style: style})
				}
			case html.ElementNode:
				if c.DataAtom == atom.Br {
					spans = append(spans, layout.TextSpan{Text: "\n", Style: style})
					continue
				}
				walk(c, style.Merge(inlineStyle(c)))
			}
		}
	}
	walk(n, inherited)
	return mergeSpans(spans)
}

func inlineStyle(n *html.Node) layout.SpanStyle {
	var s layout.SpanStyle
	switch n.DataAtom {
	case atom.B, atom.Strong:
		s.Bold = true
	case atom.I, atom.Em, atom.Cite:
		s.Italic = true
	case atom.U:
		s.Underline = true
	case atom.S, atom.Del, atom.Strike:
		s.Strikethrough = true
	case atom.A:
		if href := attr(n, "href"); href != "" {
			s.Link = href
		}
	}
	return s
}

func mergeSpans(spans []layout.TextSpan) []layout.TextSpan {
	if len(spans) == 0 {
		return nil
	}
	merged := []layout.TextSpan{spans[0]}
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if sameStyle(last.Style, s.Style) {
			last.Text += s.Text
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func sameStyle(a, b layout.SpanStyle) bool {
	return a.Bold == b.Bold && a.Italic == b.Italic && a.Underline == b.Underline &&
		a.Strikethrough == b.Strikethrough && a.Link == b.Link
}

func allBlank(spans []layout.TextSpan) bool {
	for _, s := range spans {
		if strings.TrimSpace(s.Text) != "" {
			return false
		}
	}
	return true
}

func filterEmpty(blocks []layout.Block) []layout.Block {
	out := blocks[:0]
	for _, b := range blocks {
		if layout.IsWhitespaceOnly(b) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	joined := strings.Join(fields, " ")
	if hasLeadingSpace(s) {
		joined = " " + joined
	}
	if hasTrailingSpace(s) {
		joined += " "
	}
	return joined
}

func hasLeadingSpace(s string) bool {
	return len(s) > 0 && isHTMLSpace(s[0])
}

func hasTrailingSpace(s string) bool {
	return len(s) > 0 && isHTMLSpace(s[len(s)-1])
}

func isHTMLSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func intAttr(n *html.Node, key string) (int, bool) {
	v := attr(n, key)
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, false
	}
	return i, true
}
