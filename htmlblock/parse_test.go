package htmlblock

import (
	"testing"

	"ereader/layout"
)

func TestParseParagraphIndent(t *testing.T) {
	blocks, err := Parse(`<p>Hello, world.</p>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("Parse() = %d blocks, want 1", len(blocks))
	}
	p, ok := blocks[0].(layout.Paragraph)
	if !ok || !p.Indent {
		t.Fatalf("Parse() = %#v, want an indented Paragraph", blocks[0])
	}
	if got, want := layout.TextContent(p), "Hello, world."; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestParseHeadingLevelsAndEmptyDrop(t *testing.T) {
	blocks, err := Parse(`<h2>Title</h2><h3>   </h3>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("Parse() = %d blocks, want 1 (empty heading dropped)", len(blocks))
	}
	h, ok := blocks[0].(layout.Heading)
	if !ok || h.Level != 2 {
		t.Fatalf("Parse() = %#v, want Heading level 2", blocks[0])
	}
}

func TestParseInlineStyleMerge(t *testing.T) {
	blocks, err := Parse(`<p>plain <b>bold <i>bolditalic</i></b> tail</p>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p := blocks[0].(layout.Paragraph)
	if len(p.Spans) != 4 {
		t.Fatalf("Parse() spans = %#v, want 4 distinct-style runs", p.Spans)
	}
	if !p.Spans[1].Style.Bold || p.Spans[1].Style.Italic {
		t.Errorf("span 1 style = %+v, want bold-only", p.Spans[1].Style)
	}
	if !p.Spans[2].Style.Bold || !p.Spans[2].Style.Italic {
		t.Errorf("span 2 style = %+v, want bold+italic", p.Spans[2].Style)
	}
}

func TestParseLinkSpan(t *testing.T) {
	blocks, err := Parse(`<p>see <a href="https://example.com">here</a></p>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p := blocks[0].(layout.Paragraph)
	last := p.Spans[len(p.Spans)-1]
	if last.Style.Link != "https://example.com" {
		t.Errorf("link span Link = %q, want the href", last.Style.Link)
	}
}

func TestParseListOrderedStart(t *testing.T) {
	blocks, err := Parse(`<ol start="3"><li>a</li><li>b</li></ol>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	l, ok := blocks[0].(layout.List)
	if !ok || !l.Ordered || l.Start != 3 || len(l.Items) != 2 {
		t.Fatalf("Parse() = %#v, want ordered List start=3 with 2 items", blocks[0])
	}
}

func TestParseImageAttributes(t *testing.T) {
	blocks, err := Parse(`<img src="cover.jpg" alt="Cover" width="100" height="150">`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	img, ok := blocks[0].(layout.Image)
	if !ok || img.Src != "cover.jpg" || img.Alt != "Cover" {
		t.Fatalf("Parse() = %#v, want Image with src/alt", blocks[0])
	}
	if img.Width == nil || *img.Width != 100 || img.Height == nil || *img.Height != 150 {
		t.Fatalf("Parse() dimensions = %v/%v, want 100/150", img.Width, img.Height)
	}
}

func TestParseFigureWithCaption(t *testing.T) {
	blocks, err := Parse(`<figure><img src="a.png"><figcaption>A caption</figcaption></figure>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	fig, ok := blocks[0].(layout.Figure)
	if !ok {
		t.Fatalf("Parse() = %#v, want Figure", blocks[0])
	}
	if _, ok := fig.Content.(layout.Image); !ok {
		t.Errorf("Figure.Content = %#v, want Image", fig.Content)
	}
	if got, want := layout.TextContent(layout.Paragraph{Spans: fig.Caption}), "A caption"; got != want {
		t.Errorf("caption = %q, want %q", got, want)
	}
}

func TestParseCodeBlockLanguageHint(t *testing.T) {
	blocks, err := Parse(`<pre><code class="language-go">fmt.Println("hi")</code></pre>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cb, ok := blocks[0].(layout.CodeBlock)
	if !ok || cb.Language != "go" {
		t.Fatalf("Parse() = %#v, want CodeBlock language=go", blocks[0])
	}
}

func TestParseTableHeadersAndBody(t *testing.T) {
	blocks, err := Parse(`<table><thead><tr><th>Name</th></tr></thead><tbody><tr><td>Ada</td></tr></tbody></table>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	tbl, ok := blocks[0].(layout.Table)
	if !ok || len(tbl.Headers) != 1 || len(tbl.Rows) != 1 {
		t.Fatalf("Parse() = %#v, want 1 header row and 1 body row", blocks[0])
	}
}

func TestParseContainerCollapseSingleChild(t *testing.T) {
	blocks, err := Parse(`<section><p>only child</p></section>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := blocks[0].(layout.Paragraph); !ok {
		t.Fatalf("Parse() = %#v, want the single child Paragraph unwrapped", blocks[0])
	}
}

func TestParseContainerCollapseMultipleChildren(t *testing.T) {
	blocks, err := Parse(`<section><p>one</p><p>two</p></section>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, ok := blocks[0].(layout.BlockQuote); !ok {
		t.Fatalf("Parse() = %#v, want a BlockQuote wrapping multiple children", blocks[0])
	}
}

func TestParseContainerCollapseNoChildren(t *testing.T) {
	blocks, err := Parse(`<section></section>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 0 {
		t.Fatalf("Parse() = %#v, want no blocks for an empty container", blocks)
	}
}

func TestParseDroppedTags(t *testing.T) {
	blocks, err := Parse(`<script>alert(1)</script><style>p{color:red}</style><p>kept</p>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("Parse() = %d blocks, want 1 (script/style dropped)", len(blocks))
	}
}

func TestParseUnknownTagDegradesToParagraph(t *testing.T) {
	blocks, err := Parse(`<marquee>scrolling text</marquee>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	p, ok := blocks[0].(layout.Paragraph)
	if !ok || p.Indent {
		t.Fatalf("Parse() = %#v, want an unindented Paragraph", blocks[0])
	}
}

func TestParseIdempotentPlainText(t *testing.T) {
	blocks, err := Parse(`<p>Some <b>bold</b> and <i>italic</i> words.</p>`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	text := layout.TextContent(blocks[0])

	reparsed, err := Parse("<p>" + text + "</p>")
	if err != nil {
		t.Fatalf("Parse() (round 2) error = %v", err)
	}
	if got := layout.TextContent(reparsed[0]); got != text {
		t.Errorf("round-tripped text = %q, want %q", got, text)
	}
}
