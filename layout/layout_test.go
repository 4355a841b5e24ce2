package layout

import "testing"

func TestSpanStyleMergeOrsBooleansAndPrefersOtherOptionals(t *testing.T) {
	sizeA, sizeB := 12.0, 16.0
	a := SpanStyle{Bold: true, FontSize: &sizeA}
	b := SpanStyle{Italic: true, FontSize: &sizeB, Link: "https://example.com"}

	merged := a.Merge(b)

	if !merged.Bold || !merged.Italic {
		t.Fatalf("Merge() = %+v, want Bold and Italic both true", merged)
	}
	if merged.FontSize == nil || *merged.FontSize != sizeB {
		t.Fatalf("Merge() FontSize = %v, want other's override %v", merged.FontSize, sizeB)
	}
	if merged.Link != "https://example.com" {
		t.Fatalf("Merge() Link = %q, want other's link", merged.Link)
	}
}

func TestKeepWithNextOnlyHeading(t *testing.T) {
	cases := []struct {
		name string
		b    Block
		want bool
	}{
		{"heading", Heading{Level: 2}, true},
		{"paragraph", Paragraph{}, false},
		{"image", Image{}, false},
		{"rule", HorizontalRule{}, false},
	}
	for _, c := range cases {
		if got := KeepWithNext(c.b); got != c.want {
			t.Errorf("KeepWithNext(%s) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestTextContentParagraph(t *testing.T) {
	p := Paragraph{Spans: []TextSpan{NewSpan("Hello, "), NewSpan("world.")}}
	if got, want := TextContent(p), "Hello, world."; got != want {
		t.Errorf("TextContent(Paragraph) = %q, want %q", got, want)
	}
}

func TestTextContentNestedBlockQuote(t *testing.T) {
	bq := BlockQuote{Elements: []Block{
		Paragraph{Spans: []TextSpan{NewSpan("one")}},
		Paragraph{Spans: []TextSpan{NewSpan("two")}},
	}}
	if got, want := TextContent(bq), "one\ntwo"; got != want {
		t.Errorf("TextContent(BlockQuote) = %q, want %q", got, want)
	}
}

func TestTextContentImageUsesAlt(t *testing.T) {
	img := Image{Src: "cover.jpg", Alt: "Cover art"}
	if got, want := TextContent(img), "Cover art"; got != want {
		t.Errorf("TextContent(Image) = %q, want %q", got, want)
	}
}

func TestTextContentTable(t *testing.T) {
	tbl := Table{
		Headers: []TableRow{{[]TextSpan{NewSpan("Name")}, []TextSpan{NewSpan("Age")}}},
		Rows:    []TableRow{{[]TextSpan{NewSpan("Ada")}, []TextSpan{NewSpan("36")}}},
	}
	got := TextContent(tbl)
	want := "Name Age\nAda 36"
	if got != want {
		t.Errorf("TextContent(Table) = %q, want %q", got, want)
	}
}

func TestIsWhitespaceOnly(t *testing.T) {
	if !IsWhitespaceOnly(Paragraph{Spans: []TextSpan{NewSpan("   \n\t")}}) {
		t.Error("IsWhitespaceOnly(blank paragraph) = false, want true")
	}
	if IsWhitespaceOnly(Paragraph{Spans: []TextSpan{NewSpan("x")}}) {
		t.Error("IsWhitespaceOnly(non-blank paragraph) = true, want false")
	}
	if IsWhitespaceOnly(HorizontalRule{}) {
		t.Error("IsWhitespaceOnly(HorizontalRule) = true, want false (never filterable on text grounds)")
	}
	if IsWhitespaceOnly(Image{Src: "x.png"}) {
		t.Error("IsWhitespaceOnly(Image with no alt) = true, want false (never filterable on text grounds)")
	}
}

func TestDocumentTextContentJoinsChapters(t *testing.T) {
	doc := Document{Chapters: []Chapter{
		{ID: "c1", Title: "One", Elements: []Block{Paragraph{Spans: []TextSpan{NewSpan("first")}}}},
		{ID: "c2", Title: "Two", Elements: []Block{Paragraph{Spans: []TextSpan{NewSpan("second")}}}},
	}}
	if got, want := doc.TextContent(), "first\nsecond"; got != want {
		t.Errorf("Document.TextContent() = %q, want %q", got, want)
	}
}
