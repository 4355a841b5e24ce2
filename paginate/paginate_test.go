package paginate

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ereader/layout"
	"ereader/settings"
)

func testSettings() settings.Settings {
	s := settings.Default()
	s.ContainerWidth = 800
	s.ContainerHeight = 600
	return s
}

func TestPaginateEmptyDocumentHasNoPages(t *testing.T) {
	book := Paginate(testSettings(), layout.Document{})
	if book.TotalPages != 0 {
		t.Fatalf("TotalPages = %d, want 0", book.TotalPages)
	}
}

func TestPaginateChapterAlwaysGetsAtLeastOnePage(t *testing.T) {
	doc := layout.Document{Chapters: []layout.Chapter{{ID: "c1", Title: "Empty"}}}
	book := Paginate(testSettings(), doc)
	if book.TotalPages != 1 {
		t.Fatalf("TotalPages = %d, want 1 (empty chapter still yields a page)", book.TotalPages)
	}
	if book.Pages[0].ChapterID != "c1" {
		t.Errorf("Pages[0].ChapterID = %q, want c1", book.Pages[0].ChapterID)
	}
}

func TestPaginateContiguousPageIndices(t *testing.T) {
	s := testSettings()
	var elements []layout.Block
	for i := 0; i < 40; i++ {
		elements = append(elements, layout.Paragraph{Spans: []layout.TextSpan{layout.NewSpan(longText)}, Indent: true})
	}
	doc := layout.Document{Chapters: []layout.Chapter{
		{ID: "c1", Title: "One", Elements: elements},
		{ID: "c2", Title: "Two", Elements: elements},
	}}
	book := Paginate(s, doc)
	if book.TotalPages <= 1 {
		t.Fatalf("TotalPages = %d, want multiple pages across two large chapters", book.TotalPages)
	}
	for i, p := range book.Pages {
		if p.Index != i {
			t.Fatalf("Pages[%d].Index = %d, want %d (contiguous)", i, p.Index, i)
		}
	}
}

// TestPaginateIsDeterministicAcrossSettingsChurn is spec.md §8 property 3:
// re-pagination after a Settings change depends only on the new Settings
// and the Document, never on the prior pagination run.
func TestPaginateIsDeterministicAcrossSettingsChurn(t *testing.T) {
	doc := layout.Document{Chapters: []layout.Chapter{
		{ID: "c1", Title: "One", Elements: []layout.Block{
			layout.Paragraph{Spans: []layout.TextSpan{layout.NewSpan(longText)}, Indent: true},
		}},
	}}

	a := testSettings()
	b := testSettings()
	b.FontSize = 24
	_ = Paginate(b, doc) // perturb with an unrelated pagination run first
	viaChurn := Paginate(a, doc)

	direct := Paginate(testSettings(), doc)
	if diff := cmp.Diff(direct, viaChurn); diff != "" {
		t.Fatalf("Paginate(a) after an intervening Paginate(b) differs from a fresh Paginate(a) (-direct +viaChurn):\n%s", diff)
	}
}

func TestPaginateTwoColumnAppliesYOffsetMarker(t *testing.T) {
	s := testSettings()
	s.Columns = 2
	var elements []layout.Block
	for i := 0; i < 60; i++ {
		elements = append(elements, layout.Paragraph{Spans: []layout.TextSpan{layout.NewSpan(longText)}, Indent: true})
	}
	doc := layout.Document{Chapters: []layout.Chapter{{ID: "c1", Title: "One", Elements: elements}}}
	book := Paginate(s, doc)

	marker := columnHeightMarker(s.ContentHeight())
	foundColumn2 := false
	for _, p := range book.Pages {
		for _, e := range p.Elements {
			if e.Y >= marker {
				foundColumn2 = true
			}
		}
	}
	if !foundColumn2 {
		t.Fatal("no element carried the column-2 Y offset marker across enough content for two columns")
	}
}

func TestPaginateHeadingKeepsWithNext(t *testing.T) {
	s := testSettings()
	heading := layout.Heading{Level: 2, Spans: []layout.TextSpan{layout.NewSpan("Section")}}
	short := layout.Paragraph{Spans: []layout.TextSpan{layout.NewSpan("short")}}

	headingHeight := measureElement(s, heading)
	shortHeight := measureElement(s, short)
	available := s.ContentHeight()

	// Fill a leading paragraph so little room remains: just enough for the
	// heading alone, but not for the heading plus the short paragraph after
	// it, forcing the keep-with-next rule to push both to a fresh page.
	filler := layout.Paragraph{Spans: []layout.TextSpan{layout.NewSpan(strings.Repeat("line\n", 12) + "line")}}
	fillerHeight := measureElement(s, filler) + s.ParagraphSpacing

	remaining := available - fillerHeight
	if remaining < headingHeight || remaining >= headingHeight+shortHeight {
		t.Skip("fixture does not land in the target boundary region for this settings snapshot")
	}

	doc := layout.Document{Chapters: []layout.Chapter{{ID: "c1", Elements: []layout.Block{filler, heading, short}}}}
	book := Paginate(s, doc)

	for _, p := range book.Pages {
		for i, e := range p.Elements {
			if _, ok := e.Block.(layout.Heading); ok && i == len(p.Elements)-1 {
				t.Fatalf("heading landed as the last element on page %d, separated from its following paragraph", p.Index)
			}
		}
	}
}

func TestSearchFindsOccurrenceCaseInsensitively(t *testing.T) {
	book := PaginatedBook{Pages: []Page{{
		Index:        0,
		ChapterID:    "ch1",
		ChapterTitle: "Chapter 1",
		Elements: []PageElement{{
			Block: layout.Paragraph{Spans: []layout.TextSpan{layout.NewSpan("Hello World, this is a test")}},
		}},
	}}}

	results := Search(book, "world")
	if len(results) != 1 {
		t.Fatalf("Search() = %d results, want 1", len(results))
	}
	if results[0].PageIndex != 0 {
		t.Errorf("PageIndex = %d, want 0", results[0].PageIndex)
	}
	if !strings.Contains(strings.ToLower(results[0].Snippet), "world") {
		t.Errorf("snippet %q does not contain the match", results[0].Snippet)
	}
}

func TestSearchSnippetTruncationMarkers(t *testing.T) {
	long := longText + " needle " + longText
	book := PaginatedBook{Pages: []Page{{
		Elements: []PageElement{{Block: layout.Paragraph{Spans: []layout.TextSpan{layout.NewSpan(long)}}}},
	}}}
	results := Search(book, "needle")
	if len(results) != 1 {
		t.Fatalf("Search() = %d results, want 1", len(results))
	}
	snippet := results[0].Snippet
	if !strings.HasPrefix(snippet, "…") {
		t.Errorf("snippet = %q, want leading ellipsis", snippet)
	}
	if !strings.HasSuffix(snippet, "…") {
		t.Errorf("snippet = %q, want trailing ellipsis", snippet)
	}
}

const longText = "Lorem ipsum dolor sit amet, consectetur adipiscing elit, sed do eiusmod tempor incididunt ut labore et dolore magna aliqua."
