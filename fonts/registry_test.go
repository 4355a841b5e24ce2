package fonts

import "testing"

func TestParseFontName(t *testing.T) {
	cases := []struct {
		name       string
		wantFamily string
		wantStyle  Style
	}{
		{"Lit-BoldItalic", "Lit", BoldItalic},
		{"Lit-BOLD", "Lit", Bold},
		{"Lit-it", "Lit", Italic},
		{"Lit", "Lit", Regular},
		{"Lit-Regular", "Lit", Regular},
		{"Lit-italic", "Lit", Italic},
		{"Lit-boldit", "Lit", BoldItalic},
		{"Lit-Weird", "Lit-Weird", Regular},
	}
	for _, c := range cases {
		family, style := ParseFontName(c.name)
		if family != c.wantFamily || style != c.wantStyle {
			t.Errorf("ParseFontName(%q) = (%q, %v), want (%q, %v)", c.name, family, style, c.wantFamily, c.wantStyle)
		}
	}
}

func TestFaceFallsBackToRegular(t *testing.T) {
	r := NewRegistry(nil)
	r.families["Lit"] = map[Style]*face{Regular: {}}

	f, err := r.Face("Lit", Bold)
	if err != nil {
		t.Fatalf("Face() error = %v", err)
	}
	if f != r.families["Lit"][Regular] {
		t.Fatalf("Face() did not fall back to the Regular face")
	}
}

func TestFaceMissingRegularIsFontError(t *testing.T) {
	r := NewRegistry(nil)
	r.families["Lit"] = map[Style]*face{Bold: {}}

	if _, err := r.Face("Lit", Bold); err != nil {
		t.Fatalf("Face() error = %v, want nil (exact style present)", err)
	}
	if _, err := r.Face("Lit", Italic); err == nil {
		t.Fatal("Face() error = nil, want FontError (no regular fallback available)")
	}
}

func TestFaceUnknownFamily(t *testing.T) {
	r := NewRegistry(nil)
	if _, err := r.Face("Nope", Regular); err == nil {
		t.Fatal("Face() error = nil, want FontError for unknown family")
	}
}
