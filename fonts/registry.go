// Package fonts implements the Font Registry (spec.md §3/§4): parsing and
// storing loaded font-face bytes keyed by (family, style), and rasterizing
// individual glyphs on demand for the Renderer's text-block rasterizer.
package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/sfnt"
	"go.uber.org/zap"

	"ereader/ereaderrors"
)

// Style is the font style variant, degrading unknown styles to Regular
// (spec.md §3).
type Style int

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

func (s Style) String() string {
	switch s {
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bolditalic"
	default:
		return "regular"
	}
}

// face holds one parsed font face and its glyph-loading scratch buffer. The
// raw bytes it was parsed from are retained in Registry.raw for the
// lifetime of the Registry (spec.md §5 memory model).
type face struct {
	font *sfnt.Font
	buf  sfnt.Buffer
}

// Registry is the Font Registry: a mapping family -> style -> face, plus the
// raw byte pool. It is not safe for concurrent use; the engine serializes
// all operations (spec.md §5).
type Registry struct {
	families map[string]map[Style]*face
	raw      [][]byte
	log      *zap.Logger
}

// NewRegistry creates an empty Font Registry. A nil logger is replaced with
// a no-op logger, matching the teacher's css.NewParser convention.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		families: make(map[string]map[Style]*face),
		log:      log.Named("fonts"),
	}
}

// ParseFontName splits a loaded font's name into (family, Style) using the
// case-insensitive suffix priority order specified in spec.md §6:
// -bolditalic/-boldit, -bold, -italic/-it, -regular, else Regular unchanged.
func ParseFontName(name string) (family string, style Style) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "-bolditalic"):
		return name[:len(name)-len("-bolditalic")], BoldItalic
	case strings.HasSuffix(lower, "-boldit"):
		return name[:len(name)-len("-boldit")], BoldItalic
	case strings.HasSuffix(lower, "-bold"):
		return name[:len(name)-len("-bold")], Bold
	case strings.HasSuffix(lower, "-italic"):
		return name[:len(name)-len("-italic")], Italic
	case strings.HasSuffix(lower, "-it"):
		return name[:len(name)-len("-it")], Italic
	case strings.HasSuffix(lower, "-regular"):
		return name[:len(name)-len("-regular")], Regular
	default:
		return name, Regular
	}
}

// Load registers font bytes under the (family, style) parsed from name,
// implementing the engine's load_font operation (spec.md §6).
func (r *Registry) Load(name string, data []byte) error {
	family, style := ParseFontName(name)
	if family == "" {
		return ereaderrors.New(ereaderrors.FontError, "font name yields empty family")
	}

	f, err := sfnt.Parse(data)
	if err != nil {
		return ereaderrors.Wrap(ereaderrors.FontError, fmt.Sprintf("unable to parse font %q", name), err)
	}

	r.raw = append(r.raw, data)
	variants, ok := r.families[family]
	if !ok {
		variants = make(map[Style]*face)
		r.families[family] = variants
	}
	variants[style] = &face{font: f}

	r.log.Debug("Loaded font", zap.String("family", family), zap.String("style", style.String()), zap.Int("bytes", len(data)))
	return nil
}

// Face resolves (family, style) to a loaded face, falling back to Regular
// when the requested style is missing (spec.md §3/§9: "express as a lookup
// that tries (family, requested style) -> (family, Regular)"). Returns
// FontError if the family is unknown, or if neither the requested style nor
// Regular is loaded for it.
func (r *Registry) Face(family string, style Style) (*face, error) {
	variants, ok := r.families[family]
	if !ok {
		return nil, ereaderrors.New(ereaderrors.FontError, fmt.Sprintf("no font family loaded: %q", family))
	}
	if f, ok := variants[style]; ok {
		return f, nil
	}
	if f, ok := variants[Regular]; ok {
		return f, nil
	}
	return nil, ereaderrors.New(ereaderrors.FontError, fmt.Sprintf("no regular font for family %q", family))
}

// HasFamily reports whether any variant of family has been loaded.
func (r *Registry) HasFamily(family string) bool {
	_, ok := r.families[family]
	return ok
}
