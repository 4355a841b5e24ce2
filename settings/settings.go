// Package settings holds the immutable Settings snapshot consumed by the
// Paginator and the Renderer, along with its derived geometry and the
// JSON bridge used by the host's update_settings operation.
package settings

import (
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"

	"ereader/ereaderrors"
	"ereader/rgba"
)

// Alignment is the paragraph text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
	AlignCenter
	AlignJustify
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	case AlignJustify:
		return "justify"
	default:
		return "left"
	}
}

// MarshalJSON renders Alignment the way the host JSON schema expects:
// a lowercase string, matching spec.md's camelCase/lowercase field
// conventions for externally visible enums.
func (a Alignment) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON parses the lowercase string form. Unknown values default to
// AlignLeft rather than failing the whole settings document - alignment is
// cosmetic, not load-bearing.
func (a *Alignment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "right":
		*a = AlignRight
	case "center":
		*a = AlignCenter
	case "justify":
		*a = AlignJustify
	default:
		*a = AlignLeft
	}
	return nil
}

// headingScale maps heading level (1..6) to its font-size multiplier, per
// spec.md §3.
var headingScale = [7]float64{
	0: 1.0, // unused
	1: 2.0,
	2: 1.5,
	3: 1.25,
	4: 1.0,
	5: 0.875,
	6: 0.75,
}

// Settings is the immutable typography/layout/appearance configuration
// snapshot. Field names are camelCase in JSON to match spec.md §6.
type Settings struct {
	// Typography
	FontFamily    string  `json:"fontFamily"`
	FontSize      float64 `json:"fontSize"`
	LineHeight    float64 `json:"lineHeight"`
	LetterSpacing float64 `json:"letterSpacing"`

	// Page geometry
	PaddingX        float64 `json:"paddingX"`
	PaddingY        float64 `json:"paddingY"`
	ContainerWidth  float64 `json:"containerWidth"`
	ContainerHeight float64 `json:"containerHeight"`
	MaxContentWidth float64 `json:"maxContentWidth"`
	Columns         int     `json:"columns"`
	ColumnGap       float64 `json:"columnGap"`

	// Appearance
	BackgroundColor rgba.Color `json:"backgroundColor"`
	TextColor       rgba.Color `json:"textColor"`
	LinkColor       rgba.Color `json:"linkColor"`
	HeadingColor    rgba.Color `json:"headingColor"`

	// Paragraph shape
	ParagraphIndent  float64   `json:"paragraphIndent"`
	ParagraphSpacing float64   `json:"paragraphSpacing"`
	TextAlign        Alignment `json:"textAlign"`

	// Hyphenation is part of the data model per spec.md §3 but has no
	// effect on measurement or rendering: hyphenation dictionaries are an
	// explicit Non-goal (spec.md §1). Carried through for host fidelity.
	Hyphenation bool `json:"hyphenation"`
}

// Default returns the engine's built-in defaults, ported from the original
// implementation's ReaderSettings::default (original_source/.../settings.rs).
func Default() Settings {
	return Settings{
		FontFamily:       "Literata",
		FontSize:         18.0,
		LineHeight:       1.8,
		LetterSpacing:    0.0,
		PaddingX:         48.0,
		PaddingY:         40.0,
		MaxContentWidth:  672.0,
		Columns:          1,
		ColumnGap:        48.0,
		BackgroundColor:  rgba.RGB(253, 251, 247),
		TextColor:        rgba.RGB(45, 42, 38),
		LinkColor:        rgba.RGB(59, 130, 246),
		HeadingColor:     rgba.RGB(30, 28, 25),
		ParagraphIndent:  27.0,
		ParagraphSpacing: 22.5,
		TextAlign:        AlignJustify,
		Hyphenation:      true,
	}
}

// FromJSON parses a Settings snapshot from host JSON and validates it.
func FromJSON(data []byte) (Settings, error) {
	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, ereaderrors.Wrap(ereaderrors.InvalidSettings, "unable to parse settings JSON", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the constraints the Paginator and Renderer depend on,
// aggregating every violation with go.uber.org/multierr rather than
// stopping at the first one, so a host fixing a settings document sees the
// whole list at once.
func (s Settings) Validate() error {
	var errs error
	if s.FontSize <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("fontSize must be positive, got %v", s.FontSize))
	}
	if s.LineHeight <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("lineHeight must be positive, got %v", s.LineHeight))
	}
	if s.PaddingX < 0 || s.PaddingY < 0 {
		errs = multierr.Append(errs, fmt.Errorf("padding must be non-negative"))
	}
	if s.Columns != 1 && s.Columns != 2 {
		errs = multierr.Append(errs, fmt.Errorf("columns must be 1 or 2, got %d", s.Columns))
	}
	if s.ColumnGap < 0 {
		errs = multierr.Append(errs, fmt.Errorf("columnGap must be non-negative"))
	}
	if s.MaxContentWidth < 0 {
		errs = multierr.Append(errs, fmt.Errorf("maxContentWidth must be non-negative"))
	}
	if errs != nil {
		return ereaderrors.Wrap(ereaderrors.InvalidSettings, "settings constraint violation", errs)
	}
	return nil
}

// TotalContentWidth is the combined content width across both columns (the
// single-column content width when Columns == 1).
func (s Settings) TotalContentWidth() float64 {
	available := s.ContainerWidth - s.PaddingX*2
	if s.MaxContentWidth > 0 && s.Columns == 1 {
		return min(available, s.MaxContentWidth)
	}
	return available
}

// ContentWidth is the usable width of a single column.
func (s Settings) ContentWidth() float64 {
	total := s.TotalContentWidth()
	if s.Columns >= 2 {
		return (total - s.ColumnGap) / 2
	}
	return total
}

// ContentHeight is the usable height of the content area.
func (s Settings) ContentHeight() float64 {
	return s.ContainerHeight - s.PaddingY*2
}

// LineHeightPx is the line height expressed in pixels at the body font size.
func (s Settings) LineHeightPx() float64 {
	return s.FontSize * s.LineHeight
}

// HeadingSize returns the font size for a heading of the given level
// (1..=6); levels outside that range degrade to the smallest scale.
func (s Settings) HeadingSize(level int) float64 {
	if level < 1 || level > 6 {
		level = 6
	}
	return s.FontSize * headingScale[level]
}

// Column1X is the left edge of column 1, horizontally centering the used
// content width within the container.
func (s Settings) Column1X() float64 {
	available := s.ContainerWidth - s.PaddingX*2
	used := s.TotalContentWidth()
	return s.PaddingX + (available-used)/2
}

// Column2X is the left edge of column 2; equal to Column1X in single-column
// mode.
func (s Settings) Column2X() float64 {
	if s.Columns >= 2 {
		return s.Column1X() + s.ContentWidth() + s.ColumnGap
	}
	return s.Column1X()
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
