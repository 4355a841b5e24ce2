// Package selection implements the Selection Engine (spec.md §4.5): a
// per-page index of Positioned Characters and the state machine that
// resolves pointer coordinates to text ranges and highlight rectangles.
package selection

import (
	"math"
	"sort"
	"strings"
)

// PositionedChar is one rendered character's geometry and source position,
// populated by the Renderer as a side effect of text rasterization
// (spec.md §4.5). LinkURL is non-empty when the character belongs to a
// linked span, supporting get_link_at_position (spec.md §9).
type PositionedChar struct {
	Char      rune
	X, Y      float64
	Width     float64
	Height    float64
	TextIndex int
	ChapterID string
	LinkURL   string
}

// Rect is a highlight rectangle.
type Rect struct {
	X, Y, Width, Height float64
}

// Selection is a resolved text range.
type Selection struct {
	StartIndex int
	EndIndex   int
	ChapterID  string
	Text       string
}

// Engine holds the state for one loaded page: its character index, current
// selection (if any), and drag state.
type Engine struct {
	chars    []PositionedChar
	current  *Selection
	dragging bool
	originX  float64
	originY  float64
}

// NewEngine builds an empty Selection Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// SetChars replaces the current page's Positioned Character index, clearing
// any in-progress selection.
func (e *Engine) SetChars(chars []PositionedChar) {
	e.chars = chars
	e.current = nil
	e.dragging = false
}

// Start begins a drag at (x, y), clearing any existing selection.
func (e *Engine) Start(x, y float64) {
	e.dragging = true
	e.originX, e.originY = x, y
	e.current = nil
}

// Update extends the selection from the drag origin to (x, y). A no-op if
// no drag is in progress.
func (e *Engine) Update(x, y float64) {
	if !e.dragging {
		return
	}
	anchor := nearestChar(e.chars, e.originX, e.originY)
	target := nearestChar(e.chars, x, y)
	if anchor == nil || target == nil {
		return
	}

	start, end := anchor.TextIndex, target.TextIndex
	if start > end {
		start, end = end, start
	}
	end++ // one past the greater index

	var text strings.Builder
	for _, c := range selectedInRange(e.chars, start, end) {
		text.WriteRune(c.Char)
	}

	e.current = &Selection{StartIndex: start, EndIndex: end, ChapterID: anchor.ChapterID, Text: text.String()}
}

// End stops the drag and returns a clone of the current selection, or nil
// if none is set.
func (e *Engine) End() *Selection {
	e.dragging = false
	if e.current == nil {
		return nil
	}
	clone := *e.current
	return &clone
}

// Clear drops the current selection without touching drag state.
func (e *Engine) Clear() {
	e.current = nil
}

// SelectedText returns the current selection's text, or "" if none.
func (e *Engine) SelectedText() string {
	if e.current == nil {
		return ""
	}
	return e.current.Text
}

// Rects returns the current selection's highlight rectangles, coalescing
// consecutive same-Y characters (spec.md §4.5).
func (e *Engine) Rects() []Rect {
	if e.current == nil {
		return nil
	}
	selected := selectedInRange(e.chars, e.current.StartIndex, e.current.EndIndex)
	if len(selected) == 0 {
		return nil
	}

	var rects []Rect
	runStart := 0
	for i := 1; i <= len(selected); i++ {
		if i == len(selected) || selected[i].Y != selected[runStart].Y {
			first, last := selected[runStart], selected[i-1]
			rects = append(rects, Rect{
				X:      first.X,
				Y:      first.Y,
				Width:  last.X + last.Width - first.X,
				Height: first.Height,
			})
			runStart = i
		}
	}
	return rects
}

// LinkAt returns the link URL of the character at (x, y), or "" if the
// point misses every character or hits one with no link (spec.md §9:
// get_link_at_position).
func (e *Engine) LinkAt(x, y float64) string {
	for _, c := range e.chars {
		if x >= c.X && x < c.X+c.Width && y >= c.Y && y < c.Y+c.Height {
			return c.LinkURL
		}
	}
	return ""
}

func selectedInRange(chars []PositionedChar, start, end int) []PositionedChar {
	var out []PositionedChar
	for _, c := range chars {
		if c.TextIndex >= start && c.TextIndex < end {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TextIndex < out[j].TextIndex })
	return out
}

// nearestChar implements the nearest-char policy: among characters whose
// Y-band contains y, the one whose x-center is closest to x; if none, drop
// to the nearest Y line and repeat (spec.md §4.5).
func nearestChar(chars []PositionedChar, x, y float64) *PositionedChar {
	if best := closestXInBand(chars, x, y); best != nil {
		return best
	}

	lineY, found := nearestLineY(chars, y)
	if !found {
		return nil
	}
	var sameLine []PositionedChar
	for _, c := range chars {
		if c.Y == lineY {
			sameLine = append(sameLine, c)
		}
	}
	return closestXInBand(sameLine, x, lineY)
}

func closestXInBand(chars []PositionedChar, x, y float64) *PositionedChar {
	var best *PositionedChar
	bestDist := math.Inf(1)
	for i := range chars {
		c := &chars[i]
		if y < c.Y || y >= c.Y+c.Height {
			continue
		}
		dist := math.Abs((c.X + c.Width/2) - x)
		if dist < bestDist {
			bestDist = dist
			best = c
		}
	}
	return best
}

func nearestLineY(chars []PositionedChar, y float64) (float64, bool) {
	bestDist := math.Inf(1)
	var best float64
	found := false
	for _, c := range chars {
		dist := math.Abs(c.Y - y)
		if dist < bestDist {
			bestDist = dist
			best = c.Y
			found = true
		}
	}
	return best, found
}
