package render

import (
	"fmt"
	"math"
)

// FarDepth is the cleared "infinitely far" depth sentinel. Valid pixel
// writes carry a normalized depth in [0, 1]; smaller is nearer and wins.
const FarDepth = math.MaxFloat64

// Cell is the per-pixel payload: a display glyph, a normalized depth,
// and a foreground color.
type Cell struct {
	Glyph byte
	Depth float64
	Color Color
}

// Screen owns three same-shaped grids: displayed glyph, depth, and
// color. Screen space is y-up; row 0 is the bottom row. The vertical
// flip for terminal output happens exactly once, at presentation.
type Screen struct {
	Width  int
	Height int

	glyphs []byte
	depth  []float64
	colors []Color
}

// NewScreen allocates a screen with the given dimensions, cleared.
// Changing dimensions later means allocating a new screen.
func NewScreen(width, height int) (*Screen, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("screen: invalid dimensions %dx%d", width, height)
	}
	s := &Screen{
		Width:  width,
		Height: height,
		glyphs: make([]byte, width*height),
		depth:  make([]float64, width*height),
		colors: make([]Color, width*height),
	}
	s.Clear()
	return s, nil
}

// Clear resets the glyph grid to spaces, the depth grid to FarDepth,
// and the color grid to black.
func (s *Screen) Clear() {
	for i := range s.glyphs {
		s.glyphs[i] = ' '
		s.depth[i] = FarDepth
		s.colors[i] = Black
	}
}

// InBounds reports whether (x, y) addresses a cell.
func (s *Screen) InBounds(x, y int) bool {
	return x >= 0 && x < s.Width && y >= 0 && y < s.Height
}

// SetPixel writes a cell at (x, y) if it passes the depth test.
// A write that loses the depth test is a silent no-op. All three grids
// update together; a cell never mixes glyph, depth, and color from
// different writes.
//
// Preconditions: (x, y) in bounds, c.Depth in [0, 1], c.Glyph
// printable, color channels in [0, 1]. The clipper guarantees in-bounds
// coordinates before rasterization; an out-of-bounds write here is
// rejected rather than allowed to corrupt the neighboring row.
func (s *Screen) SetPixel(x, y int, c Cell) {
	if !s.InBounds(x, y) {
		return
	}
	i := y*s.Width + x
	if c.Depth >= s.depth[i] {
		return
	}
	s.glyphs[i] = c.Glyph
	s.depth[i] = c.Depth
	s.colors[i] = c.Color
}

// GetPixel returns the cell at (x, y). Out-of-bounds reads return a
// cleared cell; they are used for introspection and testing only.
func (s *Screen) GetPixel(x, y int) Cell {
	if !s.InBounds(x, y) {
		return Cell{Glyph: ' ', Depth: FarDepth, Color: Black}
	}
	i := y*s.Width + x
	return Cell{Glyph: s.glyphs[i], Depth: s.depth[i], Color: s.colors[i]}
}
