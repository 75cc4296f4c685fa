package render

import (
	"fmt"
	"math"
)

// DefaultRamp is a density-ordered shading ramp, darkest first.
const DefaultRamp = " .:-=+*#%@"

// Palette maps between printable ascii characters (codes 32-126) and a
// dense index space [0, Size). Built once at renderer initialization,
// immutable afterward. The mapping is a bijection restricted to palette
// members; non-members map to -1.
type Palette struct {
	ramp  []byte
	index [128]int
}

// NewPalette builds a palette from an ordered string of distinct
// printable ascii characters. Index 0 is the caller's "darkest" glyph.
func NewPalette(ramp string) (*Palette, error) {
	if len(ramp) == 0 {
		return nil, fmt.Errorf("palette: empty ramp")
	}
	p := &Palette{ramp: []byte(ramp)}
	for i := range p.index {
		p.index[i] = -1
	}
	for i := 0; i < len(ramp); i++ {
		c := ramp[i]
		if c < ' ' || c > '~' {
			return nil, fmt.Errorf("palette: non-printable character 0x%02x at index %d", c, i)
		}
		if p.index[c] != -1 {
			return nil, fmt.Errorf("palette: duplicate character %q", c)
		}
		p.index[c] = i
	}
	return p, nil
}

// Size returns the number of glyphs in the palette.
func (p *Palette) Size() int {
	return len(p.ramp)
}

// Glyph returns the ascii character at index i.
// An out-of-range index is a programming error.
func (p *Palette) Glyph(i int) byte {
	if i < 0 || i >= len(p.ramp) {
		panic(fmt.Sprintf("palette: glyph index %d out of range [0, %d)", i, len(p.ramp)))
	}
	return p.ramp[i]
}

// Index returns the dense index of character c, or -1 if c is not a
// palette member.
func (p *Palette) Index(c byte) int {
	if c >= 128 {
		return -1
	}
	return p.index[c]
}

// Contains reports whether c is a palette member.
func (p *Palette) Contains(c byte) bool {
	return p.Index(c) != -1
}

// GlyphAt rounds an interpolated float index to the nearest glyph,
// guarding against float error at the range ends.
func (p *Palette) GlyphAt(idx float64) byte {
	i := int(math.Round(idx))
	if i < 0 {
		i = 0
	}
	if i >= len(p.ramp) {
		i = len(p.ramp) - 1
	}
	return p.ramp[i]
}
