// Package render implements the charcoal clip-and-rasterize pipeline:
// a character-cell screen with a depth buffer, line and triangle clipping
// against the view volume, and scan conversion with interpolated color
// and glyph attributes.
package render

import "image/color"

// Color holds three float channels, nominally in [0, 1]. Interpolation
// may transiently leave the range; Clamp before handing a color to the
// screen or a terminal.
type Color struct {
	R, G, B float64
}

// RGB creates a color from float channels.
func RGB(r, g, b float64) Color {
	return Color{r, g, b}
}

// Common colors.
var (
	Black = Color{0, 0, 0}
	White = Color{1, 1, 1}
	Red   = Color{1, 0, 0}
	Green = Color{0, 1, 0}
	Blue  = Color{0, 0, 1}
	Gray  = Color{0.5, 0.5, 0.5}
)

// Scale returns the color with every channel multiplied by s.
func (c Color) Scale(s float64) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Lerp returns the linear interpolation between c and d by t.
func (c Color) Lerp(d Color, t float64) Color {
	return Color{
		c.R + (d.R-c.R)*t,
		c.G + (d.G-c.G)*t,
		c.B + (d.B-c.B)*t,
	}
}

// Clamp returns the color with every channel limited to [0, 1].
func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// InRange reports whether every channel lies in [0, 1].
func (c Color) InRange() bool {
	return c.R >= 0 && c.R <= 1 &&
		c.G >= 0 && c.G <= 1 &&
		c.B >= 0 && c.B <= 1
}

// RGBA converts to an 8-bit color for terminal output, clamping first.
func (c Color) RGBA() color.RGBA {
	k := c.Clamp()
	return color.RGBA{
		R: uint8(k.R*255 + 0.5),
		G: uint8(k.G*255 + 0.5),
		B: uint8(k.B*255 + 0.5),
		A: 255,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Attrib is the interpolated attribute bundle carried through clipping
// and rasterization: a color plus a palette index held as a float so it
// can be lerped, rounded back to an integer index at write time.
type Attrib struct {
	Color Color
	Glyph float64
}

// Lerp returns the linear interpolation between a and b by t.
func (a Attrib) Lerp(b Attrib, t float64) Attrib {
	return Attrib{
		Color: a.Color.Lerp(b.Color, t),
		Glyph: a.Glyph + (b.Glyph-a.Glyph)*t,
	}
}
