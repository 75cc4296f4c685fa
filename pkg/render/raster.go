package render

import (
	"math"
)

// ScreenVertex is a vertex mapped to the pixel grid: continuous screen
// coordinates (x right, y up, row 0 at the bottom), a normalized depth
// in [0, 1] with smaller values nearer, and interpolated attributes.
type ScreenVertex struct {
	X, Y, Z float64
	Attr    Attrib
}

// Rasterizer draws points, lines, and filled triangles into a Screen.
// Inputs are assumed already clipped; out-of-bounds pixels are
// discarded by the Screen, so slight overhang is safe but wasteful.
type Rasterizer struct {
	screen  *Screen
	palette *Palette
}

func NewRasterizer(screen *Screen, palette *Palette) *Rasterizer {
	return &Rasterizer{screen: screen, palette: palette}
}

func (r *Rasterizer) cell(z float64, a Attrib) Cell {
	return Cell{
		Glyph: r.palette.GlyphAt(a.Glyph),
		Depth: z,
		Color: a.Color.Clamp(),
	}
}

// DrawPoint writes the single pixel containing the vertex.
func (r *Rasterizer) DrawPoint(v ScreenVertex) {
	x := int(math.Floor(v.X))
	y := int(math.Floor(v.Y))
	r.screen.SetPixel(x, y, r.cell(v.Z, v.Attr))
}

// DrawLine steps a DDA from a to b, one pixel per unit of the major
// axis, interpolating depth and attributes along the way.
func (r *Rasterizer) DrawLine(a, b ScreenVertex) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := int(math.Round(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		r.DrawPoint(a)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(a.X + dx*t))
		y := int(math.Round(a.Y + dy*t))
		z := a.Z + (b.Z-a.Z)*t
		r.screen.SetPixel(x, y, r.cell(z, a.Attr.Lerp(b.Attr, t)))
	}
}

// edgeCoeffs holds the edge function E(x, y) = A*x + B*y + C for one
// directed triangle edge. E is positive on the interior side for
// counter-clockwise triangles and increments by A per column and B per
// row, so it can be stepped instead of re-evaluated.
type edgeCoeffs struct {
	A, B, C float64
}

func edge(x0, y0, x1, y1 float64) edgeCoeffs {
	return edgeCoeffs{
		A: y0 - y1,
		B: x1 - x0,
		C: x0*y1 - x1*y0,
	}
}

func (e edgeCoeffs) at(x, y float64) float64 {
	return e.A*x + e.B*y + e.C
}

// topLeft reports whether the directed edge counts boundary pixels
// under the top-left fill rule. With y up and counter-clockwise
// winding, left edges descend and top edges run leftward.
func (e edgeCoeffs) topLeft() bool {
	// A = y0-y1, B = x1-x0: descending means A > 0, leftward B < 0.
	if e.A != 0 {
		return e.A > 0
	}
	return e.B < 0
}

// FillTriangle rasterizes a counter-clockwise triangle with the
// top-left fill rule, so triangles sharing an edge cover each pixel
// exactly once. Degenerate (zero-area) triangles are skipped.
func (r *Rasterizer) FillTriangle(v0, v1, v2 ScreenVertex) {
	area2 := (v1.X-v0.X)*(v2.Y-v0.Y) - (v2.X-v0.X)*(v1.Y-v0.Y)
	if area2 < 1e-12 {
		return
	}
	invArea := 1 / area2

	minX := int(math.Floor(math.Min(v0.X, math.Min(v1.X, v2.X))))
	maxX := int(math.Ceil(math.Max(v0.X, math.Max(v1.X, v2.X))))
	minY := int(math.Floor(math.Min(v0.Y, math.Min(v1.Y, v2.Y))))
	maxY := int(math.Ceil(math.Max(v0.Y, math.Max(v1.Y, v2.Y))))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > r.screen.Width-1 {
		maxX = r.screen.Width - 1
	}
	if maxY > r.screen.Height-1 {
		maxY = r.screen.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Edge i is opposite vertex i, so its weight is vertex i's
	// barycentric numerator.
	e0 := edge(v1.X, v1.Y, v2.X, v2.Y)
	e1 := edge(v2.X, v2.Y, v0.X, v0.Y)
	e2 := edge(v0.X, v0.Y, v1.X, v1.Y)
	tl0 := e0.topLeft()
	tl1 := e1.topLeft()
	tl2 := e2.topLeft()

	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := e0.at(px, py)
	w1Row := e1.at(px, py)
	w2Row := e2.at(px, py)

	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row
		for x := minX; x <= maxX; x++ {
			if covered(w0, tl0) && covered(w1, tl1) && covered(w2, tl2) {
				b0 := w0 * invArea
				b1 := w1 * invArea
				b2 := w2 * invArea
				z := b0*v0.Z + b1*v1.Z + b2*v2.Z
				attr := Attrib{
					Color: Color{
						R: b0*v0.Attr.Color.R + b1*v1.Attr.Color.R + b2*v2.Attr.Color.R,
						G: b0*v0.Attr.Color.G + b1*v1.Attr.Color.G + b2*v2.Attr.Color.G,
						B: b0*v0.Attr.Color.B + b1*v1.Attr.Color.B + b2*v2.Attr.Color.B,
					},
					Glyph: b0*v0.Attr.Glyph + b1*v1.Attr.Glyph + b2*v2.Attr.Glyph,
				}
				r.screen.SetPixel(x, y, r.cell(z, attr))
			}
			w0 += e0.A
			w1 += e1.A
			w2 += e2.A
		}
		w0Row += e0.B
		w1Row += e1.B
		w2Row += e2.B
	}
}

// covered applies the fill rule: strictly inside always counts, a
// pixel exactly on an edge counts only for that edge's owning
// triangle.
func covered(w float64, topLeft bool) bool {
	return w > 0 || (w == 0 && topLeft)
}
