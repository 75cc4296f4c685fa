package render

import (
	"math"
	"testing"

	"github.com/termforge/charcoal/pkg/math3d"
)

func newTestRenderer(t *testing.T, w, h int) (*Renderer, *Screen) {
	t.Helper()
	s, err := NewScreen(w, h)
	if err != nil {
		t.Fatalf("NewScreen: %v", err)
	}
	r, err := NewRenderer(s, DefaultRamp)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r, s
}

func TestNewRendererBadRamp(t *testing.T) {
	s, err := NewScreen(4, 4)
	if err != nil {
		t.Fatalf("NewScreen: %v", err)
	}
	if _, err := NewRenderer(s, ""); err == nil {
		t.Error("NewRenderer with empty ramp = nil error, want error")
	}
}

func TestDrawValidationPanics(t *testing.T) {
	r, _ := newTestRenderer(t, 8, 8)

	tests := []struct {
		name string
		call func()
	}{
		{"glyph not in palette", func() {
			r.DrawPoint2(Vertex2{Pos: math3d.V2(0, 0), Glyph: 'Z', Color: White}, 0)
		}},
		{"color above range", func() {
			r.DrawPoint2(Vertex2{Pos: math3d.V2(0, 0), Glyph: '@', Color: RGB(1.5, 0, 0)}, 0)
		}},
		{"color below range", func() {
			r.DrawPoint2(Vertex2{Pos: math3d.V2(0, 0), Glyph: '@', Color: RGB(0, -0.1, 0)}, 0)
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("invalid draw call did not panic")
				}
			}()
			tc.call()
		})
	}
}

func TestDrawPoint2(t *testing.T) {
	r, s := newTestRenderer(t, 10, 10)

	// NDC origin lands in the center of the screen.
	r.DrawPoint2(Vertex2{Pos: math3d.V2(0, 0), Glyph: '@', Color: White}, 0)
	if c := s.GetPixel(5, 5); c.Glyph != '@' {
		t.Errorf("center pixel = %q, want '@'", c.Glyph)
	}

	// Points outside the box draw nothing.
	r.Clear()
	r.DrawPoint2(Vertex2{Pos: math3d.V2(1.2, 0), Glyph: '@', Color: White}, 0)
	if n := len(coveredPixels(s)); n != 0 {
		t.Errorf("outside point covered %d pixels, want 0", n)
	}
}

func TestDrawLine2Clipped(t *testing.T) {
	r, s := newTestRenderer(t, 10, 10)
	r.DrawLine2(
		Vertex2{Pos: math3d.V2(-5, 0), Glyph: '@', Color: White},
		Vertex2{Pos: math3d.V2(5, 0), Glyph: '@', Color: White},
		0,
	)

	// The clipped line spans the middle row and nothing else.
	if n := len(coveredPixels(s)); n == 0 {
		t.Fatal("clipped line drew nothing")
	}
	for px := range coveredPixels(s) {
		if px[1] != 5 {
			t.Errorf("pixel %v off the middle row", px)
		}
	}
}

// Scenario from the drawing surface: a triangle poking out of the top
// of the box must be clipped and never write outside the screen, with
// coverage on both sides of the split.
func TestDrawTriangle2Clipped(t *testing.T) {
	r, s := newTestRenderer(t, 20, 20)
	r.DrawTriangle2(
		Vertex2{Pos: math3d.V2(-2, 0), Glyph: '@', Color: White},
		Vertex2{Pos: math3d.V2(2, 0), Glyph: '@', Color: White},
		Vertex2{Pos: math3d.V2(0, 2), Glyph: '@', Color: White},
		0,
	)

	pix := coveredPixels(s)
	if len(pix) == 0 {
		t.Fatal("clipped triangle drew nothing")
	}
	// Coverage reaches well left and right of center on the bottom
	// half of the triangle.
	var left, right bool
	for px := range pix {
		if px[0] < 5 {
			left = true
		}
		if px[0] > 14 {
			right = true
		}
	}
	if !left || !right {
		t.Errorf("coverage lopsided: left=%v right=%v", left, right)
	}
}

// 2D triangles are drawn regardless of winding.
func TestDrawTriangle2WindingInsensitive(t *testing.T) {
	verts := [3]Vertex2{
		{Pos: math3d.V2(-0.5, -0.5), Glyph: '@', Color: White},
		{Pos: math3d.V2(0.5, -0.5), Glyph: '@', Color: White},
		{Pos: math3d.V2(0, 0.5), Glyph: '@', Color: White},
	}

	rCCW, sCCW := newTestRenderer(t, 16, 16)
	rCCW.DrawTriangle2(verts[0], verts[1], verts[2], 0)

	rCW, sCW := newTestRenderer(t, 16, 16)
	rCW.DrawTriangle2(verts[0], verts[2], verts[1], 0)

	ccw := coveredPixels(sCCW)
	cw := coveredPixels(sCW)
	if len(ccw) == 0 {
		t.Fatal("triangle drew nothing")
	}
	if len(ccw) != len(cw) {
		t.Fatalf("coverage differs by winding: %d vs %d pixels", len(ccw), len(cw))
	}
	for px := range ccw {
		if !cw[px] {
			t.Errorf("pixel %v missing from reversed winding", px)
		}
	}
}

func TestDrawTriangle2Layering(t *testing.T) {
	r, s := newTestRenderer(t, 16, 16)
	tri := func(glyph byte, c Color, layer uint8) {
		r.DrawTriangle2(
			Vertex2{Pos: math3d.V2(-0.5, -0.5), Glyph: glyph, Color: c},
			Vertex2{Pos: math3d.V2(0.5, -0.5), Glyph: glyph, Color: c},
			Vertex2{Pos: math3d.V2(0, 0.5), Glyph: glyph, Color: c},
			layer,
		)
	}

	// The back triangle drawn last must not overwrite the front one.
	tri('@', Red, 10)
	tri('#', Blue, 200)

	if c := s.GetPixel(8, 6); c.Glyph != '@' || c.Color != Red {
		t.Errorf("front pixel = %+v, want layer-10 write", c)
	}
}

func setupLookAt(r *Renderer) {
	cam := r.Camera()
	cam.SetView(math3d.V3(0, 0, 5), math3d.Zero3(), math3d.Up())
	cam.SetClipPlanes(0.1, 100)
}

func frontTriangle() [3]Vertex3 {
	// Facing the camera at the origin, counter-clockwise from +Z.
	return [3]Vertex3{
		{Pos: math3d.V3(-1, -1, 0), Glyph: '@', Color: White},
		{Pos: math3d.V3(1, -1, 0), Glyph: '@', Color: White},
		{Pos: math3d.V3(0, 1, 0), Glyph: '@', Color: White},
	}
}

func TestDrawTriangle3Visible(t *testing.T) {
	r, s := newTestRenderer(t, 40, 20)
	setupLookAt(r)

	v := frontTriangle()
	r.DrawTriangle3(v[0], v[1], v[2])

	pix := coveredPixels(s)
	if len(pix) == 0 {
		t.Fatal("front-facing triangle drew nothing")
	}
	for px := range pix {
		c := s.GetPixel(px[0], px[1])
		if c.Depth < 0 || c.Depth > 1 {
			t.Errorf("pixel %v depth %v outside [0,1]", px, c.Depth)
		}
	}
}

func TestDrawTriangle3BackfaceCulled(t *testing.T) {
	r, s := newTestRenderer(t, 40, 20)
	setupLookAt(r)

	v := frontTriangle()
	r.DrawTriangle3(v[0], v[2], v[1]) // reversed winding

	if n := len(coveredPixels(s)); n != 0 {
		t.Errorf("back-facing triangle covered %d pixels, want 0", n)
	}
}

func TestDrawTriangle3BackfaceKeptWhenCullingOff(t *testing.T) {
	r, s := newTestRenderer(t, 40, 20)
	setupLookAt(r)
	r.CullBackfaces = false

	v := frontTriangle()
	r.DrawTriangle3(v[0], v[2], v[1])

	if n := len(coveredPixels(s)); n == 0 {
		t.Error("back-facing triangle culled with culling disabled")
	}
}

func TestDrawTriangle3BehindCamera(t *testing.T) {
	r, s := newTestRenderer(t, 40, 20)
	setupLookAt(r)

	r.DrawTriangle3(
		Vertex3{Pos: math3d.V3(-1, -1, 10), Glyph: '@', Color: White},
		Vertex3{Pos: math3d.V3(1, -1, 10), Glyph: '@', Color: White},
		Vertex3{Pos: math3d.V3(0, 1, 10), Glyph: '@', Color: White},
	)

	if n := len(coveredPixels(s)); n != 0 {
		t.Errorf("triangle behind camera covered %d pixels, want 0", n)
	}
}

// A triangle straddling the near plane must be clipped, not dropped
// and not smeared across the screen by a sign flip in the divide.
func TestDrawTriangle3NearPlaneStraddle(t *testing.T) {
	r, s := newTestRenderer(t, 40, 20)
	setupLookAt(r)

	r.DrawTriangle3(
		Vertex3{Pos: math3d.V3(0, -1, 0), Glyph: '@', Color: White},
		Vertex3{Pos: math3d.V3(3, 1, 10), Glyph: '@', Color: White},
		Vertex3{Pos: math3d.V3(-3, 1, 10), Glyph: '@', Color: White},
	)

	if n := len(coveredPixels(s)); n == 0 {
		t.Error("near-straddling triangle drew nothing")
	}
}

func TestDrawTriangle3DepthOrder(t *testing.T) {
	r, s := newTestRenderer(t, 40, 20)
	setupLookAt(r)

	near := frontTriangle()
	far := frontTriangle()
	for i := range far {
		far[i].Pos.Z = -2
		far[i].Color = Red
		far[i].Glyph = '#'
	}

	// Far drawn after near must stay hidden where they overlap.
	r.DrawTriangle3(near[0], near[1], near[2])
	r.DrawTriangle3(far[0], far[1], far[2])

	// Sample the screen center, covered by both.
	c := s.GetPixel(20, 10)
	if c.Glyph != '@' || c.Color != White {
		t.Errorf("center pixel = %+v, want near triangle's write", c)
	}
}

func TestDrawLine3Clipped(t *testing.T) {
	r, s := newTestRenderer(t, 40, 20)
	setupLookAt(r)

	// One endpoint far behind the camera.
	r.DrawLine3(
		Vertex3{Pos: math3d.V3(0, 0, 0), Glyph: '@', Color: White},
		Vertex3{Pos: math3d.V3(0, 0, 50), Glyph: '@', Color: White},
	)
	if n := len(coveredPixels(s)); n == 0 {
		t.Error("partially visible line drew nothing")
	}
}

type stubMesh struct {
	verts   []math3d.Vec3
	normals []math3d.Vec3
	faces   [][3]int
	min     math3d.Vec3
	max     math3d.Vec3
}

func (m *stubMesh) VertexCount() int { return len(m.verts) }
func (m *stubMesh) Vertex(i int) (position, normal math3d.Vec3) {
	return m.verts[i], m.normals[i]
}
func (m *stubMesh) FaceCount() int                 { return len(m.faces) }
func (m *stubMesh) Face(i int) [3]int              { return m.faces[i] }
func (m *stubMesh) Bounds() (min, max math3d.Vec3) { return m.min, m.max }

func facingMesh() *stubMesh {
	n := math3d.V3(0, 0, 1)
	return &stubMesh{
		verts:   []math3d.Vec3{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 0, Y: 1}},
		normals: []math3d.Vec3{n, n, n},
		faces:   [][3]int{{0, 1, 2}},
		min:     math3d.V3(-1, -1, 0),
		max:     math3d.V3(1, 1, 0),
	}
}

func TestDrawMeshVisible(t *testing.T) {
	r, s := newTestRenderer(t, 40, 20)
	setupLookAt(r)

	r.DrawMesh(facingMesh(), math3d.Identity(), RGB(0.8, 0.8, 0.8))
	if n := len(coveredPixels(s)); n == 0 {
		t.Fatal("mesh drew nothing")
	}
}

func TestDrawMeshCulledByBounds(t *testing.T) {
	r, s := newTestRenderer(t, 40, 20)
	setupLookAt(r)

	// Translate the mesh far outside the frustum.
	r.DrawMesh(facingMesh(), math3d.Translate(math3d.V3(1000, 0, 0)), RGB(0.8, 0.8, 0.8))
	if n := len(coveredPixels(s)); n != 0 {
		t.Errorf("out-of-frustum mesh covered %d pixels, want 0", n)
	}
}

func TestDrawMeshWireframeVisible(t *testing.T) {
	r, s := newTestRenderer(t, 40, 20)
	setupLookAt(r)

	r.DrawMeshWireframe(facingMesh(), math3d.Identity(), White)
	if n := len(coveredPixels(s)); n == 0 {
		t.Fatal("wireframe drew nothing")
	}
}

func TestDebugClipEdgesOverlay(t *testing.T) {
	r, s := newTestRenderer(t, 20, 20)
	r.DebugClipEdges = true

	// Layer 100 leaves depth room below the fill for the biased
	// overlay lines.
	r.DrawTriangle2(
		Vertex2{Pos: math3d.V2(-2, 0), Glyph: '%', Color: White},
		Vertex2{Pos: math3d.V2(2, 0), Glyph: '%', Color: White},
		Vertex2{Pos: math3d.V2(0, 2), Glyph: '%', Color: White},
		100,
	)

	fill := layerDepth(100)
	overlay := 0
	for px := range coveredPixels(s) {
		d := s.GetPixel(px[0], px[1]).Depth
		if d < 0 {
			t.Errorf("pixel %v depth %v below 0", px, d)
		}
		if d < fill {
			overlay++
		}
	}
	if overlay == 0 {
		t.Error("no overlay pixels written nearer than the fill")
	}
}

func TestAspectRatioCellCorrection(t *testing.T) {
	r, _ := newTestRenderer(t, 80, 20)
	want := 80.0 / 40.0
	if got := r.Camera().AspectRatio; math.Abs(got-want) > 1e-9 {
		t.Errorf("aspect ratio = %v, want %v", got, want)
	}
}
