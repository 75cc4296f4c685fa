package render

import (
	"fmt"
	"math"

	"github.com/termforge/charcoal/pkg/math3d"
)

// Vertex2 is a 2D draw-call vertex in normalized device coordinates
// (x, y in [-1, 1], y up).
type Vertex2 struct {
	Pos   math3d.Vec2
	Glyph byte
	Color Color
}

// Vertex3 is a 3D draw-call vertex in world space.
type Vertex3 struct {
	Pos   math3d.Vec3
	Glyph byte
	Color Color
}

// MeshSource is the geometry surface DrawMesh consumes: indexed
// triangles with per-vertex positions and normals in model space.
type MeshSource interface {
	VertexCount() int
	Vertex(i int) (position, normal math3d.Vec3)
	FaceCount() int
	Face(i int) [3]int
}

// BoundedMesh is a MeshSource with a model-space bounding box, which
// lets DrawMesh reject the whole mesh before touching any triangle.
type BoundedMesh interface {
	MeshSource
	Bounds() (min, max math3d.Vec3)
}

// Renderer drives the full pipeline: attribute validation, world to
// clip transform, clipping, perspective divide, screen mapping,
// backface culling, and rasterization. It is single-threaded; the clip
// queue and scratch buffers are reused across draw calls.
type Renderer struct {
	screen  *Screen
	palette *Palette
	raster  *Rasterizer
	camera  *Camera

	queue   workQueue[ClipTriangle]
	scratch []ClipTriangle

	// CullBackfaces drops 3D triangles that face away from the camera
	// (clockwise after projection). 2D triangles are never culled.
	CullBackfaces bool

	// DebugClipEdges overlays the edges introduced by clipping.
	DebugClipEdges bool

	frustum     Frustum
	frustumFor  math3d.Mat4
	haveFrustum bool

	// Mesh lighting model: intensity = ambient + diffuse * max(0, n.l).
	Ambient  float64
	Diffuse  float64
	LightDir math3d.Vec3
}

// NewRenderer creates a renderer targeting the screen, with a palette
// built from ramp. The camera aspect ratio is corrected for character
// cells being roughly twice as tall as they are wide.
func NewRenderer(screen *Screen, ramp string) (*Renderer, error) {
	palette, err := NewPalette(ramp)
	if err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	camera := NewCamera()
	camera.SetAspectRatio(float64(screen.Width) / (2 * float64(screen.Height)))
	return &Renderer{
		screen:        screen,
		palette:       palette,
		raster:        NewRasterizer(screen, palette),
		camera:        camera,
		CullBackfaces: true,
		Ambient:       0.2,
		Diffuse:       0.8,
		LightDir:      math3d.V3(0.5, 1, 0.8).Normalize(),
	}, nil
}

// Camera returns the renderer's camera for view and projection setup.
func (r *Renderer) Camera() *Camera {
	return r.camera
}

// Screen returns the target screen.
func (r *Renderer) Screen() *Screen {
	return r.screen
}

// Palette returns the active glyph palette.
func (r *Renderer) Palette() *Palette {
	return r.palette
}

// Clear resets the target screen for a new frame.
func (r *Renderer) Clear() {
	r.screen.Clear()
}

// attrib validates a draw-call glyph and color. Attributes are checked
// once here so everything downstream can assume they hold; violations
// are programmer errors, not runtime conditions.
func (r *Renderer) attrib(glyph byte, c Color) Attrib {
	idx := r.palette.Index(glyph)
	if idx < 0 {
		panic(fmt.Sprintf("render: glyph %q not in palette", glyph))
	}
	if !c.InRange() {
		panic(fmt.Sprintf("render: color %+v outside [0,1]", c))
	}
	return Attrib{Color: c, Glyph: float64(idx)}
}

// layerDepth maps the 8-bit z-order of 2D draw calls onto the depth
// range: layer 0 is frontmost.
func layerDepth(layer uint8) float64 {
	return float64(layer) / 255
}

func clipVertex2(v Vertex2, attr Attrib, layer uint8) ClipVertex {
	return ClipVertex{
		Pos:  math3d.V4(v.Pos.X, v.Pos.Y, layerDepth(layer), 1),
		Attr: attr,
	}
}

// toScreen maps a post-divide NDC position onto the continuous pixel
// grid. NDC -1 maps to the left/bottom edge of pixel 0 and +1 to the
// right/top edge of the last pixel; pixels that land exactly on the
// outer edge are discarded by the screen's bounds check. Depth outside
// [0, 1] from rounding is clamped.
func (r *Renderer) toScreen(ndc math3d.Vec3, attr Attrib) ScreenVertex {
	z := (ndc.Z + 1) * 0.5
	if z < 0 {
		z = 0
	} else if z > 1 {
		z = 1
	}
	return ScreenVertex{
		X:    (ndc.X + 1) * 0.5 * float64(r.screen.Width),
		Y:    (ndc.Y + 1) * 0.5 * float64(r.screen.Height),
		Z:    z,
		Attr: attr,
	}
}

// toScreen2 maps a 2D clip vertex, whose z already carries the layer
// depth directly.
func (r *Renderer) toScreen2(v ClipVertex) ScreenVertex {
	return ScreenVertex{
		X:    (v.Pos.X + 1) * 0.5 * float64(r.screen.Width),
		Y:    (v.Pos.Y + 1) * 0.5 * float64(r.screen.Height),
		Z:    v.Pos.Z,
		Attr: v.Attr,
	}
}

// DrawPoint2 plots a single point given in normalized device
// coordinates, with layer as its z-order (0 = frontmost).
func (r *Renderer) DrawPoint2(v Vertex2, layer uint8) {
	cv := clipVertex2(v, r.attrib(v.Glyph, v.Color), layer)
	if !insideVolume(boxBounds, cv.Pos) {
		return
	}
	r.raster.DrawPoint(r.toScreen2(cv))
}

// DrawLine2 draws a line between two points in normalized device
// coordinates, clipped to the visible box.
func (r *Renderer) DrawLine2(a, b Vertex2, layer uint8) {
	ca := clipVertex2(a, r.attrib(a.Glyph, a.Color), layer)
	cb := clipVertex2(b, r.attrib(b.Glyph, b.Color), layer)
	ca, cb, ok := clipLine(ca, cb, boxBounds)
	if !ok {
		return
	}
	r.raster.DrawLine(r.toScreen2(ca), r.toScreen2(cb))
}

// DrawTriangle2 fills a triangle given in normalized device
// coordinates. Winding does not matter: 2D triangles are reordered,
// never culled.
func (r *Renderer) DrawTriangle2(a, b, c Vertex2, layer uint8) {
	ca := clipVertex2(a, r.attrib(a.Glyph, a.Color), layer)
	cb := clipVertex2(b, r.attrib(b.Glyph, b.Color), layer)
	cc := clipVertex2(c, r.attrib(c.Glyph, c.Color), layer)

	// Reorder clockwise input to counter-clockwise before clipping,
	// which preserves winding.
	area2 := (cb.Pos.X-ca.Pos.X)*(cc.Pos.Y-ca.Pos.Y) -
		(cc.Pos.X-ca.Pos.X)*(cb.Pos.Y-ca.Pos.Y)
	if area2 < 0 {
		cb, cc = cc, cb
	}

	r.scratch = clipTriangle(&r.queue, ClipTriangle{V: [3]ClipVertex{ca, cb, cc}}, boxBounds, r.scratch[:0])
	for _, tri := range r.scratch {
		s0 := r.toScreen2(tri.V[0])
		s1 := r.toScreen2(tri.V[1])
		s2 := r.toScreen2(tri.V[2])
		r.raster.FillTriangle(s0, s1, s2)
		if r.DebugClipEdges {
			r.debugEdges(tri, [3]ScreenVertex{s0, s1, s2})
		}
	}
}

// DrawPoint3 plots a world-space point through the camera.
func (r *Renderer) DrawPoint3(v Vertex3) {
	cv := ClipVertex{
		Pos:  r.camera.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(v.Pos, 1)),
		Attr: r.attrib(v.Glyph, v.Color),
	}
	if !insideVolume(frustumBounds, cv.Pos) {
		return
	}
	r.raster.DrawPoint(r.toScreen(cv.Pos.PerspectiveDivide(), cv.Attr))
}

// DrawLine3 draws a world-space line, clipped against the view
// frustum in homogeneous space before the perspective divide.
func (r *Renderer) DrawLine3(a, b Vertex3) {
	vp := r.camera.ViewProjectionMatrix()
	ca := ClipVertex{Pos: vp.MulVec4(math3d.V4FromV3(a.Pos, 1)), Attr: r.attrib(a.Glyph, a.Color)}
	cb := ClipVertex{Pos: vp.MulVec4(math3d.V4FromV3(b.Pos, 1)), Attr: r.attrib(b.Glyph, b.Color)}
	r.line3(ca, cb)
}

func (r *Renderer) line3(ca, cb ClipVertex) {
	ca, cb, ok := clipLine(ca, cb, frustumBounds)
	if !ok {
		return
	}
	r.raster.DrawLine(
		r.toScreen(ca.Pos.PerspectiveDivide(), ca.Attr),
		r.toScreen(cb.Pos.PerspectiveDivide(), cb.Attr),
	)
}

// DrawTriangle3 fills a world-space triangle. Front faces wind
// counter-clockwise when viewed from the camera; back faces are
// dropped when CullBackfaces is set, otherwise reordered and drawn.
func (r *Renderer) DrawTriangle3(a, b, c Vertex3) {
	vp := r.camera.ViewProjectionMatrix()
	r.triangle3(
		ClipVertex{Pos: vp.MulVec4(math3d.V4FromV3(a.Pos, 1)), Attr: r.attrib(a.Glyph, a.Color)},
		ClipVertex{Pos: vp.MulVec4(math3d.V4FromV3(b.Pos, 1)), Attr: r.attrib(b.Glyph, b.Color)},
		ClipVertex{Pos: vp.MulVec4(math3d.V4FromV3(c.Pos, 1)), Attr: r.attrib(c.Glyph, c.Color)},
	)
}

// triangle3 runs the clip-space half of the pipeline for one triangle
// already transformed to clip space.
func (r *Renderer) triangle3(ca, cb, cc ClipVertex) {
	r.scratch = clipTriangle(&r.queue, ClipTriangle{V: [3]ClipVertex{ca, cb, cc}}, frustumBounds, r.scratch[:0])
	for _, tri := range r.scratch {
		var s [3]ScreenVertex
		for i := range 3 {
			ndc := tri.V[i].Pos.PerspectiveDivide()
			s[i] = r.toScreen(ndc, tri.V[i].Attr)
		}

		// Orientation after projection decides facing. Clipping
		// preserved the input winding, so one test covers the
		// original triangle and all of its clip fragments alike.
		area2 := (s[1].X-s[0].X)*(s[2].Y-s[0].Y) - (s[2].X-s[0].X)*(s[1].Y-s[0].Y)
		if area2 <= 0 {
			if r.CullBackfaces {
				continue
			}
			s[1], s[2] = s[2], s[1]
		}

		r.raster.FillTriangle(s[0], s[1], s[2])
		if r.DebugClipEdges {
			r.debugEdges(tri, s)
		}
	}
}

// debugEdges overlays the edges the clipper introduced, slightly
// nearer than the fill so they survive the depth test.
func (r *Renderer) debugEdges(tri ClipTriangle, s [3]ScreenVertex) {
	const bias = 1e-3
	for i := range 3 {
		if !tri.EdgeNew[i] {
			continue
		}
		a := s[i]
		b := s[(i+1)%3]
		a.Z = math.Max(0, a.Z-bias)
		b.Z = math.Max(0, b.Z-bias)
		r.raster.DrawLine(a, b)
	}
}

// viewFrustum returns world-space frustum planes for the current
// camera, recomputing them only when the view-projection changes.
func (r *Renderer) viewFrustum() Frustum {
	vp := r.camera.ViewProjectionMatrix()
	if !r.haveFrustum || vp != r.frustumFor {
		r.frustum = FrustumFromMatrix(vp)
		r.frustumFor = vp
		r.haveFrustum = true
	}
	return r.frustum
}

// meshVisible applies coarse frustum rejection to a mesh's transformed
// bounding box. Meshes without bounds are always considered visible.
func (r *Renderer) meshVisible(mesh MeshSource, model math3d.Mat4) bool {
	bounded, ok := mesh.(BoundedMesh)
	if !ok {
		return true
	}
	min, max := bounded.Bounds()
	return r.viewFrustum().IntersectsAABB(NewAABB(min, max).Transform(model))
}

// DrawMesh renders a lit mesh: per-vertex intensity from a fixed
// directional light picks both the glyph (darker ramp entries for
// dimmer faces) and scales the base color.
func (r *Renderer) DrawMesh(mesh MeshSource, model math3d.Mat4, base Color) {
	if !base.InRange() {
		panic(fmt.Sprintf("render: color %+v outside [0,1]", base))
	}
	if mesh.FaceCount() == 0 || !r.meshVisible(mesh, model) {
		return
	}

	vp := r.camera.ViewProjectionMatrix().Mul(model)
	top := float64(r.palette.Size() - 1)

	verts := make([]ClipVertex, mesh.VertexCount())
	for i := range verts {
		pos, normal := mesh.Vertex(i)
		n := model.MulVec3Dir(normal).Normalize()
		intensity := r.Ambient + r.Diffuse*math.Max(0, n.Dot(r.LightDir))
		if intensity > 1 {
			intensity = 1
		}
		verts[i] = ClipVertex{
			Pos: vp.MulVec4(math3d.V4FromV3(pos, 1)),
			Attr: Attrib{
				Color: base.Scale(intensity),
				Glyph: intensity * top,
			},
		}
	}

	for i := 0; i < mesh.FaceCount(); i++ {
		f := mesh.Face(i)
		r.triangle3(verts[f[0]], verts[f[1]], verts[f[2]])
	}
}

// DrawMeshWireframe renders only the mesh edges, each at full
// intensity with the palette's brightest glyph.
func (r *Renderer) DrawMeshWireframe(mesh MeshSource, model math3d.Mat4, base Color) {
	if !base.InRange() {
		panic(fmt.Sprintf("render: color %+v outside [0,1]", base))
	}
	if mesh.FaceCount() == 0 || !r.meshVisible(mesh, model) {
		return
	}

	vp := r.camera.ViewProjectionMatrix().Mul(model)
	attr := Attrib{Color: base, Glyph: float64(r.palette.Size() - 1)}

	verts := make([]ClipVertex, mesh.VertexCount())
	for i := range verts {
		pos, _ := mesh.Vertex(i)
		verts[i] = ClipVertex{Pos: vp.MulVec4(math3d.V4FromV3(pos, 1)), Attr: attr}
	}

	for i := 0; i < mesh.FaceCount(); i++ {
		f := mesh.Face(i)
		r.line3(verts[f[0]], verts[f[1]])
		r.line3(verts[f[1]], verts[f[2]])
		r.line3(verts[f[2]], verts[f[0]])
	}
}
