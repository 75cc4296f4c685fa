package render

import (
	"github.com/termforge/charcoal/pkg/math3d"
)

// Plane is the set of points satisfying Normal . P + D = 0. Positive
// distances lie on the normal's side.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceTo returns the signed distance from the plane to a point.
func (p Plane) DistanceTo(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six planes of a view volume, normals pointing
// inward, ordered left, right, bottom, top, near, far. It is used for
// whole-mesh rejection before any per-triangle work; exact clipping
// happens later in clip space.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromMatrix extracts world-space frustum planes from a
// view-projection matrix using the Gribb/Hartmann method.
func FrustumFromMatrix(m math3d.Mat4) Frustum {
	// For the column-major matrix, row i element j is m[i+j*4].
	row := func(i int) math3d.Vec4 {
		return math3d.V4(m[i], m[i+4], m[i+8], m[i+12])
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	plane := func(v math3d.Vec4) Plane {
		return Plane{Normal: math3d.V3(v.X, v.Y, v.Z), D: v.W}
	}

	var f Frustum
	f.Planes[0] = plane(r3.Add(r0)) // left
	f.Planes[1] = plane(r3.Sub(r0)) // right
	f.Planes[2] = plane(r3.Add(r1)) // bottom
	f.Planes[3] = plane(r3.Sub(r1)) // top
	f.Planes[4] = plane(r3.Add(r2)) // near
	f.Planes[5] = plane(r3.Sub(r2)) // far

	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// IntersectsAABB reports whether any part of the box may be inside the
// frustum. It tests only each plane's positive vertex, so it can
// report true for boxes that straddle a frustum corner; false results
// are always correct rejections.
func (f Frustum) IntersectsAABB(box AABB) bool {
	for i := range f.Planes {
		p := f.Planes[i]
		v := math3d.V3(
			pick(p.Normal.X >= 0, box.Max.X, box.Min.X),
			pick(p.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			pick(p.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if p.DistanceTo(v) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceTo(p) < 0 {
			return false
		}
	}
	return true
}

func pick(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max corners.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box dimensions.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Transform returns an axis-aligned box bounding all eight corners of
// the original after transformation.
func (b AABB) Transform(m math3d.Mat4) AABB {
	corners := [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}

	out := AABB{Min: m.MulVec3(corners[0]), Max: m.MulVec3(corners[0])}
	for i := 1; i < 8; i++ {
		p := m.MulVec3(corners[i])
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// ContainsPoint reports whether the point is inside the box.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}
