package render

import (
	"github.com/termforge/charcoal/pkg/math3d"
)

// Clipping runs against the half-spaces of a convex clip volume. In 3D
// the volume is the homogeneous view frustum (each coordinate within
// ±w, before the perspective divide); in 2D it is the normalized box
// x, y in [-1, 1], expressed with the same boundary functions by
// carrying 2D positions as Vec4 with w = 1.

// Clip boundary indices.
const (
	clipLeft = iota
	clipRight
	clipBottom
	clipTop
	clipNear
	clipFar
)

var (
	// boxBounds clips 2D primitives against x, y in [-1, 1].
	boxBounds = []int{clipLeft, clipRight, clipBottom, clipTop}

	// frustumBounds clips homogeneous 3D primitives against all six
	// half-spaces of the view volume.
	frustumBounds = []int{clipLeft, clipRight, clipBottom, clipTop, clipNear, clipFar}
)

// boundaryDist returns the signed distance of a homogeneous point from
// a clip boundary. Non-negative means inside. Each function is linear
// in the point's components, so it interpolates exactly along an edge.
func boundaryDist(bound int, v math3d.Vec4) float64 {
	switch bound {
	case clipLeft:
		return v.X + v.W
	case clipRight:
		return v.W - v.X
	case clipBottom:
		return v.Y + v.W
	case clipTop:
		return v.W - v.Y
	case clipNear:
		return v.Z + v.W
	case clipFar:
		return v.W - v.Z
	}
	panic("render: unknown clip boundary")
}

// insideVolume reports whether a homogeneous point is inside every
// listed boundary.
func insideVolume(bounds []int, v math3d.Vec4) bool {
	for _, b := range bounds {
		if boundaryDist(b, v) < 0 {
			return false
		}
	}
	return true
}

// ClipVertex is a clip-space position with its interpolated attributes.
type ClipVertex struct {
	Pos  math3d.Vec4
	Attr Attrib
}

func lerpVertex(a, b ClipVertex, t float64) ClipVertex {
	return ClipVertex{
		Pos:  a.Pos.Lerp(b.Pos, t),
		Attr: a.Attr.Lerp(b.Attr, t),
	}
}

// clipLineParams runs Liang-Barsky parametric clipping of the segment
// a->b against the listed boundaries and returns the surviving
// parameter interval [t0, t1] of the original segment. ok is false if
// the segment lies entirely outside.
func clipLineParams(a, b ClipVertex, bounds []int) (t0, t1 float64, ok bool) {
	t0, t1 = 0, 1
	for _, bound := range bounds {
		d0 := boundaryDist(bound, a.Pos)
		d1 := boundaryDist(bound, b.Pos)
		delta := d1 - d0

		if delta == 0 {
			// Parallel to this boundary: reject if outside it.
			if d0 < 0 {
				return 0, 0, false
			}
			continue
		}

		t := d0 / (d0 - d1) // boundary crossing
		if delta > 0 {
			// Entering the half-space.
			if t > t0 {
				t0 = t
			}
		} else {
			// Leaving the half-space.
			if t < t1 {
				t1 = t
			}
		}
	}
	if t0 > t1 {
		return 0, 0, false
	}
	return t0, t1, true
}

// clipLine returns the sub-segment of a->b inside the volume, with
// attributes interpolated at any newly introduced endpoint.
func clipLine(a, b ClipVertex, bounds []int) (ClipVertex, ClipVertex, bool) {
	t0, t1, ok := clipLineParams(a, b, bounds)
	if !ok {
		return a, b, false
	}
	out0, out1 := a, b
	if t0 > 0 {
		out0 = lerpVertex(a, b, t0)
	}
	if t1 < 1 {
		out1 = lerpVertex(a, b, t1)
	}
	return out0, out1, true
}

// ClipTriangle is a clipper work item: three vertices plus a flag per
// edge marking edges introduced by clipping (edge i runs V[i] to
// V[(i+1)%3]). The flags drive the optional clip-outline debug
// rendering and nothing else.
type ClipTriangle struct {
	V       [3]ClipVertex
	EdgeNew [3]bool
}

// rotate cyclically shifts the vertex (and edge flag) order by r,
// preserving winding.
func (t ClipTriangle) rotate(r int) ClipTriangle {
	var out ClipTriangle
	for i := range 3 {
		out.V[i] = t.V[(i+r)%3]
		out.EdgeNew[i] = t.EdgeNew[(i+r)%3]
	}
	return out
}

// clipTriangle clips a triangle against the listed boundaries,
// appending the surviving triangles to dst. Boundaries are processed
// one at a time, with the queue fully drained and refilled before the
// next boundary: a triangle split at one boundary may need splitting
// again at another.
//
// The queue is transient per-draw-call state and must be empty between
// calls; a non-empty queue here means a previous draw call leaked work.
func clipTriangle(q *workQueue[ClipTriangle], tri ClipTriangle, bounds []int, dst []ClipTriangle) []ClipTriangle {
	if q.len() != 0 {
		panic("render: clip queue not drained")
	}
	q.push(tri)
	for _, bound := range bounds {
		n := q.len()
		for range n {
			t, _ := q.pop()
			splitAtBoundary(q, t, bound)
		}
	}
	for {
		t, ok := q.pop()
		if !ok {
			break
		}
		dst = append(dst, t)
	}
	q.reset()
	return dst
}

// splitAtBoundary clips one triangle against one boundary, pushing 0,
// 1, or 2 result triangles. Vertex order is only ever rotated, never
// permuted, so the output winding matches the input winding; getting
// this wrong would flip backface culling downstream.
func splitAtBoundary(q *workQueue[ClipTriangle], t ClipTriangle, bound int) {
	var d [3]float64
	inside := 0
	for i := range 3 {
		d[i] = boundaryDist(bound, t.V[i].Pos)
		if d[i] >= 0 {
			inside++
		}
	}

	switch inside {
	case 0:
		return
	case 3:
		q.push(t)
		return
	case 1:
		// Rotate the surviving vertex to slot 0.
		r := 0
		for d[r] < 0 {
			r++
		}
		t = t.rotate(r)
		da := boundaryDist(bound, t.V[0].Pos)
		db := boundaryDist(bound, t.V[1].Pos)
		dc := boundaryDist(bound, t.V[2].Pos)

		i1 := lerpVertex(t.V[0], t.V[1], da/(da-db))
		i2 := lerpVertex(t.V[0], t.V[2], da/(da-dc))
		q.push(ClipTriangle{
			V:       [3]ClipVertex{t.V[0], i1, i2},
			EdgeNew: [3]bool{t.EdgeNew[0], true, t.EdgeNew[2]},
		})
	case 2:
		// Rotate the outside vertex to slot 2.
		r := 0
		for d[(r+2)%3] >= 0 {
			r++
		}
		t = t.rotate(r)
		da := boundaryDist(bound, t.V[0].Pos)
		db := boundaryDist(bound, t.V[1].Pos)
		dc := boundaryDist(bound, t.V[2].Pos)

		iBC := lerpVertex(t.V[1], t.V[2], db/(db-dc))
		iCA := lerpVertex(t.V[0], t.V[2], da/(da-dc))

		// The surviving quad a, b, iBC, iCA fans from a. The diagonal
		// a-iBC is interior and stays unflagged; the segment on the
		// boundary is iBC-iCA.
		q.push(ClipTriangle{
			V:       [3]ClipVertex{t.V[0], t.V[1], iBC},
			EdgeNew: [3]bool{t.EdgeNew[0], t.EdgeNew[1], false},
		})
		q.push(ClipTriangle{
			V:       [3]ClipVertex{t.V[0], iBC, iCA},
			EdgeNew: [3]bool{false, true, t.EdgeNew[2]},
		})
	}
}
