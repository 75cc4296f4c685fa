package render

import (
	"math"
	"testing"

	"github.com/termforge/charcoal/pkg/math3d"
)

func TestPlaneDistanceTo(t *testing.T) {
	// Plane at z=0, normal pointing +z.
	plane := Plane{Normal: math3d.V3(0, 0, 1), D: 0}

	tests := []struct {
		name  string
		point math3d.Vec3
		want  float64
	}{
		{"origin", math3d.V3(0, 0, 0), 0},
		{"in front", math3d.V3(0, 0, 5), 5},
		{"behind", math3d.V3(0, 0, -3), -3},
		{"offset xy", math3d.V3(10, -5, 2), 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := plane.DistanceTo(tc.point); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlaneNormalize(t *testing.T) {
	plane := Plane{Normal: math3d.V3(0, 3, 4), D: 10}
	plane.Normalize()

	if l := plane.Normal.Len(); math.Abs(l-1) > 1e-9 {
		t.Errorf("normal length = %v, want 1", l)
	}
	if math.Abs(plane.D-2) > 1e-9 {
		t.Errorf("D = %v, want 2", plane.D)
	}
}

func testFrustum() Frustum {
	proj := math3d.Perspective(math.Pi/3, 1, 0.1, 100)
	view := math3d.LookAt(math3d.V3(0, 0, 5), math3d.Zero3(), math3d.Up())
	return FrustumFromMatrix(proj.Mul(view))
}

func TestFrustumContainsPoint(t *testing.T) {
	f := testFrustum()

	tests := []struct {
		name  string
		point math3d.Vec3
		want  bool
	}{
		{"origin", math3d.V3(0, 0, 0), true},
		{"near camera", math3d.V3(0, 0, 4.5), true},
		{"behind camera", math3d.V3(0, 0, 6), false},
		{"far left", math3d.V3(-100, 0, 0), false},
		{"beyond far plane", math3d.V3(0, 0, -200), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.ContainsPoint(tc.point); got != tc.want {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, got, tc.want)
			}
		})
	}
}

func TestFrustumIntersectsAABB(t *testing.T) {
	f := testFrustum()

	tests := []struct {
		name string
		box  AABB
		want bool
	}{
		{"around origin", NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)), true},
		{"straddles left plane", NewAABB(math3d.V3(-50, -1, -1), math3d.V3(0, 1, 1)), true},
		{"fully outside right", NewAABB(math3d.V3(100, -1, -1), math3d.V3(102, 1, 1)), false},
		{"behind camera", NewAABB(math3d.V3(-1, -1, 10), math3d.V3(1, 1, 12)), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.IntersectsAABB(tc.box); got != tc.want {
				t.Errorf("IntersectsAABB(%v) = %v, want %v", tc.box, got, tc.want)
			}
		})
	}
}

func TestAABBTransform(t *testing.T) {
	box := NewAABB(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))
	moved := box.Transform(math3d.Translate(math3d.V3(10, 0, 0)))

	if moved.Min.X != 9 || moved.Max.X != 11 {
		t.Errorf("translated box = %v .. %v", moved.Min, moved.Max)
	}

	// A 45 degree rotation grows the XZ extent to sqrt(2).
	rotated := box.Transform(math3d.RotateY(math.Pi / 4))
	want := math.Sqrt2
	if math.Abs(rotated.Max.X-want) > 1e-9 || math.Abs(rotated.Min.X+want) > 1e-9 {
		t.Errorf("rotated box X extent = %v .. %v, want +-sqrt(2)", rotated.Min.X, rotated.Max.X)
	}
}

func TestAABBCenterSize(t *testing.T) {
	box := NewAABB(math3d.V3(1, 2, 3), math3d.V3(3, 6, 9))
	if c := box.Center(); c != math3d.V3(2, 4, 6) {
		t.Errorf("Center() = %v", c)
	}
	if s := box.Size(); s != math3d.V3(2, 4, 6) {
		t.Errorf("Size() = %v", s)
	}
}
