// Package models provides triangle mesh loading and construction for
// charcoal.
package models

import (
	"github.com/termforge/charcoal/pkg/math3d"
)

// Mesh is an indexed triangle mesh. Faces wind counter-clockwise when
// viewed from outside.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    [][3]int

	// Bounding box, refreshed by CalculateBounds.
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds per-vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds recomputes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}
	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// CalculateNormals assigns each face's plane normal to its vertices.
// Vertices shared between faces keep the last face's normal, giving
// flat shading.
func (m *Mesh) CalculateNormals() {
	for _, f := range m.Faces {
		v0 := m.Vertices[f[0]].Position
		v1 := m.Vertices[f[1]].Position
		v2 := m.Vertices[f[2]].Position
		n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
		m.Vertices[f[0]].Normal = n
		m.Vertices[f[1]].Normal = n
		m.Vertices[f[2]].Normal = n
	}
}

// CalculateSmoothNormals averages area-weighted face normals per
// vertex for smooth shading.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}
	for _, f := range m.Faces {
		v0 := m.Vertices[f[0]].Position
		v1 := m.Vertices[f[1]].Position
		v2 := m.Vertices[f[2]].Position
		// Unnormalized cross product weights by face area.
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		m.Vertices[f[0]].Normal = m.Vertices[f[0]].Normal.Add(n)
		m.Vertices[f[1]].Normal = m.Vertices[f[1]].Normal.Add(n)
		m.Vertices[f[2]].Normal = m.Vertices[f[2]].Normal.Add(n)
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies a matrix to all vertices and refreshes bounds.
// Normals use the rotation part only, so non-uniform scales skew them.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = mat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// VertexCount reports the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Vertex returns position and normal for vertex i.
// Implements render.MeshSource.
func (m *Mesh) Vertex(i int) (position, normal math3d.Vec3) {
	v := m.Vertices[i]
	return v.Position, v.Normal
}

// FaceCount reports the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// Face returns the vertex indices for face i.
// Implements render.MeshSource.
func (m *Mesh) Face(i int) [3]int {
	return m.Faces[i]
}

// Bounds returns the axis-aligned bounding box.
// Implements render.BoundedMesh.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// Cube builds an axis-aligned cube of the given edge length centered
// at the origin, with flat per-face normals.
func Cube(size float64) *Mesh {
	h := size / 2
	m := NewMesh("cube")

	// One quad per face, vertices duplicated so normals stay flat.
	quads := []struct {
		corners [4]math3d.Vec3
		normal  math3d.Vec3
	}{
		{[4]math3d.Vec3{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}}, math3d.V3(0, 0, 1)},
		{[4]math3d.Vec3{{X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}}, math3d.V3(0, 0, -1)},
		{[4]math3d.Vec3{{X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}}, math3d.V3(1, 0, 0)},
		{[4]math3d.Vec3{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}, math3d.V3(-1, 0, 0)},
		{[4]math3d.Vec3{{X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}}, math3d.V3(0, 1, 0)},
		{[4]math3d.Vec3{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}, math3d.V3(0, -1, 0)},
	}

	for _, q := range quads {
		base := len(m.Vertices)
		for _, c := range q.corners {
			m.Vertices = append(m.Vertices, MeshVertex{Position: c, Normal: q.normal})
		}
		m.Faces = append(m.Faces,
			[3]int{base, base + 1, base + 2},
			[3]int{base, base + 2, base + 3},
		)
	}

	m.CalculateBounds()
	return m
}
