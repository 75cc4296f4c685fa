package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/termforge/charcoal/pkg/math3d"
)

// LoadGLB loads a glTF or binary glTF (.glb) file, merging all
// triangle primitives into one mesh. Normals are taken from the file
// when present, otherwise computed by smooth averaging.
func LoadGLB(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(filepath.Base(path))
	hasNormals := true

	for _, gm := range doc.Meshes {
		for _, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}

			positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: read positions: %w", gm.Name, err)
			}

			var normals [][3]float32
			if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
				normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: read normals: %w", gm.Name, err)
				}
			} else {
				hasNormals = false
			}

			base := len(mesh.Vertices)
			for i, p := range positions {
				v := MeshVertex{Position: math3d.V3(float64(p[0]), float64(p[1]), float64(p[2]))}
				if i < len(normals) {
					v.Normal = math3d.V3(float64(normals[i][0]), float64(normals[i][1]), float64(normals[i][2]))
				}
				mesh.Vertices = append(mesh.Vertices, v)
			}

			if prim.Indices != nil {
				indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: read indices: %w", gm.Name, err)
				}
				for i := 0; i+2 < len(indices); i += 3 {
					mesh.Faces = append(mesh.Faces, [3]int{
						base + int(indices[i]),
						base + int(indices[i+1]),
						base + int(indices[i+2]),
					})
				}
			} else {
				for i := 0; i+2 < len(positions); i += 3 {
					mesh.Faces = append(mesh.Faces, [3]int{base + i, base + i + 1, base + i + 2})
				}
			}
		}
	}

	if len(mesh.Vertices) == 0 {
		return nil, fmt.Errorf("gltf %s: no triangle geometry", path)
	}

	if !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}
