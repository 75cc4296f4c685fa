package models

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/termforge/charcoal/pkg/math3d"
)

// LoadOBJ loads a Wavefront .obj file. Supported statements are v, vn,
// and f with the v, v//vn, and v/vt/vn index forms; polygons are
// fan-triangulated and negative indices resolve from the end of the
// list. Texture coordinates and material statements are ignored.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	mesh, err := ReadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("read obj %s: %w", path, err)
	}
	mesh.Name = filepath.Base(path)
	return mesh, nil
}

// ReadOBJ parses OBJ data from a reader.
func ReadOBJ(r io.Reader) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		normals   []math3d.Vec3
	)
	mesh := NewMesh("obj")

	// Positions referencing into mesh.Vertices, keyed by "pos/norm"
	// index pair so shared corners are emitted once.
	seen := make(map[[2]int]int)

	addVertex := func(pi, ni int) (int, error) {
		pi, err := resolveIndex(pi, len(positions))
		if err != nil {
			return 0, err
		}
		if ni != 0 {
			if ni, err = resolveIndex(ni, len(normals)); err != nil {
				return 0, err
			}
		} else {
			ni = -1
		}
		key := [2]int{pi, ni}
		if idx, ok := seen[key]; ok {
			return idx, nil
		}
		v := MeshVertex{Position: positions[pi]}
		if ni >= 0 {
			v.Normal = normals[ni]
		}
		mesh.Vertices = append(mesh.Vertices, v)
		seen[key] = len(mesh.Vertices) - 1
		return seen[key], nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNo, err)
			}
			positions = append(positions, p)
		case "vn":
			n, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", lineNo, err)
			}
			normals = append(normals, n)
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face with %d vertices", lineNo, len(fields)-1)
			}
			corners := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				pi, ni, err := parseFaceRef(ref)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx, err := addVertex(pi, ni)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Faces = append(mesh.Faces, [3]int{corners[0], corners[i], corners[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(normals) == 0 {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	if len(fields) < 3 {
		return math3d.Vec3{}, fmt.Errorf("want 3 components, got %d", len(fields))
	}
	var c [3]float64
	for i := range 3 {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math3d.Vec3{}, err
		}
		c[i] = v
	}
	return math3d.V3(c[0], c[1], c[2]), nil
}

// parseFaceRef parses one face corner reference: "v", "v//vn", or
// "v/vt/vn". The normal index is 0 when absent; texture indices are
// discarded.
func parseFaceRef(ref string) (pos, norm int, err error) {
	parts := strings.Split(ref, "/")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("malformed face reference %q", ref)
	}
	if pos, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("malformed face reference %q", ref)
	}
	if len(parts) == 3 && parts[2] != "" {
		if norm, err = strconv.Atoi(parts[2]); err != nil {
			return 0, 0, fmt.Errorf("malformed face reference %q", ref)
		}
	}
	return pos, norm, nil
}

// resolveIndex converts a 1-based OBJ index (negative counts from the
// end) to a 0-based slice index.
func resolveIndex(i, n int) (int, error) {
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, fmt.Errorf("index %d out of range (have %d)", i, n)
}
