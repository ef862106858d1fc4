// Package models imports level geometry from glTF files: meshes placed as
// static entities and convex anti-portal occluders.
package models

import (
	"github.com/taigrr/zonevis/pkg/math3d"
)

// Mesh is an indexed triangle mesh in world space.
type Mesh struct {
	Name     string
	Vertices []math3d.Vec3
	Faces    []Face
	Bounds   math3d.Box
}

// Face is a triangle wound counter-clockwise seen from outside.
type Face struct {
	V        [3]int
	Material int // -1 for none
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name, Bounds: math3d.EmptyBox()}
}

// CalculateBounds recomputes the bounding box.
func (m *Mesh) CalculateBounds() {
	m.Bounds = math3d.EmptyBox()
	for _, v := range m.Vertices {
		m.Bounds = m.Bounds.Add(v)
	}
}

// Transform moves every vertex by mat. A mirroring transform also reverses
// the winding so faces keep pointing outward.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i] = mat.MulVec3(m.Vertices[i])
	}
	if mat.IsMirrored() {
		for i := range m.Faces {
			f := &m.Faces[i]
			f.V[1], f.V[2] = f.V[2], f.V[1]
		}
	}
	m.CalculateBounds()
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Material returns the material used by most faces, or -1.
func (m *Mesh) Material() int {
	counts := make(map[int]int)
	best, most := -1, 0
	for _, f := range m.Faces {
		counts[f.Material]++
		if c := counts[f.Material]; c > most || (c == most && f.Material < best) {
			best, most = f.Material, c
		}
	}
	return best
}

// Polygons returns every face as a polygon, in the shape occluders take.
// Triangles whose corners coincide are dropped.
func (m *Mesh) Polygons() [][]math3d.Vec3 {
	out := make([][]math3d.Vec3, 0, len(m.Faces))
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f.V[0]], m.Vertices[f.V[1]], m.Vertices[f.V[2]]
		if b.Sub(a).Cross(c.Sub(a)).LenSq() < math3d.Epsilon*math3d.Epsilon {
			continue
		}
		out = append(out, []math3d.Vec3{a, b, c})
	}
	return out
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:     m.Name,
		Vertices: make([]math3d.Vec3, len(m.Vertices)),
		Faces:    make([]Face, len(m.Faces)),
		Bounds:   m.Bounds,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	return clone
}
