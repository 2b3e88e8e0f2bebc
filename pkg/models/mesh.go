// Package models provides triangle mesh loading and representation for bricklayer.
package models

import (
	"fmt"

	"github.com/taigrr/bricklayer/pkg/math3d"
)

// Mesh is an indexed triangle mesh.
//
// BoundsMin, BoundsMax and Centroid are derived. AddVertex and AddTriangle
// grow the bounds as they go; methods that move vertices recompute all three.
// Code that edits Vertices directly must call Refresh before handing the mesh
// to the voxelizer.
type Mesh struct {
	Name     string
	Vertices []math3d.Vec3
	Faces    []Face

	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
	Centroid  math3d.Vec3
}

// Face is a triangle referencing three entries of Mesh.Vertices.
type Face struct {
	V [3]int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]math3d.Vec3, 0),
		Faces:    make([]Face, 0),
	}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p math3d.Vec3) int {
	m.Vertices = append(m.Vertices, p)
	m.extendBounds(p)
	return len(m.Vertices) - 1
}

// AddFace appends a triangle over existing vertex indices.
func (m *Mesh) AddFace(a, b, c int) {
	m.Faces = append(m.Faces, Face{V: [3]int{a, b, c}})
}

// AddTriangle appends a triangle with three new vertices.
func (m *Mesh) AddTriangle(a, b, c math3d.Vec3) {
	m.AddFace(m.AddVertex(a), m.AddVertex(b), m.AddVertex(c))
}

// extendBounds grows the bounds to cover p, the vertex just appended.
func (m *Mesh) extendBounds(p math3d.Vec3) {
	if len(m.Vertices) == 1 {
		m.BoundsMin, m.BoundsMax = p, p
		return
	}
	m.BoundsMin = m.BoundsMin.Min(p)
	m.BoundsMax = m.BoundsMax.Max(p)
}

// Validate checks that every face index refers to an existing vertex.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, v := range f.V {
			if v < 0 || v >= n {
				return fmt.Errorf("face %d: vertex index %d out of range [0,%d)", i, v, n)
			}
		}
	}
	return nil
}

// Refresh recomputes the bounding box and centroid.
func (m *Mesh) Refresh() {
	m.calculateBounds()
	m.calculateCentroid()
}

func (m *Mesh) calculateBounds() {
	if len(m.Vertices) == 0 {
		m.BoundsMin, m.BoundsMax = math3d.Vec3{}, math3d.Vec3{}
		return
	}

	m.BoundsMin = m.Vertices[0]
	m.BoundsMax = m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v)
		m.BoundsMax = m.BoundsMax.Max(v)
	}
}

// calculateCentroid uses the area-weighted mean of triangle centroids,
// falling back to the bounds centre for meshes with no area.
func (m *Mesh) calculateCentroid() {
	var (
		sum  math3d.Vec3
		area float64
	)
	for i := range m.Faces {
		a, b, c := m.Triangle(i)
		w := b.Sub(a).Cross(c.Sub(a)).Len() / 2
		sum = sum.Add(a.Add(b).Add(c).Scale(w / 3))
		area += w
	}
	if area == 0 {
		m.Centroid = m.Center()
		return
	}
	m.Centroid = sum.Scale(1 / area)
}

// Bounds returns the bounding box.
func (m *Mesh) Bounds() math3d.AABB {
	return math3d.AABB{Min: m.BoundsMin, Max: m.BoundsMax}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Triangle returns the corner positions of face i.
func (m *Mesh) Triangle(i int) (a, b, c math3d.Vec3) {
	f := m.Faces[i].V
	return m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
}

// SurfaceArea returns the total triangle area.
func (m *Mesh) SurfaceArea() float64 {
	var area float64
	for i := range m.Faces {
		a, b, c := m.Triangle(i)
		area += b.Sub(a).Cross(c.Sub(a)).Len() / 2
	}
	return area
}

// Volume returns the signed enclosed volume (divergence theorem). It is
// positive for closed meshes with counter-clockwise outward winding.
func (m *Mesh) Volume() float64 {
	var vol float64
	for i := range m.Faces {
		a, b, c := m.Triangle(i)
		vol += a.Dot(b.Cross(c)) / 6
	}
	return vol
}

// Transform applies a transformation matrix to all vertices.
// Mirroring transforms also flip the winding so Volume keeps its sign.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i] = mat.MulVec3(m.Vertices[i])
	}
	if mat.Determinant3() < 0 {
		for i := range m.Faces {
			f := &m.Faces[i]
			f.V[1], f.V[2] = f.V[2], f.V[1]
		}
	}
	m.Refresh()
}

// Merge appends the geometry of others, rebasing their face indices.
// Multi-part scenes are flattened this way before voxelization.
func (m *Mesh) Merge(others ...*Mesh) {
	for _, o := range others {
		if o == nil {
			continue
		}
		base := len(m.Vertices)
		m.Vertices = append(m.Vertices, o.Vertices...)
		for _, f := range o.Faces {
			m.AddFace(base+f.V[0], base+f.V[1], base+f.V[2])
		}
	}
	m.Refresh()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]math3d.Vec3, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
		Centroid:  m.Centroid,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	return clone
}
