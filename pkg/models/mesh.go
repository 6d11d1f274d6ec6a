// Package models builds and loads triangle geometry for facet scenes:
// indexed meshes, procedural shapes, glTF import and TOML scene
// documents.
package models

import (
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/scene"
)

// Mesh is indexed triangle geometry awaiting conversion into scene
// elements. Normals are optional; when present they parallel Positions
// and faces interpolate them smoothly.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	Normals   []math3d.Unit
	Faces     [][3]int

	// Fill is the default material stack Elements applies when the
	// options carry none. Loaders populate it from the source material.
	Fill []scene.Material
}

// ElementOptions controls how mesh faces become scene triangles.
type ElementOptions struct {
	Fill           []scene.Material
	CastsShadow    bool
	ReceivesShadow bool
	Tag            string
	ZIndex         int
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int { return len(m.Faces) }

// Bounds returns the axis-aligned bounding box of all vertices.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	if len(m.Positions) == 0 {
		return math3d.Zero3(), math3d.Zero3()
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	min, max := m.Bounds()
	return min.Add(max).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	min, max := m.Bounds()
	return max.Sub(min)
}

// NormalizeSize centers the mesh on the origin and uniformly scales it
// so its largest dimension equals target. A mesh with zero extent
// produces NaN positions.
func (m *Mesh) NormalizeSize(target float64) {
	size := m.Size()
	longest := max(size.X, size.Y, size.Z)
	m.Transform(math3d.ScaleUniform(target / longest).
		Mul(math3d.Translate(m.Center().Negate())))
}

// Transform applies a matrix to every vertex and re-derives the
// normals from its rotation part.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i, p := range m.Positions {
		m.Positions[i] = mat.MulVec3(p)
	}
	for i, n := range m.Normals {
		m.Normals[i] = mat.MulVec3Dir(n.Vec3()).Unit()
	}
}

// ComputeNormals derives smooth per-vertex normals by accumulating
// unnormalized face cross products, weighting each face by its area.
func (m *Mesh) ComputeNormals() {
	acc := make([]math3d.Vec3, len(m.Positions))
	for _, f := range m.Faces {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		n := b.Sub(a).Cross(c.Sub(a))
		acc[f[0]] = acc[f[0]].Add(n)
		acc[f[1]] = acc[f[1]].Add(n)
		acc[f[2]] = acc[f[2]].Add(n)
	}
	m.Normals = make([]math3d.Unit, len(acc))
	for i, n := range acc {
		m.Normals[i] = n.Unit()
	}
}

// Clone returns a deep copy, letting one loaded mesh be instanced with
// several transforms.
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Name:      m.Name,
		Positions: make([]math3d.Vec3, len(m.Positions)),
		Faces:     make([][3]int, len(m.Faces)),
		Fill:      m.Fill,
	}
	copy(c.Positions, m.Positions)
	copy(c.Faces, m.Faces)
	if m.Normals != nil {
		c.Normals = make([]math3d.Unit, len(m.Normals))
		copy(c.Normals, m.Normals)
	}
	return c
}

// Elements converts every face into a scene triangle. Vertex normals
// are interpolated when the mesh carries them; the fill defaults to
// the mesh's own material, then to a plain gray Phong.
func (m *Mesh) Elements(o ElementOptions) []scene.Element {
	fill := o.Fill
	if fill == nil {
		fill = m.Fill
	}
	if fill == nil {
		fill = []scene.Material{scene.NewPhongMaterial(scene.RGB(0.8, 0.8, 0.8))}
	}

	smooth := len(m.Normals) == len(m.Positions) && len(m.Positions) > 0
	els := make([]scene.Element, 0, len(m.Faces))
	for _, f := range m.Faces {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		var tri *scene.Triangle
		if smooth {
			tri = scene.NewTriangleWithNormals(a, b, c,
				m.Normals[f[0]], m.Normals[f[1]], m.Normals[f[2]])
		} else {
			tri = scene.NewTriangle(a, b, c)
		}
		tri.Fill = fill
		tri.CastsShadow = o.CastsShadow
		tri.ReceivesShadow = o.ReceivesShadow
		tri.SetTag(o.Tag)
		tri.SetZIndex(o.ZIndex)
		els = append(els, tri)
	}
	return els
}
