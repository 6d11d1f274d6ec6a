package scene

import "github.com/taigrr/facet/pkg/math3d"

// Triangle is a filled facet. Geometry is fixed at construction;
// transformations produce new instances, so the precomputed
// barycentric helper always agrees with the vertices. Appearance
// (fill materials, shadow flags) stays freely mutable.
type Triangle struct {
	attrs
	p1, p2, p3 math3d.Vec3
	n1, n2, n3 math3d.Unit
	normal     math3d.Unit
	flat       bool
	centroid   math3d.Vec3

	// Barycentric helper: edge vectors from p1 and their dot terms.
	e0, e1        math3d.Vec3
	d00, d01, d11 float64
	invDenom      float64

	// Fill materials, applied in order and composited front to back.
	Fill []Material

	CastsShadow    bool
	ReceivesShadow bool
}

// NewTriangle creates a flat-shaded triangle; every vertex normal is
// the face normal derived from the winding of a, b, c.
func NewTriangle(a, b, c math3d.Vec3) *Triangle {
	t := newTriangle(a, b, c)
	t.n1, t.n2, t.n3 = t.normal, t.normal, t.normal
	t.flat = true
	return t
}

// NewTriangleWithNormals creates a smooth-shaded triangle with
// explicit per-vertex shading normals. The face normal used for
// culling, deprojection and shadow geometry still comes from the
// winding.
func NewTriangleWithNormals(a, b, c math3d.Vec3, na, nb, nc math3d.Unit) *Triangle {
	t := newTriangle(a, b, c)
	t.n1, t.n2, t.n3 = na, nb, nc
	return t
}

func newTriangle(a, b, c math3d.Vec3) *Triangle {
	t := &Triangle{
		p1: a, p2: b, p3: c,
		normal:   b.Sub(a).Cross(c.Sub(a)).Unit(),
		centroid: a.Add(b).Add(c).Div(3),
		e0:       b.Sub(a),
		e1:       c.Sub(a),
	}
	t.d00 = t.e0.Dot(t.e0)
	t.d01 = t.e0.Dot(t.e1)
	t.d11 = t.e1.Dot(t.e1)
	t.invDenom = 1 / (t.d00*t.d11 - t.d01*t.d01)
	return t
}

// Point1 returns the first vertex.
func (t *Triangle) Point1() math3d.Vec3 { return t.p1 }

// Point2 returns the second vertex.
func (t *Triangle) Point2() math3d.Vec3 { return t.p2 }

// Point3 returns the third vertex.
func (t *Triangle) Point3() math3d.Vec3 { return t.p3 }

// Normal returns the geometric face normal.
func (t *Triangle) Normal() math3d.Unit { return t.normal }

// VertexNormals returns the three shading normals.
func (t *Triangle) VertexNormals() (math3d.Unit, math3d.Unit, math3d.Unit) {
	return t.n1, t.n2, t.n3
}

// Flat reports whether the shading normals are the face normal.
func (t *Triangle) Flat() bool { return t.flat }

// Centroid returns the vertex average.
func (t *Triangle) Centroid() math3d.Vec3 { return t.centroid }

// Barycentric returns the weights of p with respect to the three
// vertices (summing to 1 for points on the support plane). O(1) via
// the precomputed edge terms.
func (t *Triangle) Barycentric(p math3d.Vec3) (w1, w2, w3 float64) {
	v2 := p.Sub(t.p1)
	d20 := v2.Dot(t.e0)
	d21 := v2.Dot(t.e1)
	w2 = (t.d11*d20 - t.d01*d21) * t.invDenom
	w3 = (t.d00*d21 - t.d01*d20) * t.invDenom
	w1 = 1 - w2 - w3
	return w1, w2, w3
}

// NormalAt returns the shading normal at p, interpolating the vertex
// normals barycentrically. Flat triangles return the face normal
// without interpolation.
func (t *Triangle) NormalAt(p math3d.Vec3) math3d.Unit {
	if t.flat {
		return t.normal
	}
	w1, w2, w3 := t.Barycentric(p)
	n := t.n1.Scale(w1).Add(t.n2.Scale(w2)).Add(t.n3.Scale(w3))
	return n.Unit()
}

// Points returns the three vertices in order.
func (t *Triangle) Points() []math3d.Vec3 {
	return []math3d.Vec3{t.p1, t.p2, t.p3}
}

// SetProjection caches the 2D projection under cam.
func (t *Triangle) SetProjection(cam Camera) {
	t.proj = []math3d.Vec2{cam.Project(t.p1), cam.Project(t.p2), cam.Project(t.p3)}
}

// Transformed returns a transformed copy. Smooth shading normals are
// re-derived by transforming each vertex's normal reference offset;
// flat triangles pick up the new face normal.
func (t *Triangle) Transformed(m math3d.Mat4) Element {
	a, b, c := m.MulVec3(t.p1), m.MulVec3(t.p2), m.MulVec3(t.p3)

	var nt *Triangle
	if t.flat {
		nt = NewTriangle(a, b, c)
	} else {
		na := transformNormal(m, t.p1, t.n1)
		nb := transformNormal(m, t.p2, t.n2)
		nc := transformNormal(m, t.p3, t.n3)
		nt = NewTriangleWithNormals(a, b, c, na, nb, nc)
	}

	nt.Fill = append([]Material(nil), t.Fill...)
	nt.CastsShadow = t.CastsShadow
	nt.ReceivesShadow = t.ReceivesShadow
	nt.attrs = t.copyAttrs()
	return nt
}

// transformNormal maps a shading normal through m by transforming the
// vertex and a unit offset along the normal, then renormalizing the
// difference.
func transformNormal(m math3d.Mat4, p math3d.Vec3, n math3d.Unit) math3d.Unit {
	return m.MulVec3(p.Add(n.Vec3())).Sub(m.MulVec3(p)).Unit()
}
