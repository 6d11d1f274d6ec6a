package models

import (
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/scene"
)

// facesOutward checks that every face of an origin-centered solid
// winds counterclockwise seen from outside.
func facesOutward(t *testing.T, m *Mesh) {
	t.Helper()
	for i, f := range m.Faces {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		normal := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Div(3)
		if normal.Dot(centroid) <= 0 {
			t.Errorf("face %d winds inward: normal %+v at %+v", i, normal, centroid)
		}
	}
}

func TestCubeGeometry(t *testing.T) {
	m := Cube(2)

	if m.VertexCount() != 8 || m.TriangleCount() != 12 {
		t.Fatalf("got %d vertices, %d faces", m.VertexCount(), m.TriangleCount())
	}
	min, max := m.Bounds()
	if !near3(min, math3d.V3(-1, -1, -1), 1e-12) || !near3(max, math3d.V3(1, 1, 1), 1e-12) {
		t.Errorf("bounds = %+v, %+v", min, max)
	}
	facesOutward(t, m)
}

func TestPlaneFacesUp(t *testing.T) {
	m := Plane(4)

	if m.TriangleCount() != 2 {
		t.Fatalf("got %d faces", m.TriangleCount())
	}
	for i, f := range m.Faces {
		a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
		n := b.Sub(a).Cross(c.Sub(a)).Unit()
		if !near3(n.Vec3(), math3d.V3(0, 1, 0), 1e-12) {
			t.Errorf("face %d normal = %+v", i, n)
		}
	}
}

func TestTetrahedronOutward(t *testing.T) {
	m := Tetrahedron(2)

	if m.VertexCount() != 4 || m.TriangleCount() != 4 {
		t.Fatalf("got %d vertices, %d faces", m.VertexCount(), m.TriangleCount())
	}
	facesOutward(t, m)
}

func TestSphereGeometry(t *testing.T) {
	m := Sphere(2, 8, 6)

	if want := 2 + 5*8; m.VertexCount() != want {
		t.Errorf("got %d vertices, want %d", m.VertexCount(), want)
	}
	if want := 8*2 + 4*8*2; m.TriangleCount() != want {
		t.Errorf("got %d faces, want %d", m.TriangleCount(), want)
	}

	for i, p := range m.Positions {
		if !near(p.Len(), 2, 1e-12) {
			t.Fatalf("vertex %d at radius %v", i, p.Len())
		}
		if !near3(m.Normals[i].Vec3(), p.Div(2), 1e-12) {
			t.Fatalf("vertex %d normal %+v not radial", i, m.Normals[i])
		}
	}
	facesOutward(t, m)
}

func TestSphereClampsDivisions(t *testing.T) {
	m := Sphere(1, 1, 1)

	if want := 2 + 1*3; m.VertexCount() != want {
		t.Errorf("got %d vertices, want %d", m.VertexCount(), want)
	}
	if m.TriangleCount() != 6 {
		t.Errorf("got %d faces, want 6", m.TriangleCount())
	}
}

func TestGridLines(t *testing.T) {
	col := scene.RGB(0.5, 0.5, 0.5)
	els := Grid(2, 1, col, 0.1)

	if len(els) != 10 {
		t.Fatalf("got %d lines, want 10", len(els))
	}
	for _, el := range els {
		line, ok := el.(*scene.Line)
		if !ok {
			t.Fatalf("element is %T, want *scene.Line", el)
		}
		if line.Color != col || line.Thickness != 0.1 {
			t.Errorf("line color %+v thickness %v", line.Color, line.Thickness)
		}
		if line.Point1().Y != 0 || line.Point2().Y != 0 {
			t.Errorf("grid line off the XZ plane: %+v", line.Points())
		}
	}
}

func TestAxesColors(t *testing.T) {
	els := Axes(3, 0.05)

	if len(els) != 3 {
		t.Fatalf("got %d axes", len(els))
	}
	want := []struct {
		end math3d.Vec3
		col scene.Color
	}{
		{math3d.V3(3, 0, 0), scene.RGB(1, 0, 0)},
		{math3d.V3(0, 3, 0), scene.RGB(0, 1, 0)},
		{math3d.V3(0, 0, 3), scene.RGB(0, 0, 1)},
	}
	for i, w := range want {
		line := els[i].(*scene.Line)
		if line.Point1() != math3d.Zero3() {
			t.Errorf("axis %d starts at %+v", i, line.Point1())
		}
		if line.Point2() != w.end {
			t.Errorf("axis %d ends at %+v, want %+v", i, line.Point2(), w.end)
		}
		if line.Color != w.col {
			t.Errorf("axis %d color = %+v, want %+v", i, line.Color, w.col)
		}
	}
}
