package models

import (
	"math"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/scene"
)

// Cube returns an axis-aligned cube centered on the origin with the
// given edge length. Faces are flat shaded and wound counterclockwise
// seen from outside.
func Cube(size float64) *Mesh {
	h := size / 2
	return &Mesh{
		Name: "cube",
		Positions: []math3d.Vec3{
			math3d.V3(-h, -h, -h),
			math3d.V3(h, -h, -h),
			math3d.V3(h, h, -h),
			math3d.V3(-h, h, -h),
			math3d.V3(-h, -h, h),
			math3d.V3(h, -h, h),
			math3d.V3(h, h, h),
			math3d.V3(-h, h, h),
		},
		Faces: [][3]int{
			{4, 5, 6}, {4, 6, 7}, // front
			{1, 0, 3}, {1, 3, 2}, // back
			{1, 2, 6}, {1, 6, 5}, // right
			{0, 4, 7}, {0, 7, 3}, // left
			{3, 7, 6}, {3, 6, 2}, // top
			{0, 1, 5}, {0, 5, 4}, // bottom
		},
	}
}

// Plane returns a square on the XZ plane centered on the origin,
// facing up.
func Plane(size float64) *Mesh {
	h := size / 2
	return &Mesh{
		Name: "plane",
		Positions: []math3d.Vec3{
			math3d.V3(-h, 0, -h),
			math3d.V3(h, 0, -h),
			math3d.V3(h, 0, h),
			math3d.V3(-h, 0, h),
		},
		Faces: [][3]int{{0, 3, 2}, {0, 2, 1}},
	}
}

// Tetrahedron returns a regular tetrahedron inscribed in a cube with
// the given edge length, centered on the origin.
func Tetrahedron(size float64) *Mesh {
	h := size / 2
	return &Mesh{
		Name: "tetrahedron",
		Positions: []math3d.Vec3{
			math3d.V3(h, h, h),
			math3d.V3(h, -h, -h),
			math3d.V3(-h, h, -h),
			math3d.V3(-h, -h, h),
		},
		Faces: [][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 1}, {1, 3, 2}},
	}
}

// Sphere returns a UV sphere with radial vertex normals, so faces
// shade smoothly. segments counts longitude slices, rings latitude
// bands.
func Sphere(radius float64, segments, rings int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}

	m := &Mesh{Name: "sphere"}
	m.Positions = append(m.Positions, math3d.V3(0, radius, 0))
	for i := 1; i < rings; i++ {
		phi := math.Pi * float64(i) / float64(rings)
		for j := 0; j < segments; j++ {
			theta := 2 * math.Pi * float64(j) / float64(segments)
			m.Positions = append(m.Positions, math3d.V3(
				radius*math.Sin(phi)*math.Cos(theta),
				radius*math.Cos(phi),
				radius*math.Sin(phi)*math.Sin(theta),
			))
		}
	}
	m.Positions = append(m.Positions, math3d.V3(0, -radius, 0))

	ring := func(i, j int) int { return 1 + (i-1)*segments + j%segments }
	last := len(m.Positions) - 1

	for j := 0; j < segments; j++ {
		m.Faces = append(m.Faces, [3]int{0, ring(1, j+1), ring(1, j)})
	}
	for i := 1; i < rings-1; i++ {
		for j := 0; j < segments; j++ {
			m.Faces = append(m.Faces,
				[3]int{ring(i, j), ring(i, j+1), ring(i+1, j+1)},
				[3]int{ring(i, j), ring(i+1, j+1), ring(i+1, j)},
			)
		}
	}
	for j := 0; j < segments; j++ {
		m.Faces = append(m.Faces, [3]int{last, ring(rings-1, j), ring(rings-1, j+1)})
	}

	m.Normals = make([]math3d.Unit, len(m.Positions))
	for i, p := range m.Positions {
		m.Normals[i] = p.Unit()
	}
	return m
}

// Grid returns reference lines on the XZ plane from -size to size at
// the given spacing.
func Grid(size, step float64, col scene.Color, thickness float64) []scene.Element {
	var els []scene.Element
	for v := -size; v <= size; v += step {
		els = append(els,
			scene.NewLine(math3d.V3(v, 0, -size), math3d.V3(v, 0, size), col, thickness),
			scene.NewLine(math3d.V3(-size, 0, v), math3d.V3(size, 0, v), col, thickness),
		)
	}
	return els
}

// Axes returns the three coordinate axes as lines from the origin: X
// red, Y green, Z blue.
func Axes(length, thickness float64) []scene.Element {
	o := math3d.Zero3()
	return []scene.Element{
		scene.NewLine(o, math3d.V3(length, 0, 0), scene.RGB(1, 0, 0), thickness),
		scene.NewLine(o, math3d.V3(0, length, 0), scene.RGB(0, 1, 0), thickness),
		scene.NewLine(o, math3d.V3(0, 0, length), scene.RGB(0, 0, 1), thickness),
	}
}
