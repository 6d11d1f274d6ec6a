package scene

import (
	"math"

	"github.com/taigrr/facet/pkg/math3d"
)

// Material computes the colour of a triangle fill at a surface point.
// A triangle carries an ordered list of materials whose colours are
// composited front to back.
type Material interface {
	// GetColor shades the surface point p with shading normal n as
	// seen from cam. obstructions holds one attenuation value in
	// [0, 1] per entry of lights; nil means nothing is obstructed.
	GetColor(p math3d.Vec3, n math3d.Unit, cam Camera, lights []Light, obstructions []float64) Color
}

// ColorMaterial fills with a constant colour, ignoring lighting.
type ColorMaterial struct {
	Color Color
}

// NewColorMaterial creates a flat-colour material.
func NewColorMaterial(c Color) *ColorMaterial {
	return &ColorMaterial{Color: c}
}

// GetColor returns the constant colour.
func (m *ColorMaterial) GetColor(_ math3d.Vec3, _ math3d.Unit, _ Camera, _ []Light, _ []float64) Color {
	return m.Color
}

// PhongMaterial shades with the Phong reflection model: ambient and
// diffuse terms modulate the base colour, the specular term adds a
// white highlight. Obstructed lights lose their diffuse and specular
// contribution but never the ambient one.
type PhongMaterial struct {
	Color Color

	AmbientReflection  float64
	DiffuseReflection  float64
	SpecularReflection float64
	SpecularShininess  float64
}

// NewPhongMaterial creates a Phong material with the default
// reflection coefficients.
func NewPhongMaterial(c Color) *PhongMaterial {
	return &PhongMaterial{
		Color:              c,
		AmbientReflection:  1,
		DiffuseReflection:  1,
		SpecularReflection: 0.2,
		SpecularShininess:  16,
	}
}

// GetColor evaluates the reflection model at p.
func (m *PhongMaterial) GetColor(p math3d.Vec3, n math3d.Unit, cam Camera, lights []Light, obstructions []float64) Color {
	var ambient, diffuse, specular float64

	view := cam.Position().Sub(p).Normalize()

	for i, light := range lights {
		sample := light.LightAt(p)
		if sample.Intensity <= 0 {
			continue
		}

		if !sample.Directed {
			ambient += sample.Intensity
			continue
		}

		transmitted := sample.Intensity
		if obstructions != nil {
			transmitted *= 1 - obstructions[i]
		}
		if transmitted <= 0 {
			continue
		}

		// Surfaces are two-sided, so the facing of the shading
		// normal does not matter.
		lambert := math.Abs(sample.Direction.DotVec(n.Vec3()))
		diffuse += transmitted * lambert

		if m.SpecularReflection > 0 {
			reflected := sample.Direction.Vec3().Reflect(n.Vec3())
			if s := reflected.Dot(view); s > 0 {
				specular += transmitted * math.Pow(s, m.SpecularShininess)
			}
		}
	}

	shade := m.AmbientReflection*ambient + m.DiffuseReflection*diffuse
	highlight := m.SpecularReflection * specular
	return Color{
		m.Color.R*shade + highlight,
		m.Color.G*shade + highlight,
		m.Color.B*shade + highlight,
		m.Color.A,
	}
}

// CheckerMaterial alternates two materials on a world-space cubic
// lattice, exercising position-dependent shading.
type CheckerMaterial struct {
	A, B Material
	Size float64
}

// NewCheckerMaterial creates a checker pattern with the given cell
// size.
func NewCheckerMaterial(a, b Material, size float64) *CheckerMaterial {
	return &CheckerMaterial{A: a, B: b, Size: size}
}

// GetColor delegates to A or B depending on the lattice cell parity
// at p.
func (m *CheckerMaterial) GetColor(p math3d.Vec3, n math3d.Unit, cam Camera, lights []Light, obstructions []float64) Color {
	size := m.Size
	if size <= 0 {
		size = 1
	}
	parity := int(math.Floor(p.X/size)) + int(math.Floor(p.Y/size)) + int(math.Floor(p.Z/size))
	if parity&1 == 0 {
		return m.A.GetColor(p, n, cam, lights, obstructions)
	}
	return m.B.GetColor(p, n, cam, lights, obstructions)
}
