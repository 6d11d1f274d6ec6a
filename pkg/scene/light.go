package scene

import (
	"math"

	"github.com/taigrr/facet/pkg/math3d"
)

// Rays starting exactly on a surface would re-hit neighbouring
// geometry at t=0; offset the acceptable hit range instead of the
// origin.
const shadowBias = 1e-7

// LightSample is the illumination a light delivers at one point.
// Direction is the direction the light travels in and is meaningful
// only when Directed is true.
type LightSample struct {
	Intensity float64
	Direction math3d.Unit
	Directed  bool
}

// Light is a single light source in a scene.
type Light interface {
	// LightAt samples the light's contribution at p.
	LightAt(p math3d.Vec3) LightSample

	// CastsShadow reports whether geometry can obstruct this light.
	CastsShadow() bool

	// Obstruction returns the fraction in [0, 1] of this light that
	// casters block on its way to p. The triangle being shaded is
	// passed as exclude and compared by identity so a facet never
	// shadows itself.
	Obstruction(p math3d.Vec3, casters []*Triangle, exclude *Triangle) float64
}

// obstructed reports whether any caster other than exclude blocks the
// ray from p in direction dir within maxDist.
func obstructed(p math3d.Vec3, dir math3d.Unit, maxDist float64, casters []*Triangle, exclude *Triangle) bool {
	for _, tri := range casters {
		if tri == exclude {
			continue
		}
		t, ok := math3d.RayTriangle(p, dir, tri.Point1(), tri.Point2(), tri.Point3())
		if ok && t > shadowBias && t < maxDist {
			return true
		}
	}
	return false
}

// AmbientLight illuminates every point equally from no particular
// direction. It can never be obstructed.
type AmbientLight struct {
	Intensity float64
}

// NewAmbientLight creates an ambient light.
func NewAmbientLight(intensity float64) *AmbientLight {
	return &AmbientLight{Intensity: intensity}
}

// LightAt returns the constant, undirected intensity.
func (l *AmbientLight) LightAt(math3d.Vec3) LightSample {
	return LightSample{Intensity: l.Intensity}
}

// CastsShadow always reports false.
func (l *AmbientLight) CastsShadow() bool { return false }

// Obstruction always returns 0.
func (l *AmbientLight) Obstruction(math3d.Vec3, []*Triangle, *Triangle) float64 { return 0 }

// DirectionalLight emits parallel rays of constant intensity, like a
// faraway sun.
type DirectionalLight struct {
	Direction math3d.Unit
	Intensity float64
	Shadow    bool
}

// NewDirectionalLight creates a directional light travelling along
// direction.
func NewDirectionalLight(direction math3d.Unit, intensity float64) *DirectionalLight {
	return &DirectionalLight{Direction: direction, Intensity: intensity}
}

// LightAt returns the same directed sample everywhere.
func (l *DirectionalLight) LightAt(math3d.Vec3) LightSample {
	return LightSample{Intensity: l.Intensity, Direction: l.Direction, Directed: true}
}

// CastsShadow reports whether shadow casting is enabled.
func (l *DirectionalLight) CastsShadow() bool { return l.Shadow }

// Obstruction tests the ray from p toward the light against casters.
func (l *DirectionalLight) Obstruction(p math3d.Vec3, casters []*Triangle, exclude *Triangle) float64 {
	if !l.Shadow {
		return 0
	}
	if obstructed(p, l.Direction.Neg(), math.Inf(1), casters, exclude) {
		return 1
	}
	return 0
}

// PointLight radiates from a position with intensity falling off as
// distance raised to AttenuationExponent. A zero exponent field means
// the inverse-square default.
type PointLight struct {
	Position            math3d.Vec3
	Intensity           float64
	AttenuationExponent float64
	Shadow              bool
}

// NewPointLight creates a point light with inverse-square falloff.
func NewPointLight(position math3d.Vec3, intensity float64) *PointLight {
	return &PointLight{Position: position, Intensity: intensity, AttenuationExponent: 2}
}

func (l *PointLight) exponent() float64 {
	if l.AttenuationExponent == 0 {
		return 2
	}
	return l.AttenuationExponent
}

// LightAt attenuates the intensity by the distance to p.
func (l *PointLight) LightAt(p math3d.Vec3) LightSample {
	delta := p.Sub(l.Position)
	return LightSample{
		Intensity: l.Intensity / math.Pow(delta.Len(), l.exponent()),
		Direction: delta.Unit(),
		Directed:  true,
	}
}

// CastsShadow reports whether shadow casting is enabled.
func (l *PointLight) CastsShadow() bool { return l.Shadow }

// Obstruction tests the segment from p to the light's position against
// casters.
func (l *PointLight) Obstruction(p math3d.Vec3, casters []*Triangle, exclude *Triangle) float64 {
	if !l.Shadow {
		return 0
	}
	toLight := l.Position.Sub(p)
	if obstructed(p, toLight.Unit(), toLight.Len(), casters, exclude) {
		return 1
	}
	return 0
}

// SpotLight is a point light restricted to a cone: full intensity
// within BeamAngle of the axis, fading linearly to zero at
// CutoffAngle. Angles are in radians.
type SpotLight struct {
	Position            math3d.Vec3
	Direction           math3d.Unit
	Intensity           float64
	BeamAngle           float64
	CutoffAngle         float64
	AttenuationExponent float64
	Shadow              bool
}

// NewSpotLight creates a spot light aimed along direction with
// inverse-square falloff.
func NewSpotLight(position math3d.Vec3, direction math3d.Unit, intensity, beamAngle, cutoffAngle float64) *SpotLight {
	return &SpotLight{
		Position:            position,
		Direction:           direction,
		Intensity:           intensity,
		BeamAngle:           beamAngle,
		CutoffAngle:         cutoffAngle,
		AttenuationExponent: 2,
	}
}

func (l *SpotLight) exponent() float64 {
	if l.AttenuationExponent == 0 {
		return 2
	}
	return l.AttenuationExponent
}

// LightAt attenuates by distance and by angular falloff between the
// beam and cutoff angles.
func (l *SpotLight) LightAt(p math3d.Vec3) LightSample {
	delta := p.Sub(l.Position)
	dir := delta.Unit()

	angle := math.Acos(clamp(l.Direction.Dot(dir), -1, 1))
	var falloff float64
	switch {
	case angle <= l.BeamAngle:
		falloff = 1
	case angle >= l.CutoffAngle:
		falloff = 0
	default:
		falloff = (l.CutoffAngle - angle) / (l.CutoffAngle - l.BeamAngle)
	}

	return LightSample{
		Intensity: l.Intensity * falloff / math.Pow(delta.Len(), l.exponent()),
		Direction: dir,
		Directed:  true,
	}
}

// CastsShadow reports whether shadow casting is enabled.
func (l *SpotLight) CastsShadow() bool { return l.Shadow }

// Obstruction tests the segment from p to the light's position against
// casters.
func (l *SpotLight) Obstruction(p math3d.Vec3, casters []*Triangle, exclude *Triangle) float64 {
	if !l.Shadow {
		return 0
	}
	toLight := l.Position.Sub(p)
	if obstructed(p, toLight.Unit(), toLight.Len(), casters, exclude) {
		return 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
