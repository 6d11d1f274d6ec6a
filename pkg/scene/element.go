package scene

import (
	"math"

	"github.com/taigrr/facet/pkg/math3d"
)

// Element is a drawable scene primitive: a point, line or triangle.
// All variants are pointer types; pointer identity distinguishes
// elements (self-shadow exclusion, dependency sorting).
type Element interface {
	// Tag returns the opaque identifier used for hit-testing and
	// linking; empty means untagged.
	Tag() string
	SetTag(tag string)

	// ZIndex is the explicit layering priority. It overrides camera
	// distance everywhere depth is resolved; ties fall back to depth,
	// never to insertion order.
	ZIndex() int
	SetZIndex(z int)

	// Points returns the element's positions in order: 1 for a point,
	// 2 for a line, 3 for a triangle.
	Points() []math3d.Vec3

	// SetProjection computes and caches the 2D projection of every
	// point under cam. The cache is valid until the camera or the
	// element changes; renderers refresh it at the start of each pass.
	SetProjection(cam Camera)

	// Projection returns the cached projection, nil before the first
	// SetProjection. Callers must project before reading.
	Projection() []math3d.Vec2

	// Transformed returns a new element of the same variant with
	// transformed geometry and all appearance attributes copied. The
	// receiver is not modified, and the copy starts with an empty
	// projection cache.
	Transformed(m math3d.Mat4) Element
}

// attrs carries the state shared by every element variant.
type attrs struct {
	tag    string
	zIndex int
	proj   []math3d.Vec2
}

func (a *attrs) Tag() string        { return a.tag }
func (a *attrs) SetTag(tag string)  { a.tag = tag }
func (a *attrs) ZIndex() int        { return a.zIndex }
func (a *attrs) SetZIndex(z int)    { a.zIndex = z }
func (a *attrs) Projection() []math3d.Vec2 { return a.proj }

// copyAttrs duplicates tag and zIndex but not the projection cache.
func (a *attrs) copyAttrs() attrs {
	return attrs{tag: a.tag, zIndex: a.zIndex}
}

// LineCap selects how a stroked line terminates.
type LineCap int

const (
	// CapButt ends the stroke exactly at the endpoints.
	CapButt LineCap = iota
	// CapSquare extends the stroke past each endpoint by half the
	// thickness.
	CapSquare
	// CapRound caps each endpoint with a half-disc of half the
	// thickness.
	CapRound
)

// String returns the cap name.
func (c LineCap) String() string {
	switch c {
	case CapSquare:
		return "square"
	case CapRound:
		return "round"
	default:
		return "butt"
	}
}

// Dash describes a dash pattern along a projected line: On units of
// ink, Off units of gap, shifted forward by Phase, all in 2D output
// units. A non-positive cycle (On+Off <= 0) draws solid.
type Dash struct {
	On, Off, Phase float64
}

// Solid reports whether the pattern draws an unbroken line.
func (d Dash) Solid() bool {
	return d.On+d.Off <= 0
}

// Covers reports whether the pattern inks the given distance along
// the line.
func (d Dash) Covers(dist float64) bool {
	if d.Solid() {
		return true
	}
	cycle := d.On + d.Off
	m := math.Mod(dist+d.Phase, cycle)
	if m < 0 {
		m += cycle
	}
	return m < d.On
}

// Point is a circular dot of fixed 2D diameter.
type Point struct {
	attrs
	pos math3d.Vec3

	Color    Color
	Diameter float64
}

// NewPoint creates a point element.
func NewPoint(pos math3d.Vec3, col Color, diameter float64) *Point {
	return &Point{pos: pos, Color: col, Diameter: diameter}
}

// Position returns the point's location.
func (p *Point) Position() math3d.Vec3 {
	return p.pos
}

// Points returns the single position.
func (p *Point) Points() []math3d.Vec3 {
	return []math3d.Vec3{p.pos}
}

// SetProjection caches the 2D projection under cam.
func (p *Point) SetProjection(cam Camera) {
	p.proj = []math3d.Vec2{cam.Project(p.pos)}
}

// Transformed returns a transformed copy.
func (p *Point) Transformed(m math3d.Mat4) Element {
	np := NewPoint(m.MulVec3(p.pos), p.Color, p.Diameter)
	np.attrs = p.copyAttrs()
	return np
}

// Line is a straight segment stroked with a thickness, cap style and
// dash pattern.
type Line struct {
	attrs
	p1, p2 math3d.Vec3

	Color     Color
	Thickness float64
	Cap       LineCap
	Dash      Dash
}

// NewLine creates a line element.
func NewLine(p1, p2 math3d.Vec3, col Color, thickness float64) *Line {
	return &Line{p1: p1, p2: p2, Color: col, Thickness: thickness}
}

// Point1 returns the first endpoint.
func (l *Line) Point1() math3d.Vec3 { return l.p1 }

// Point2 returns the second endpoint.
func (l *Line) Point2() math3d.Vec3 { return l.p2 }

// Points returns both endpoints in order.
func (l *Line) Points() []math3d.Vec3 {
	return []math3d.Vec3{l.p1, l.p2}
}

// SetProjection caches the 2D projection under cam.
func (l *Line) SetProjection(cam Camera) {
	l.proj = []math3d.Vec2{cam.Project(l.p1), cam.Project(l.p2)}
}

// Transformed returns a transformed copy.
func (l *Line) Transformed(m math3d.Mat4) Element {
	nl := NewLine(m.MulVec3(l.p1), m.MulVec3(l.p2), l.Color, l.Thickness)
	nl.Cap = l.Cap
	nl.Dash = l.Dash
	nl.attrs = l.copyAttrs()
	return nl
}
