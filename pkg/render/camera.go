package render

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/scene"
)

// ErrNoIntersection is returned by Deproject when the camera ray and
// the target geometry are parallel.
var ErrNoIntersection = errors.New("render: no intersection")

// Depth separations closer than this fraction of the depth itself are
// treated as coincident by Compare.
const compareTolerance = 1e-5

// PerspectiveCamera projects world geometry onto a focal plane ahead
// of the eye. The geometry parameters are fixed at construction;
// Orbit, Pan and Zoom are the only mutators and recompute all derived
// rotation state before returning.
type PerspectiveCamera struct {
	position  math3d.Vec3
	direction math3d.Unit
	focal     float64
	viewSize  math3d.Vec2
	scale     float64

	// OrbitOrigin is the fixed point Orbit revolves around.
	OrbitOrigin math3d.Vec3

	// Derived state. rot aligns direction with +Z; upCos/upSin are the
	// 2D rotation that pins the world up axis to screen-up.
	planeOrigin math3d.Vec3
	rot         math3d.Mat3
	invRot      math3d.Mat3
	upCos       float64
	upSin       float64

	// lastRight carries the orbit axis across pole crossings, where
	// the derived right axis reverses.
	lastRight math3d.Unit
}

// NewPerspectiveCamera creates a camera at position looking along
// direction. focal is the eye-to-plane distance, viewSize the visible
// extent of the focal plane in world units, and scale converts world
// units on the plane to 2D output units.
func NewPerspectiveCamera(position math3d.Vec3, direction math3d.Unit, focal float64, viewSize math3d.Vec2, scale float64) *PerspectiveCamera {
	c := &PerspectiveCamera{
		position:  position,
		direction: direction,
		focal:     focal,
		viewSize:  viewSize,
		scale:     scale,
	}
	c.recompute()
	c.lastRight = c.derivedRight(math3d.UnitX())
	return c
}

// recompute rebuilds every piece of derived rotation state. Mutators
// call it exactly once before returning so Project stays consistent.
func (c *PerspectiveCamera) recompute() {
	c.planeOrigin = c.position.Add(c.direction.Scale(c.focal))
	c.rot = math3d.RotationAlign(c.direction, math3d.UnitZ())
	c.invRot = c.rot.Transpose()

	up := c.rot.MulVec3(math3d.Up())
	l := math.Hypot(up.X, up.Y)
	if l < 1e-12 {
		// Looking straight along the world up axis: any screen
		// orientation is as good as another.
		c.upCos, c.upSin = 1, 0
		return
	}
	// The unique rotation taking the projected up axis onto screen-up
	// (0, -1) in drawing coordinates.
	c.upCos = -up.Y / l
	c.upSin = -up.X / l
}

// derivedRight returns the screen-right axis in world space, falling
// back when the view direction is aligned with the world up axis.
func (c *PerspectiveCamera) derivedRight(fallback math3d.Unit) math3d.Unit {
	r := c.direction.Vec3().Cross(math3d.Up())
	if r.LenSq() < 1e-24 {
		return fallback
	}
	return r.Unit()
}

// Position returns the eye position.
func (c *PerspectiveCamera) Position() math3d.Vec3 { return c.position }

// Direction returns the view direction.
func (c *PerspectiveCamera) Direction() math3d.Unit { return c.direction }

// Focal returns the eye-to-plane distance.
func (c *PerspectiveCamera) Focal() float64 { return c.focal }

// ScaleFactor returns the world-to-output unit scale.
func (c *PerspectiveCamera) ScaleFactor() float64 { return c.scale }

// ViewSize returns the viewport extent in 2D output units.
func (c *PerspectiveCamera) ViewSize() math3d.Vec2 {
	return c.viewSize.Scale(c.scale)
}

// TopLeft returns the top-left corner of the viewport in 2D output
// units. Projected coordinates are centered on the view axis, so this
// is minus half the view size.
func (c *PerspectiveCamera) TopLeft() math3d.Vec2 {
	return c.ViewSize().Scale(-0.5)
}

// Project maps a world point onto the focal plane and returns it in
// 2D output units. Points in the eye plane divide by zero and yield
// NaN or Inf coordinates, which propagate.
func (c *PerspectiveCamera) Project(p math3d.Vec3) math3d.Vec2 {
	rel := p.Sub(c.position)
	t := c.focal / rel.Dot(c.direction.Vec3())
	onPlane := rel.Scale(t).Sub(c.planeOrigin.Sub(c.position))

	v := c.rot.MulVec3(onPlane)
	return math3d.V2(
		(c.upCos*v.X-c.upSin*v.Y)*c.scale,
		(c.upSin*v.X+c.upCos*v.Y)*c.scale,
	)
}

// Deproject maps a 2D output point back to the 3D point of element
// that projects there. Lines and triangles that are parallel to the
// camera ray fail with ErrNoIntersection.
func (c *PerspectiveCamera) Deproject(q math3d.Vec2, element scene.Element) (math3d.Vec3, error) {
	dir := c.rayDirection(q)

	switch el := element.(type) {
	case *scene.Point:
		return el.Position(), nil

	case *scene.Line:
		d2 := el.Point2().Sub(el.Point1())
		_, t, ok := math3d.LineLineClosest(c.position, dir, el.Point1(), d2)
		if !ok {
			return math3d.Vec3{}, fmt.Errorf("deprojecting onto line: %w", ErrNoIntersection)
		}
		return el.Point1().Add(d2.Scale(t)), nil

	case *scene.Triangle:
		u := dir.Unit()
		t, ok := math3d.RayPlane(c.position, u, el.Point1(), el.Normal())
		if !ok {
			return math3d.Vec3{}, fmt.Errorf("deprojecting onto triangle: %w", ErrNoIntersection)
		}
		return c.position.Add(u.Scale(t)), nil

	default:
		return math3d.Vec3{}, fmt.Errorf("deprojecting onto %T: unsupported element", element)
	}
}

// rayDirection returns the unnormalized direction from the eye through
// the focal-plane point that projects to q.
func (c *PerspectiveCamera) rayDirection(q math3d.Vec2) math3d.Vec3 {
	x := q.X / c.scale
	y := q.Y / c.scale
	// Inverse of the up-stabilizing rotation, then of the alignment
	// rotation.
	planeLocal := math3d.V3(c.upCos*x+c.upSin*y, -c.upSin*x+c.upCos*y, 0)
	onPlane := c.planeOrigin.Add(c.invRot.MulVec3(planeLocal))
	return onPlane.Sub(c.position)
}

// IsCulled reports whether element can be skipped entirely: every one
// of its points is at or behind the eye plane, or, for triangles, the
// face normal points away from the eye.
func (c *PerspectiveCamera) IsCulled(element scene.Element) bool {
	behind := true
	for _, p := range element.Points() {
		if p.Sub(c.position).Dot(c.direction.Vec3()) > 0 {
			behind = false
			break
		}
	}
	if behind {
		return true
	}

	if tri, ok := element.(*scene.Triangle); ok {
		return tri.Normal().DotVec(tri.Centroid().Sub(c.position)) >= 0
	}
	return false
}

// ZDepth returns the squared distance from the eye to p. It orders
// points by distance; it is not a linear depth.
func (c *PerspectiveCamera) ZDepth(p math3d.Vec3) float64 {
	return p.Sub(c.position).LenSq()
}

// Compare reports the paint order of two projected elements: -1 when a
// must be painted before b (a is behind), +1 for the reverse, 0 when
// they do not overlap on screen or their depths are indistinguishable.
// Both elements must have projections cached for the receiver.
func (c *PerspectiveCamera) Compare(a, b scene.Element) int {
	if a == b {
		return 0
	}
	if az, bz := a.ZIndex(), b.ZIndex(); az != bz {
		if az < bz {
			return -1
		}
		return 1
	}

	best := 0.0
	sign := 0
	for _, q := range overlapSamples(a, b) {
		da, ok := c.sampleDepth(a, q)
		if !ok {
			continue
		}
		db, ok := c.sampleDepth(b, q)
		if !ok {
			continue
		}

		sep := math.Abs(da - db)
		if sep <= compareTolerance*math.Max(1, math.Max(da, db)) {
			continue
		}
		if sep > best {
			best = sep
			if da < db {
				sign = 1
			} else {
				sign = -1
			}
		}
	}
	return sign
}

// sampleDepth returns element's camera depth at the 2D point q.
func (c *PerspectiveCamera) sampleDepth(element scene.Element, q math3d.Vec2) (float64, bool) {
	if pt, ok := element.(*scene.Point); ok {
		return c.ZDepth(pt.Position()), true
	}
	p, err := c.Deproject(q, element)
	if err != nil {
		return 0, false
	}
	d := c.ZDepth(p)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

// overlapSamples collects 2D points where the cached projections of a
// and b overlap. The set is symmetric in a and b so that Compare stays
// antisymmetric.
func overlapSamples(a, b scene.Element) []math3d.Vec2 {
	pa, pb := a.Projection(), b.Projection()
	if len(pa) == 0 || len(pb) == 0 {
		return nil
	}

	out := verticesOn(pa, pb, nil)
	out = verticesOn(pb, pa, out)

	// Crossings between the outline segments of both projections.
	for _, ea := range outlineEdges(pa) {
		for _, eb := range outlineEdges(pb) {
			if p, ok := math3d.SegmentIntersection(ea[0], ea[1], eb[0], eb[1]); ok {
				out = append(out, p)
			}
		}
	}
	return out
}

const coincidentEps = 1e-9

// verticesOn appends to out the vertices of pts that lie inside or on
// the projected shape (triangle, segment or single point).
func verticesOn(shape, pts []math3d.Vec2, out []math3d.Vec2) []math3d.Vec2 {
	for _, v := range pts {
		switch len(shape) {
		case 3:
			if math3d.PointInTriangle(v, shape[0], shape[1], shape[2]) {
				out = append(out, v)
			}
		case 2:
			if math3d.SegmentPointDistance(v, shape[0], shape[1]) < coincidentEps {
				out = append(out, v)
			}
		case 1:
			if v.Distance(shape[0]) < coincidentEps {
				out = append(out, v)
			}
		}
	}
	return out
}

// outlineEdges returns the boundary segments of a projection: three
// for a triangle, one for a line, none for a point.
func outlineEdges(proj []math3d.Vec2) [][2]math3d.Vec2 {
	switch len(proj) {
	case 3:
		return [][2]math3d.Vec2{
			{proj[0], proj[1]},
			{proj[1], proj[2]},
			{proj[2], proj[0]},
		}
	case 2:
		return [][2]math3d.Vec2{{proj[0], proj[1]}}
	default:
		return nil
	}
}

// Orbit revolves the camera around OrbitOrigin: theta radians around
// the world up axis, then phi radians around the camera's right axis.
// When the camera has crossed a pole the derived right axis reverses;
// the axis actually used keeps its previous sense and theta is negated
// so drag gestures keep their visual direction.
func (c *PerspectiveCamera) Orbit(theta, phi float64) {
	right := c.derivedRight(c.lastRight)
	if right.Dot(c.lastRight) < 0 {
		right = right.Neg()
		theta = -theta
	}

	yaw := math3d.Rotation3(math3d.UnitY(), theta)
	pitch := math3d.Rotation3(yaw.MulUnit(right), phi)
	m := pitch.Mul(yaw)

	c.position = c.OrbitOrigin.Add(m.MulVec3(c.position.Sub(c.OrbitOrigin)))
	c.direction = m.MulUnit(c.direction)
	c.lastRight = yaw.MulUnit(right)
	c.recompute()
}

// Pan translates the camera and OrbitOrigin within the view plane by
// dx along screen-right and dy along screen-up, both in 2D output
// units.
func (c *PerspectiveCamera) Pan(dx, dy float64) {
	right := c.invRot.MulVec3(math3d.V3(c.upCos, -c.upSin, 0))
	up := c.invRot.MulVec3(math3d.V3(-c.upSin, -c.upCos, 0))

	shift := right.Scale(dx / c.scale).Add(up.Scale(dy / c.scale))
	c.position = c.position.Add(shift)
	c.OrbitOrigin = c.OrbitOrigin.Add(shift)
	c.recompute()
}

// Zoom moves the camera along its view direction; positive amounts
// move closer to the scene.
func (c *PerspectiveCamera) Zoom(amount float64) {
	c.position = c.position.Add(c.direction.Scale(amount))
	c.recompute()
}

// BlurrableCamera is a camera that renders as several single cameras
// whose results are averaged, used by the raycasting renderer for
// depth-of-field blur.
type BlurrableCamera interface {
	scene.Camera
	Cameras() []scene.Camera
}

// DepthOfFieldCamera is a PerspectiveCamera with a finite aperture.
// Geometry at FocusDistance along the view direction stays sharp;
// everything else blurs with distance from the focus plane.
type DepthOfFieldCamera struct {
	*PerspectiveCamera
	FocusDistance  float64
	ApertureRadius float64
	Samples        int
}

// NewDepthOfFieldCamera wraps base with an aperture of the given
// radius focused at focusDistance, rendered with samples off-center
// eyes.
func NewDepthOfFieldCamera(base *PerspectiveCamera, focusDistance, apertureRadius float64, samples int) *DepthOfFieldCamera {
	return &DepthOfFieldCamera{
		PerspectiveCamera: base,
		FocusDistance:     focusDistance,
		ApertureRadius:    apertureRadius,
		Samples:           samples,
	}
}

// Cameras returns the central camera plus Samples cameras whose eyes
// sit on the aperture circle, each re-aimed at the focus point.
func (c *DepthOfFieldCamera) Cameras() []scene.Camera {
	out := make([]scene.Camera, 0, c.Samples+1)
	out = append(out, c.PerspectiveCamera)

	focus := c.position.Add(c.direction.Scale(c.FocusDistance))
	u := c.derivedRight(math3d.UnitX())
	v := c.direction.Cross(u).Unit()

	for i := range c.Samples {
		angle := 2 * math.Pi * float64(i) / float64(c.Samples)
		offset := u.Scale(math.Cos(angle) * c.ApertureRadius).
			Add(v.Scale(math.Sin(angle) * c.ApertureRadius))
		eye := c.position.Add(offset)
		out = append(out, NewPerspectiveCamera(eye, focus.Sub(eye).Unit(), c.focal, c.viewSize, c.scale))
	}
	return out
}
