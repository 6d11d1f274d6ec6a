package scene

import "github.com/taigrr/facet/pkg/math3d"

// Camera maps world geometry onto a 2D view plane and orders elements
// by visibility. Implementations live in the render package; the
// interface is declared here so materials and lights can see the view
// state without an import cycle.
type Camera interface {
	// Position returns the eye point.
	Position() math3d.Vec3

	// Direction returns the view direction.
	Direction() math3d.Unit

	// TopLeft returns the top-left corner of the viewport in 2D
	// output units.
	TopLeft() math3d.Vec2

	// ViewSize returns the viewport size in 2D output units.
	ViewSize() math3d.Vec2

	// ScaleFactor returns the world-unit to 2D-output-unit scale.
	ScaleFactor() float64

	// Project maps a world point onto the view plane. Points at
	// grazing angles may project to NaN/Inf coordinates; callers
	// tolerate these rather than trapping them.
	Project(p math3d.Vec3) math3d.Vec2

	// Deproject maps a 2D view-plane point back onto the target
	// element's supporting geometry: the support plane for a
	// triangle, the support line for a line, the position itself for
	// a point. Fails when the deprojection ray is parallel to the
	// target.
	Deproject(p math3d.Vec2, target Element) (math3d.Vec3, error)

	// IsCulled reports whether the element cannot contribute to the
	// output: every point behind the eye plane, or a back-facing
	// triangle.
	IsCulled(e Element) bool

	// ZDepth returns the squared eye distance of p, used for relative
	// ordering only.
	ZDepth(p math3d.Vec3) float64

	// Compare orders two projected elements for painting: -1 paints a
	// before b (a behind), +1 paints b before a, 0 leaves the pair
	// unordered. Both elements must have current projections.
	Compare(a, b Element) int
}
