package math3d

import "math"

// parallelEps bounds the squared sine of the angle below which two
// directions are treated as parallel. Callers pass normalized
// directions to the line/ray routines.
const parallelEps = 1e-18

// SegmentIntersection returns the intersection of segments a0-a1 and
// b0-b1, reporting false when the segments are parallel or the
// intersection falls outside either segment.
func SegmentIntersection(a0, a1, b0, b1 Vec2) (Vec2, bool) {
	da := a1.Sub(a0)
	db := b1.Sub(b0)
	denom := da.Cross(db)
	if math.Abs(denom) < parallelEps {
		return Vec2{}, false
	}
	r := b0.Sub(a0)
	s := r.Cross(db) / denom
	t := r.Cross(da) / denom
	if s < 0 || s > 1 || t < 0 || t > 1 {
		return Vec2{}, false
	}
	return a0.Add(da.Scale(s)), true
}

// LineIntersection returns the intersection of two infinite lines
// given as point+direction, reporting false when the lines are
// parallel.
func LineIntersection(p0, d0, p1, d1 Vec2) (Vec2, bool) {
	denom := d0.Cross(d1)
	if math.Abs(denom) < parallelEps {
		return Vec2{}, false
	}
	s := p1.Sub(p0).Cross(d1) / denom
	return p0.Add(d0.Scale(s)), true
}

// PointInTriangle reports whether p lies inside (or on the boundary
// of) the triangle a, b, c, regardless of winding.
func PointInTriangle(p, a, b, c Vec2) bool {
	d1 := b.Sub(a).Cross(p.Sub(a))
	d2 := c.Sub(b).Cross(p.Sub(b))
	d3 := a.Sub(c).Cross(p.Sub(c))

	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// SegmentParameter returns the unclamped projection parameter of p
// onto the line through a and b: 0 at a, 1 at b. Degenerate segments
// yield 0.
func SegmentParameter(p, a, b Vec2) float64 {
	d := b.Sub(a)
	l2 := d.LenSq()
	if l2 == 0 {
		return 0
	}
	return p.Sub(a).Dot(d) / l2
}

// LinePointDistance returns the perpendicular distance from p to the
// infinite line through a and b.
func LinePointDistance(p, a, b Vec2) float64 {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return p.Distance(a)
	}
	return math.Abs(d.Cross(p.Sub(a))) / l
}

// SegmentPointDistance returns the distance from p to the closest
// point of segment a-b.
func SegmentPointDistance(p, a, b Vec2) float64 {
	t := SegmentParameter(p, a, b)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Distance(a.Lerp(b, t))
}

// RayPlane intersects the ray origin+t*dir with the plane through
// planePoint with normal n, returning the parameter t. Reports false
// when the ray is parallel to the plane. t may be negative; callers
// that need a forward hit must check.
func RayPlane(origin Vec3, dir Unit, planePoint Vec3, n Unit) (float64, bool) {
	denom := n.DotVec(dir.Vec3())
	if math.Abs(denom) < parallelEps {
		return 0, false
	}
	return n.DotVec(planePoint.Sub(origin)) / denom, true
}

// RayTriangle intersects the ray origin+t*dir with triangle a, b, c,
// returning the parameter t of the hit point. Reports false when the
// ray is parallel to the triangle's plane or the hit lies outside the
// triangle.
func RayTriangle(origin Vec3, dir Unit, a, b, c Vec3) (float64, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	denom := n.Dot(dir.Vec3())
	if math.Abs(denom) < parallelEps*n.Len() {
		return 0, false
	}
	t := n.Dot(a.Sub(origin)) / denom
	p := origin.Add(dir.Scale(t))

	// Half-space tests against each edge, oriented by the face normal.
	if b.Sub(a).Cross(p.Sub(a)).Dot(n) < 0 {
		return 0, false
	}
	if c.Sub(b).Cross(p.Sub(b)).Dot(n) < 0 {
		return 0, false
	}
	if a.Sub(c).Cross(p.Sub(c)).Dot(n) < 0 {
		return 0, false
	}
	return t, true
}

// LineLineClosest returns the parameters of the mutually closest
// points of the lines p1+s*d1 and p2+t*d2. Reports false when the
// lines are parallel.
func LineLineClosest(p1, d1, p2, d2 Vec3) (s, t float64, ok bool) {
	a := d1.Dot(d1)
	b := d1.Dot(d2)
	c := d2.Dot(d2)
	denom := a*c - b*b
	if denom < parallelEps*a*c || a == 0 || c == 0 {
		return 0, 0, false
	}
	r := p1.Sub(p2)
	d := d1.Dot(r)
	e := d2.Dot(r)
	s = (b*e - c*d) / denom
	t = (a*e - b*d) / denom
	return s, t, true
}
