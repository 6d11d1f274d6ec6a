package math3d

import (
	"math"
	"testing"
)

func TestSegmentIntersection(t *testing.T) {
	tests := []struct {
		name           string
		a0, a1, b0, b1 Vec2
		want           Vec2
		wantOK         bool
	}{
		{"crossing", V2(-1, 0), V2(1, 0), V2(0, -1), V2(0, 1), V2(0, 0), true},
		{"diagonal", V2(0, 0), V2(2, 2), V2(0, 2), V2(2, 0), V2(1, 1), true},
		{"parallel", V2(0, 0), V2(1, 0), V2(0, 1), V2(1, 1), Vec2{}, false},
		{"disjoint", V2(0, 0), V2(1, 0), V2(2, -1), V2(2, 1), Vec2{}, false},
		{"touching endpoint", V2(0, 0), V2(1, 0), V2(1, -1), V2(1, 1), V2(1, 0), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SegmentIntersection(tc.a0, tc.a1, tc.b0, tc.b1)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got.Distance(tc.want) > tol {
				t.Errorf("intersection = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPointInTriangle(t *testing.T) {
	a, b, c := V2(0, 0), V2(4, 0), V2(0, 4)

	tests := []struct {
		name string
		p    Vec2
		want bool
	}{
		{"centroid", V2(4.0 / 3, 4.0 / 3), true},
		{"vertex", V2(0, 0), true},
		{"edge midpoint", V2(2, 0), true},
		{"outside", V2(3, 3), false},
		{"far away", V2(-10, 1), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := PointInTriangle(tc.p, a, b, c); got != tc.want {
				t.Errorf("PointInTriangle(%v) = %v, want %v", tc.p, got, tc.want)
			}
			// Winding must not matter.
			if got := PointInTriangle(tc.p, c, b, a); got != tc.want {
				t.Errorf("PointInTriangle(%v) reversed winding = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestLinePointDistance(t *testing.T) {
	a, b := V2(0, 0), V2(10, 0)

	if d := LinePointDistance(V2(5, 3), a, b); math.Abs(d-3) > tol {
		t.Errorf("distance above line = %v, want 3", d)
	}
	// The infinite line extends past the endpoints.
	if d := LinePointDistance(V2(20, 4), a, b); math.Abs(d-4) > tol {
		t.Errorf("distance past endpoint = %v, want 4", d)
	}
	if d := SegmentPointDistance(V2(13, 4), a, b); math.Abs(d-5) > tol {
		t.Errorf("segment distance past endpoint = %v, want 5", d)
	}
	if p := SegmentParameter(V2(2.5, 7), a, b); math.Abs(p-0.25) > tol {
		t.Errorf("parameter = %v, want 0.25", p)
	}
}

func TestRayPlane(t *testing.T) {
	origin := V3(0, 0, 10)
	dir := NewUnit(V3(0, 0, -1))

	tGot, ok := RayPlane(origin, dir, Zero3(), UnitZ())
	if !ok || math.Abs(tGot-10) > tol {
		t.Errorf("RayPlane = (%v, %v), want (10, true)", tGot, ok)
	}

	// Parallel ray misses.
	if _, ok := RayPlane(origin, NewUnit(V3(1, 0, 0)), Zero3(), UnitZ()); ok {
		t.Error("parallel ray should not intersect the plane")
	}

	// Plane behind the origin gives a negative parameter.
	tGot, ok = RayPlane(origin, dir, V3(0, 0, 20), UnitZ())
	if !ok || tGot >= 0 {
		t.Errorf("backward hit = (%v, %v), want negative t", tGot, ok)
	}
}

func TestRayTriangle(t *testing.T) {
	a, b, c := V3(-1, -1, 0), V3(1, -1, 0), V3(0, 1, 0)
	origin := V3(0, 0, 5)

	t.Run("hit through interior", func(t *testing.T) {
		tGot, ok := RayTriangle(origin, NewUnit(V3(0, 0, -1)), a, b, c)
		if !ok || math.Abs(tGot-5) > tol {
			t.Errorf("RayTriangle = (%v, %v), want (5, true)", tGot, ok)
		}
	})

	t.Run("miss to the side", func(t *testing.T) {
		if _, ok := RayTriangle(origin, NewUnit(V3(1, 0, -1)), a, b, c); ok {
			t.Error("ray past the triangle edge should miss")
		}
	})

	t.Run("parallel", func(t *testing.T) {
		if _, ok := RayTriangle(origin, NewUnit(V3(1, 0, 0)), a, b, c); ok {
			t.Error("ray parallel to the triangle plane should miss")
		}
	})

	t.Run("reversed winding still hits", func(t *testing.T) {
		tGot, ok := RayTriangle(origin, NewUnit(V3(0, 0, -1)), c, b, a)
		if !ok || math.Abs(tGot-5) > tol {
			t.Errorf("RayTriangle reversed = (%v, %v), want (5, true)", tGot, ok)
		}
	})
}

func TestLineLineClosest(t *testing.T) {
	t.Run("intersecting", func(t *testing.T) {
		// X axis and a diagonal through (2, 0, 0).
		s, u, ok := LineLineClosest(Zero3(), V3(1, 0, 0), V3(2, -1, 0), V3(0, 1, 0))
		if !ok {
			t.Fatal("expected intersection")
		}
		if math.Abs(s-2) > tol || math.Abs(u-1) > tol {
			t.Errorf("parameters = (%v, %v), want (2, 1)", s, u)
		}
	})

	t.Run("skew", func(t *testing.T) {
		// Lines at z=0 and z=1; closest points straddle the gap.
		s, u, ok := LineLineClosest(Zero3(), V3(1, 0, 0), V3(0, 0, 1), V3(0, 1, 0))
		if !ok {
			t.Fatal("expected closest points for skew lines")
		}
		p1 := Zero3().Add(V3(1, 0, 0).Scale(s))
		p2 := V3(0, 0, 1).Add(V3(0, 1, 0).Scale(u))
		if d := p1.Distance(p2); math.Abs(d-1) > tol {
			t.Errorf("closest distance = %v, want 1", d)
		}
	})

	t.Run("parallel", func(t *testing.T) {
		if _, _, ok := LineLineClosest(Zero3(), V3(1, 0, 0), V3(0, 1, 0), V3(1, 0, 0)); ok {
			t.Error("parallel lines should report no closest parameters")
		}
	})
}
