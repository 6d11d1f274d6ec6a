package render

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/scene"
)

// ResamplingTime selects whether resampling runs before or after the
// depth sort. Subdividing first lets every facet be ordered
// individually; subdividing after keeps the sort cheap and orders each
// element's facets only among themselves.
type ResamplingTime int

const (
	ResampleAfterSorting ResamplingTime = iota
	ResampleBeforeSorting
)

// Facets produced by resampling stop subdividing at this depth even
// when still larger than the configured maximum.
const maxResampleDepth = 10

// VectorRenderer paints the scene back-to-front into a Canvas as
// vector primitives. Ordering comes from the camera's pairwise Compare
// relation; triangles receive one flat colour each, shaded at the
// centroid.
type VectorRenderer struct {
	mu sync.Mutex

	// ResamplingMaxSize subdivides triangles whose projected area, or
	// lines whose squared projected length, exceeds it. Zero or
	// negative disables resampling.
	ResamplingMaxSize float64

	// ResamplingTime places resampling before or after the sort.
	ResamplingTime ResamplingTime

	// OverFill expands every triangle's edges outward by this many 2D
	// units to mask hairline seams between adjacent facets.
	OverFill float64
}

// NewVectorRenderer creates a renderer with resampling disabled.
func NewVectorRenderer() *VectorRenderer {
	return &VectorRenderer{}
}

// Render paints the scene into canvas. The scene lock is held for the
// whole pass.
func (r *VectorRenderer) Render(s *scene.Scene, lights []scene.Light, cam scene.Camera, canvas Canvas) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Lock()
	defer s.Unlock()

	start := time.Now()

	els := s.Elements()[:0:0]
	for _, e := range s.Elements() {
		if cam.IsCulled(e) {
			continue
		}
		e.SetProjection(cam)
		els = append(els, e)
	}

	if r.ResamplingMaxSize > 0 && r.ResamplingTime == ResampleBeforeSorting {
		resampled := els[:0:0]
		for _, e := range els {
			resampled = r.resample(resampled, e, cam, 0)
		}
		els = resampled
	}

	order := paintOrder(els, cam)

	casters := shadowCasters(s, lights)
	obs := make([]float64, len(lights))
	for _, e := range order {
		if r.ResamplingMaxSize > 0 && r.ResamplingTime == ResampleAfterSorting {
			facets := r.resample(nil, e, cam, 0)
			sortByDepth(facets, cam)
			for _, f := range facets {
				r.emit(f, cam, lights, casters, obs, canvas)
			}
			continue
		}
		r.emit(e, cam, lights, casters, obs, canvas)
	}

	Logger().Debug("vector pass done",
		"elements", len(els),
		"duration", time.Since(start))
}

// paintOrder sorts elements back-to-front using the camera's pairwise
// Compare relation. The dependency graph may contain cycles from
// mutually overlapping geometry; a cycle is resolved by painting the
// element wherever the visit first closed it, which approximates the
// ordering instead of failing.
func paintOrder(els []scene.Element, cam scene.Camera) []scene.Element {
	n := len(els)
	pred := make([][]int, n)

	// Each worker fills only its own row, so no locking.
	parallelFor(n, func(i int) {
		for j := range n {
			if j == i {
				continue
			}
			if cam.Compare(els[i], els[j]) > 0 {
				pred[i] = append(pred[i], j)
			}
		}
	})

	const (
		white = iota
		gray
		black
	)
	state := make([]uint8, n)
	order := make([]scene.Element, 0, n)

	var visit func(i, from int)
	visit = func(i, from int) {
		switch state[i] {
		case gray:
			if from >= 0 {
				Logger().Warn("paint order cycle resolved heuristically",
					"element", els[i].Tag(),
					"dependent", els[from].Tag())
			}
			return
		case black:
			return
		}
		state[i] = gray
		for _, j := range pred[i] {
			visit(j, i)
		}
		state[i] = black
		order = append(order, els[i])
	}
	for i := range n {
		visit(i, -1)
	}
	return order
}

// sortByDepth orders facets farthest first by their camera depth.
func sortByDepth(els []scene.Element, cam scene.Camera) {
	depth := func(e scene.Element) float64 {
		switch el := e.(type) {
		case *scene.Triangle:
			return cam.ZDepth(el.Centroid())
		case *scene.Line:
			return cam.ZDepth(el.Point1().Lerp(el.Point2(), 0.5))
		case *scene.Point:
			return cam.ZDepth(el.Position())
		default:
			return 0
		}
	}
	sort.SliceStable(els, func(i, j int) bool {
		return depth(els[i]) > depth(els[j])
	})
}

// resample appends e, subdivided until its projected size drops under
// ResamplingMaxSize: triangles split into four via edge midpoints,
// lines into two halves. Every produced facet has its projection
// cached.
func (r *VectorRenderer) resample(out []scene.Element, e scene.Element, cam scene.Camera, depth int) []scene.Element {
	if depth >= maxResampleDepth {
		return append(out, e)
	}

	switch el := e.(type) {
	case *scene.Triangle:
		proj := el.Projection()
		area := math.Abs(proj[1].Sub(proj[0]).Cross(proj[2].Sub(proj[0]))) / 2
		if !(area > r.ResamplingMaxSize) {
			return append(out, e)
		}
		for _, part := range subdivideTriangle(el, cam) {
			out = r.resample(out, part, cam, depth+1)
		}
		return out

	case *scene.Line:
		proj := el.Projection()
		if !(proj[0].DistanceSq(proj[1]) > r.ResamplingMaxSize) {
			return append(out, e)
		}
		for _, part := range subdivideLine(el, cam) {
			out = r.resample(out, part, cam, depth+1)
		}
		return out

	default:
		return append(out, e)
	}
}

// subdivideTriangle splits a triangle into four smaller ones via the
// 3D edge midpoints, interpolating vertex normals for smooth
// triangles.
func subdivideTriangle(tri *scene.Triangle, cam scene.Camera) []scene.Element {
	p1, p2, p3 := tri.Point1(), tri.Point2(), tri.Point3()
	m12 := p1.Lerp(p2, 0.5)
	m23 := p2.Lerp(p3, 0.5)
	m31 := p3.Lerp(p1, 0.5)

	build := func(a, b, c math3d.Vec3, na, nb, nc math3d.Unit) *scene.Triangle {
		var part *scene.Triangle
		if tri.Flat() {
			part = scene.NewTriangle(a, b, c)
		} else {
			part = scene.NewTriangleWithNormals(a, b, c, na, nb, nc)
		}
		part.Fill = tri.Fill
		part.CastsShadow = tri.CastsShadow
		part.ReceivesShadow = tri.ReceivesShadow
		part.SetTag(tri.Tag())
		part.SetZIndex(tri.ZIndex())
		part.SetProjection(cam)
		return part
	}

	n1, n2, n3 := tri.VertexNormals()
	mid := func(a, b math3d.Unit) math3d.Unit {
		return a.Vec3().Add(b.Vec3()).Unit()
	}
	n12, n23, n31 := mid(n1, n2), mid(n2, n3), mid(n3, n1)

	return []scene.Element{
		build(p1, m12, m31, n1, n12, n31),
		build(m12, p2, m23, n12, n2, n23),
		build(m31, m23, p3, n31, n23, n3),
		build(m12, m23, m31, n12, n23, n31),
	}
}

// subdivideLine splits a line at its 3D midpoint. The second half's
// dash phase advances by the first half's projected length so the
// pattern runs continuously across the split.
func subdivideLine(ln *scene.Line, cam scene.Camera) []scene.Element {
	mid := ln.Point1().Lerp(ln.Point2(), 0.5)

	build := func(a, b math3d.Vec3, phaseShift float64) *scene.Line {
		part := scene.NewLine(a, b, ln.Color, ln.Thickness)
		part.Cap = ln.Cap
		part.Dash = ln.Dash
		part.Dash.Phase += phaseShift
		part.SetTag(ln.Tag())
		part.SetZIndex(ln.ZIndex())
		part.SetProjection(cam)
		return part
	}

	first := build(ln.Point1(), mid, 0)
	shift := 0.0
	if !ln.Dash.Solid() {
		fp := first.Projection()
		shift = fp[0].Distance(fp[1])
	}
	return []scene.Element{first, build(mid, ln.Point2(), shift)}
}

// emit paints a single element into the canvas.
func (r *VectorRenderer) emit(e scene.Element, cam scene.Camera, lights []scene.Light, casters []*scene.Triangle, obs []float64, canvas Canvas) {
	switch el := e.(type) {
	case *scene.Point:
		canvas.FillCircle(el.Projection()[0], el.Diameter/2, el.Color, el.Tag())

	case *scene.Line:
		proj := el.Projection()
		canvas.StrokeLine(proj[0], proj[1], el.Color, el.Thickness, el.Cap, el.Dash, el.Tag())

	case *scene.Triangle:
		centroid := el.Centroid()
		col := shadeTriangle(el, centroid, cam, lights,
			obstructions(centroid, el, lights, casters, obs))
		if col.A <= 0 {
			return
		}

		proj := el.Projection()
		pts := []math3d.Vec2{proj[0], proj[1], proj[2]}
		if r.OverFill > 0 {
			pts = expandTriangle(pts, r.OverFill)
		}
		canvas.FillPolygon(pts, col, el.Tag())
	}
}

// expandTriangle pushes each edge outward along its 2D normal by
// amount and re-intersects adjacent edges. Degenerate (parallel) edge
// pairs produce NaN vertices, which propagate to the sink.
func expandTriangle(pts []math3d.Vec2, amount float64) []math3d.Vec2 {
	out := make([]math3d.Vec2, 3)
	var base [3]math3d.Vec2
	var dir [3]math3d.Vec2

	for i := range 3 {
		a, b := pts[i], pts[(i+1)%3]
		other := pts[(i+2)%3]

		edge := b.Sub(a)
		normal := edge.Perp().Normalize()
		if normal.Dot(other.Sub(a)) > 0 {
			normal = normal.Negate()
		}
		base[i] = a.Add(normal.Scale(amount))
		dir[i] = edge
	}

	for i := range 3 {
		prev := (i + 2) % 3
		p, ok := math3d.LineIntersection(base[prev], dir[prev], base[i], dir[i])
		if !ok {
			p = math3d.V2(math.NaN(), math.NaN())
		}
		out[i] = p
	}
	return out
}
