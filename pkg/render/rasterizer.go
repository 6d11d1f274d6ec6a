// Package render implements the facet renderers: a z-buffered
// rasterizer, a per-pixel raycaster and a painter's-algorithm vector
// renderer, all consuming the same scene, camera and light inputs.
package render

import (
	"math"
	"sync"
	"time"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/scene"
)

// RasterRenderer draws scenes into a pixel buffer with per-pixel depth
// resolution. The buffer and its z/zIndex companions are owned by the
// renderer and reused across calls; a mutex serializes Render so the
// buffers are never mutated by two passes at once.
type RasterRenderer struct {
	mu   sync.Mutex
	buf  *PixelBuffer
	zbuf []float64
	zidx []int

	// Background fills the buffer before drawing. The default is
	// transparent.
	Background scene.Color
}

// NewRasterRenderer creates a renderer targeting a width x height
// pixel buffer.
func NewRasterRenderer(width, height int) *RasterRenderer {
	return &RasterRenderer{
		buf:  NewPixelBuffer(width, height),
		zbuf: make([]float64, width*height),
		zidx: make([]int, width*height),
	}
}

// Width returns the target width in pixels.
func (r *RasterRenderer) Width() int { return r.buf.Width }

// Height returns the target height in pixels.
func (r *RasterRenderer) Height() int { return r.buf.Height }

// Render draws the scene and returns the renderer's pixel buffer. The
// buffer is valid until the next Render call. The scene lock is held
// for the whole pass.
func (r *RasterRenderer) Render(s *scene.Scene, lights []scene.Light, cam scene.Camera) *PixelBuffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Lock()
	defer s.Unlock()

	start := time.Now()

	for i := range r.zbuf {
		r.zbuf[i] = math.Inf(1)
	}
	for i := range r.zidx {
		r.zidx[i] = math.MinInt
	}
	r.buf.Clear(r.Background)

	casters := shadowCasters(s, lights)

	visible := s.Elements()[:0:0]
	for _, e := range s.Elements() {
		if cam.IsCulled(e) {
			continue
		}
		e.SetProjection(cam)
		visible = append(visible, e)
	}

	vm := newViewMap(cam, r.buf.Width, r.buf.Height)
	for _, e := range visible {
		switch el := e.(type) {
		case *scene.Point:
			r.drawPoint(el, cam, vm)
		case *scene.Line:
			r.drawLine(el, cam, vm)
		case *scene.Triangle:
			r.drawTriangle(el, cam, vm, lights, casters)
		}
	}

	Logger().Debug("raster pass done",
		"elements", len(visible),
		"size", r.buf.Width*r.buf.Height,
		"duration", time.Since(start))
	return r.buf
}

// shadowCasters gathers every shadow-casting triangle in the scene,
// culled or not, when at least one light can be obstructed.
func shadowCasters(s *scene.Scene, lights []scene.Light) []*scene.Triangle {
	anyShadow := false
	for _, l := range lights {
		if l.CastsShadow() {
			anyShadow = true
			break
		}
	}
	if !anyShadow {
		return nil
	}

	var casters []*scene.Triangle
	for _, e := range s.Elements() {
		if tri, ok := e.(*scene.Triangle); ok && tri.CastsShadow {
			casters = append(casters, tri)
		}
	}
	return casters
}

// obstructions fills obs with the per-light obstruction at p for the
// triangle being shaded, or returns nil when shading needs none.
func obstructions(p math3d.Vec3, tri *scene.Triangle, lights []scene.Light, casters []*scene.Triangle, obs []float64) []float64 {
	if !tri.ReceivesShadow || len(casters) == 0 {
		return nil
	}
	for i, l := range lights {
		if l.CastsShadow() {
			obs[i] = l.Obstruction(p, casters, tri)
		} else {
			obs[i] = 0
		}
	}
	return obs
}

// shadeTriangle composites the triangle's fill materials front to back
// at the deprojected point p.
func shadeTriangle(tri *scene.Triangle, p math3d.Vec3, cam scene.Camera, lights []scene.Light, obs []float64) scene.Color {
	n := tri.NormalAt(p)
	var col scene.Color
	for _, m := range tri.Fill {
		col = scene.BlendBack(col, m.GetColor(p, n, cam, lights, obs))
		if col.A >= 1 {
			break
		}
	}
	return col
}

// viewMap converts between pixel coordinates and the camera's 2D
// output units.
type viewMap struct {
	topLeft math3d.Vec2
	step    math3d.Vec2 // output units per pixel
}

func newViewMap(cam scene.Camera, width, height int) viewMap {
	size := cam.ViewSize()
	return viewMap{
		topLeft: cam.TopLeft(),
		step:    math3d.V2(size.X/float64(width), size.Y/float64(height)),
	}
}

// point returns the 2D output point at pixel coordinates (x, y);
// passing the pixel center means adding 0.5 to both.
func (v viewMap) point(x, y float64) math3d.Vec2 {
	return math3d.V2(v.topLeft.X+x*v.step.X, v.topLeft.Y+y*v.step.Y)
}

// pixel returns the fractional pixel coordinates of a 2D output point.
func (v viewMap) pixel(q math3d.Vec2) math3d.Vec2 {
	return math3d.V2((q.X-v.topLeft.X)/v.step.X, (q.Y-v.topLeft.Y)/v.step.Y)
}

// bbox clamps a 2D-unit bounding box, grown by margin units, to pixel
// bounds. ok is false when the box misses the target entirely or is
// not finite.
func (v viewMap) bbox(lo, hi math3d.Vec2, margin float64, width, height int) (minX, minY, maxX, maxY int, ok bool) {
	lo = lo.Sub(math3d.V2(margin, margin))
	hi = hi.Add(math3d.V2(margin, margin))
	if !lo.IsFinite() || !hi.IsFinite() {
		return 0, 0, 0, 0, false
	}

	plo := v.pixel(lo)
	phi := v.pixel(hi)
	minX = int(math.Floor(plo.X))
	minY = int(math.Floor(plo.Y))
	maxX = int(math.Ceil(phi.X))
	maxY = int(math.Ceil(phi.Y))

	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, width-1)
	maxY = min(maxY, height-1)
	return minX, minY, maxX, maxY, minX <= maxX && minY <= maxY
}

// Coverage falls from 1 to 0 across one output unit beyond an
// element's nominal extent.
const falloffBand = 1.0

// writeFragment resolves one fragment against the depth rule. A
// fragment wins the pixel when its zIndex is higher, or ties with a
// strictly closer depth (strict, triangles) or a not-farther depth
// (points and lines, so later coincident geometry still draws).
// Losing fragments composite underneath a translucent pixel.
func (r *RasterRenderer) writeFragment(x, y int, col scene.Color, z float64, zi int, strict bool) {
	if col.A <= 0 {
		return
	}
	i := y*r.buf.Width + x

	front := zi > r.zidx[i]
	if !front && zi == r.zidx[i] {
		if strict {
			front = z < r.zbuf[i]
		} else {
			front = z <= r.zbuf[i]
		}
	}

	if front {
		r.buf.Set(x, y, scene.BlendFront(r.buf.At(x, y), col))
		r.zbuf[i] = z
		r.zidx[i] = zi
		return
	}
	if dst := r.buf.At(x, y); dst.A < 1 {
		r.buf.Set(x, y, scene.BlendBack(dst, col))
	}
}

func (r *RasterRenderer) drawPoint(pt *scene.Point, cam scene.Camera, vm viewMap) {
	proj := pt.Projection()[0]
	radius := pt.Diameter / 2
	z := cam.ZDepth(pt.Position())
	zi := pt.ZIndex()

	minX, minY, maxX, maxY, ok := vm.bbox(proj, proj, radius+falloffBand, r.buf.Width, r.buf.Height)
	if !ok {
		return
	}

	parallelFor(maxY-minY+1, func(row int) {
		y := minY + row
		for x := minX; x <= maxX; x++ {
			q := vm.point(float64(x)+0.5, float64(y)+0.5)
			cov := discCoverage(q.Distance(proj), radius)
			if cov <= 0 {
				continue
			}
			r.writeFragment(x, y, pt.Color.ScaleAlpha(cov), z, zi, false)
		}
	})
}

// discCoverage is 1 inside radius and falls linearly to 0 across the
// falloff band.
func discCoverage(dist, radius float64) float64 {
	switch {
	case dist <= radius:
		return 1
	case dist >= radius+falloffBand:
		return 0
	default:
		return 1 - (dist-radius)/falloffBand
	}
}

func (r *RasterRenderer) drawLine(ln *scene.Line, cam scene.Camera, vm viewMap) {
	proj := ln.Projection()
	a, b := proj[0], proj[1]
	length := a.Distance(b)
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return
	}
	half := ln.Thickness / 2
	zi := ln.ZIndex()

	margin := half + falloffBand
	if ln.Cap != scene.CapButt {
		margin += half
	}
	minX, minY, maxX, maxY, ok := vm.bbox(a.Min(b), a.Max(b), margin, r.buf.Width, r.buf.Height)
	if !ok {
		return
	}

	endpointDepth := [2]float64{cam.ZDepth(ln.Point1()), cam.ZDepth(ln.Point2())}

	parallelFor(maxY-minY+1, func(row int) {
		y := minY + row
		for x := minX; x <= maxX; x++ {
			q := vm.point(float64(x)+0.5, float64(y)+0.5)
			cov, along := strokeCoverage(q, a, b, length, half, ln.Cap)
			if cov <= 0 || !ln.Dash.Covers(along) {
				continue
			}

			z, ok := lineDepth(cam, ln, q, a, b, endpointDepth)
			if !ok {
				continue
			}
			r.writeFragment(x, y, ln.Color.ScaleAlpha(cov), z, zi, false)
		}
	})
}

// strokeCoverage returns the stroke coverage of q against segment a-b
// and the distance along the segment used by dash patterns. The
// parametric span is trimmed or extended per cap style, with round
// caps contributing endpoint discs.
func strokeCoverage(q, a, b math3d.Vec2, length, half float64, lineCap scene.LineCap) (cov, along float64) {
	t := math3d.SegmentParameter(q, a, b)
	along = t * length
	perp := math3d.LinePointDistance(q, a, b)

	lo, hi := 0.0, length
	if lineCap == scene.CapSquare {
		lo, hi = -half, length+half
	}

	if along >= lo && along <= hi {
		cov = discCoverage(perp, half)
	}
	if lineCap == scene.CapRound {
		end := discCoverage(math.Min(q.Distance(a), q.Distance(b)), half)
		cov = math.Max(cov, end)
	}
	return cov, along
}

// lineDepth is the camera depth of the support-line point under q,
// falling back to the nearer endpoint when deprojection degenerates.
func lineDepth(cam scene.Camera, ln *scene.Line, q, a, b math3d.Vec2, endpointDepth [2]float64) (float64, bool) {
	p, err := cam.Deproject(q, ln)
	if err == nil {
		if z := cam.ZDepth(p); !math.IsNaN(z) {
			return z, true
		}
	}
	if q.DistanceSq(a) <= q.DistanceSq(b) {
		return endpointDepth[0], true
	}
	return endpointDepth[1], true
}

func (r *RasterRenderer) drawTriangle(tri *scene.Triangle, cam scene.Camera, vm viewMap, lights []scene.Light, casters []*scene.Triangle) {
	proj := tri.Projection()
	pa, pb, pc := proj[0], proj[1], proj[2]
	zi := tri.ZIndex()

	minX, minY, maxX, maxY, ok := vm.bbox(
		pa.Min(pb).Min(pc), pa.Max(pb).Max(pc), 0, r.buf.Width, r.buf.Height)
	if !ok {
		return
	}

	parallelFor(maxY-minY+1, func(row int) {
		y := minY + row
		var obs []float64
		if tri.ReceivesShadow && len(casters) > 0 {
			obs = make([]float64, len(lights))
		}

		for x := minX; x <= maxX; x++ {
			q := vm.point(float64(x)+0.5, float64(y)+0.5)
			if !math3d.PointInTriangle(q, pa, pb, pc) {
				continue
			}

			p, err := cam.Deproject(q, tri)
			if err != nil {
				continue
			}
			z := cam.ZDepth(p)
			if math.IsNaN(z) {
				continue
			}

			col := shadeTriangle(tri, p, cam, lights, obstructions(p, tri, lights, casters, obs))
			r.writeFragment(x, y, col, z, zi, true)
		}
	})
}
