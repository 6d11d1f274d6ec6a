package render

import (
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/scene"
)

// aaOffsets is the fixed rotated-grid sub-pixel pattern used when
// anti-aliasing is on.
var aaOffsets = []math3d.Vec2{
	{X: 0.375, Y: 0.125},
	{X: 0.875, Y: 0.375},
	{X: 0.625, Y: 0.875},
	{X: 0.125, Y: 0.625},
}

var centerOffset = []math3d.Vec2{{X: 0.5, Y: 0.5}}

// rayHit is one element whose projection covers a sample point.
type rayHit struct {
	color scene.Color
	depth float64
	zidx  int
}

// RaycastRenderer resolves every pixel independently by hit-testing
// all visible elements, with no persistent depth buffers. It supports
// anti-aliasing and, through BlurrableCamera, depth-of-field blur.
// Slower than the rasterizer but exact per pixel.
type RaycastRenderer struct {
	mu    sync.Mutex
	buf   *PixelBuffer
	accum []float64 // RGBA sums per pixel, alpha-weighted

	// AntiAlias enables the 4-tap sub-pixel sample pattern. Off, each
	// pixel is a single center sample.
	AntiAlias bool

	// Progress, when set, is invoked at coarse intervals as pixels
	// complete across all camera passes. It may be called from
	// several worker goroutines at once.
	Progress func(done, total int)

	// Background shows through wherever nothing is hit.
	Background scene.Color
}

// NewRaycastRenderer creates a renderer targeting a width x height
// pixel buffer.
func NewRaycastRenderer(width, height int) *RaycastRenderer {
	return &RaycastRenderer{
		buf:   NewPixelBuffer(width, height),
		accum: make([]float64, width*height*4),
	}
}

// Width returns the target width in pixels.
func (r *RaycastRenderer) Width() int { return r.buf.Width }

// Height returns the target height in pixels.
func (r *RaycastRenderer) Height() int { return r.buf.Height }

// Render draws the scene and returns the renderer's pixel buffer,
// valid until the next Render call. When cam is a BlurrableCamera the
// scene is rendered once per sub-camera and the passes are averaged
// per pixel.
func (r *RaycastRenderer) Render(s *scene.Scene, lights []scene.Light, cam scene.Camera) *PixelBuffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Lock()
	defer s.Unlock()

	start := time.Now()

	cameras := []scene.Camera{cam}
	if bc, ok := cam.(BlurrableCamera); ok {
		cameras = bc.Cameras()
	}
	taps := centerOffset
	if r.AntiAlias {
		taps = aaOffsets
	}

	width, height := r.buf.Width, r.buf.Height
	clear(r.accum)
	casters := shadowCasters(s, lights)

	total := len(cameras) * width * height
	interval := max(1, total/1000)
	var done atomic.Int64

	for _, pass := range cameras {
		visible := s.Elements()[:0:0]
		for _, e := range s.Elements() {
			if pass.IsCulled(e) {
				continue
			}
			e.SetProjection(pass)
			visible = append(visible, e)
		}

		vm := newViewMap(pass, width, height)
		parallelFor(height, func(y int) {
			hits := make([]rayHit, 0, 16)
			obs := make([]float64, len(lights))

			for x := range width {
				for _, off := range taps {
					q := vm.point(float64(x)+off.X, float64(y)+off.Y)
					hits = gatherHits(hits[:0], q, visible, pass, lights, casters, obs)
					sortHits(hits)

					var acc scene.Color
					for _, h := range hits {
						acc = scene.BlendBack(acc, h.color)
						if acc.A >= 1 {
							break
						}
					}

					i := (y*width + x) * 4
					r.accum[i] += acc.R * acc.A
					r.accum[i+1] += acc.G * acc.A
					r.accum[i+2] += acc.B * acc.A
					r.accum[i+3] += acc.A
				}

				if n := done.Add(1); r.Progress != nil && n%int64(interval) == 0 {
					r.Progress(int(n), total)
				}
			}
		})
	}

	samples := float64(len(cameras) * len(taps))
	parallelFor(height, func(y int) {
		for x := range width {
			i := (y*width + x) * 4
			var col scene.Color
			if sumA := r.accum[i+3]; sumA > 0 {
				col = scene.Color{
					R: r.accum[i] / sumA,
					G: r.accum[i+1] / sumA,
					B: r.accum[i+2] / sumA,
					A: sumA / samples,
				}
			}
			r.buf.Set(x, y, scene.BlendFront(r.Background, col))
		}
	})

	Logger().Debug("raycast pass done",
		"cameras", len(cameras),
		"taps", len(taps),
		"duration", time.Since(start))
	return r.buf
}

// gatherHits appends every visible element covering the sample point q.
func gatherHits(hits []rayHit, q math3d.Vec2, visible []scene.Element, cam scene.Camera, lights []scene.Light, casters []*scene.Triangle, obs []float64) []rayHit {
	for _, e := range visible {
		switch el := e.(type) {
		case *scene.Point:
			cov := discCoverage(q.Distance(el.Projection()[0]), el.Diameter/2)
			if cov <= 0 {
				continue
			}
			hits = append(hits, rayHit{
				color: el.Color.ScaleAlpha(cov),
				depth: cam.ZDepth(el.Position()),
				zidx:  el.ZIndex(),
			})

		case *scene.Line:
			proj := el.Projection()
			a, b := proj[0], proj[1]
			length := a.Distance(b)
			if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
				continue
			}
			cov, along := strokeCoverage(q, a, b, length, el.Thickness/2, el.Cap)
			if cov <= 0 || !el.Dash.Covers(along) {
				continue
			}
			depth, ok := lineDepth(cam, el, q, a, b,
				[2]float64{cam.ZDepth(el.Point1()), cam.ZDepth(el.Point2())})
			if !ok {
				continue
			}
			hits = append(hits, rayHit{
				color: el.Color.ScaleAlpha(cov),
				depth: depth,
				zidx:  el.ZIndex(),
			})

		case *scene.Triangle:
			proj := el.Projection()
			if !math3d.PointInTriangle(q, proj[0], proj[1], proj[2]) {
				continue
			}
			p, err := cam.Deproject(q, el)
			if err != nil {
				continue
			}
			depth := cam.ZDepth(p)
			if math.IsNaN(depth) {
				continue
			}
			col := shadeTriangle(el, p, cam, lights, obstructions(p, el, lights, casters, obs))
			hits = append(hits, rayHit{color: col, depth: depth, zidx: el.ZIndex()})
		}
	}
	return hits
}

// sortHits orders hits front to back: zIndex descending, then depth
// ascending, stable for exact ties.
func sortHits(hits []rayHit) {
	slices.SortStableFunc(hits, func(a, b rayHit) int {
		switch {
		case a.zidx > b.zidx:
			return -1
		case a.zidx < b.zidx:
			return 1
		case a.depth < b.depth:
			return -1
		case a.depth > b.depth:
			return 1
		default:
			return 0
		}
	})
}
