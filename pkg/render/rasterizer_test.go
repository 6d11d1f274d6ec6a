package render

import (
	"bytes"
	"image/color"
	"math"
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/scene"
)

var (
	red  = scene.RGB(1, 0, 0)
	blue = scene.RGB(0, 0, 1)
)

// filledTriangle builds a front-facing triangle in the z=height plane
// spanning size world units from the axis, filled with a constant
// colour.
func filledTriangle(col scene.Color, height, size float64) *scene.Triangle {
	tri := scene.NewTriangle(
		math3d.V3(-size, -size, height),
		math3d.V3(size, -size, height),
		math3d.V3(0, size, height),
	)
	tri.Fill = []scene.Material{scene.NewColorMaterial(col)}
	return tri
}

func pixelAt(buf *PixelBuffer, x, y int) color.NRGBA {
	return buf.At(x, y).NRGBA()
}

// nrgbaClose tolerates one quantization step per channel; compositing
// through the byte-backed buffer may round intermediate values.
func nrgbaClose(a, b color.NRGBA) bool {
	diff := func(x, y uint8) int {
		d := int(x) - int(y)
		if d < 0 {
			d = -d
		}
		return d
	}
	return diff(a.R, b.R) <= 1 && diff(a.G, b.G) <= 1 &&
		diff(a.B, b.B) <= 1 && diff(a.A, b.A) <= 1
}

func TestRasterRendererDraws(t *testing.T) {
	s := scene.NewScene()
	s.Add(filledTriangle(red, 0, 4))

	r := NewRasterRenderer(64, 64)
	buf := r.Render(s, nil, testCamera())

	if got := pixelAt(buf, 32, 32); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("center pixel = %v, want opaque red", got)
	}
	if got := pixelAt(buf, 0, 0); got != (color.NRGBA{}) {
		t.Errorf("corner pixel = %v, want transparent", got)
	}
}

func TestRasterRendererDeterministic(t *testing.T) {
	s := scene.NewScene()
	far := filledTriangle(red, 0, 4)
	near := filledTriangle(blue.WithAlpha(0.5), 5, 2)
	s.Add(
		far,
		near,
		scene.NewPoint(math3d.V3(2, 2, 0), scene.RGB(0, 1, 0), 1),
		scene.NewLine(math3d.V3(-3, -2, 0), math3d.V3(3, -2, 0), scene.RGB(1, 1, 0), 0.5),
	)

	r := NewRasterRenderer(48, 48)
	cam := testCamera()

	first := append([]uint8(nil), r.Render(s, nil, cam).Pix...)
	second := r.Render(s, nil, cam).Pix

	if !bytes.Equal(first, second) {
		t.Error("two renders of the same scene differ")
	}
}

func TestRasterRendererReusesBuffer(t *testing.T) {
	s := scene.NewScene()
	r := NewRasterRenderer(8, 8)
	cam := testCamera()

	if r.Render(s, nil, cam) != r.Render(s, nil, cam) {
		t.Error("Render returned different buffers across calls")
	}
}

func TestRasterZIndexOverridesDepth(t *testing.T) {
	for _, tc := range []struct {
		name     string
		farFirst bool
	}{
		{"far added first", true},
		{"near added first", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			far := filledTriangle(red, 0, 4)
			far.SetZIndex(1)
			near := filledTriangle(blue, 5, 2)

			s := scene.NewScene()
			if tc.farFirst {
				s.Add(far, near)
			} else {
				s.Add(near, far)
			}

			buf := NewRasterRenderer(64, 64).Render(s, nil, testCamera())
			if got := pixelAt(buf, 32, 32); got != (color.NRGBA{R: 255, A: 255}) {
				t.Errorf("center pixel = %v, want the high zIndex colour", got)
			}
		})
	}
}

func TestRasterDepthResolvesNearer(t *testing.T) {
	for _, tc := range []struct {
		name     string
		farFirst bool
	}{
		{"far added first", true},
		{"near added first", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			far := filledTriangle(red, 0, 4)
			near := filledTriangle(blue, 5, 2)

			s := scene.NewScene()
			if tc.farFirst {
				s.Add(far, near)
			} else {
				s.Add(near, far)
			}

			buf := NewRasterRenderer(64, 64).Render(s, nil, testCamera())
			if got := pixelAt(buf, 32, 32); got != (color.NRGBA{B: 255, A: 255}) {
				t.Errorf("center pixel = %v, want the nearer colour", got)
			}
		})
	}
}

func TestRasterTranslucentComposite(t *testing.T) {
	// A half-transparent near triangle over an opaque far one must give
	// the same mix whichever is rasterized first: the later far
	// fragment composites underneath the translucent pixel.
	for _, tc := range []struct {
		name     string
		farFirst bool
	}{
		{"far added first", true},
		{"near added first", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			far := filledTriangle(red, 0, 4)
			near := filledTriangle(blue.WithAlpha(0.5), 5, 2)

			s := scene.NewScene()
			if tc.farFirst {
				s.Add(far, near)
			} else {
				s.Add(near, far)
			}

			buf := NewRasterRenderer(64, 64).Render(s, nil, testCamera())
			want := color.NRGBA{R: 128, B: 128, A: 255}
			if got := pixelAt(buf, 32, 32); !nrgbaClose(got, want) {
				t.Errorf("center pixel = %v, want about %v", got, want)
			}
		})
	}
}

func TestRasterBackground(t *testing.T) {
	s := scene.NewScene()
	r := NewRasterRenderer(16, 16)
	r.Background = scene.RGB(1, 1, 1)

	buf := r.Render(s, nil, testCamera())
	if got := pixelAt(buf, 0, 0); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Errorf("background pixel = %v, want white", got)
	}
	if buf.HasAlpha {
		t.Error("opaque background should clear HasAlpha")
	}
}

func TestRasterPoint(t *testing.T) {
	s := scene.NewScene()
	s.Add(scene.NewPoint(math3d.V3(0, 0, 0), red, 1))

	buf := NewRasterRenderer(64, 64).Render(s, nil, testCamera())
	if got := pixelAt(buf, 32, 32); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("center pixel = %v, want the point colour", got)
	}
}

func TestRasterLine(t *testing.T) {
	s := scene.NewScene()
	s.Add(scene.NewLine(math3d.V3(-3, 0, 0), math3d.V3(3, 0, 0), red, 0.5))

	buf := NewRasterRenderer(64, 64).Render(s, nil, testCamera())
	if got := pixelAt(buf, 32, 32); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("center pixel = %v, want the line colour", got)
	}
	if got := pixelAt(buf, 32, 8); got != (color.NRGBA{}) {
		t.Errorf("pixel far from the line = %v, want transparent", got)
	}
}

func TestRasterDashedLine(t *testing.T) {
	ln := scene.NewLine(math3d.V3(-4, 0, 0), math3d.V3(4, 0, 0), red, 0.5)
	ln.Dash = scene.Dash{On: 0.5, Off: 0.5}

	s := scene.NewScene()
	s.Add(ln)

	buf := NewRasterRenderer(64, 64).Render(s, nil, testCamera())

	inked, bare := 0, 0
	for x := range 64 {
		if pixelAt(buf, x, 32).A > 0 {
			inked++
		} else {
			bare++
		}
	}
	if inked == 0 || bare == 0 {
		t.Errorf("dashed line row has %d inked and %d bare pixels, want both", inked, bare)
	}
}

func TestRasterShadow(t *testing.T) {
	light := scene.NewDirectionalLight(math3d.V3(0, 0, -1).Unit(), 1)
	light.Shadow = true

	render := func(withBlocker bool) color.NRGBA {
		floor := filledTriangle(scene.Color{}, 0, 4)
		floor.Fill = []scene.Material{scene.NewPhongMaterial(scene.RGB(0.8, 0.8, 0.8))}
		floor.ReceivesShadow = true

		s := scene.NewScene()
		s.Add(floor)
		if withBlocker {
			// Reverse winding keeps the blocker out of the image while
			// it still occludes the light.
			blocker := scene.NewTriangle(
				math3d.V3(-4, -4, 3),
				math3d.V3(0, 4, 3),
				math3d.V3(4, -4, 3),
			)
			blocker.CastsShadow = true
			s.Add(blocker)
		}

		buf := NewRasterRenderer(64, 64).Render(s, []scene.Light{light}, testCamera())
		return pixelAt(buf, 32, 32)
	}

	lit := render(false)
	shadowed := render(true)

	if lit.R == 0 {
		t.Fatal("unshadowed floor rendered black")
	}
	if shadowed.R >= lit.R {
		t.Errorf("shadowed pixel %v is not darker than lit pixel %v", shadowed, lit)
	}
}

func TestRasterNaNGeometrySkipped(t *testing.T) {
	tri := filledTriangle(red, 0, 4)
	bad := scene.NewTriangle(
		math3d.V3(math.NaN(), 0, 0),
		math3d.V3(4, -4, 0),
		math3d.V3(0, 4, 0),
	)
	bad.Fill = []scene.Material{scene.NewColorMaterial(blue)}

	s := scene.NewScene()
	s.Add(bad, tri)

	buf := NewRasterRenderer(32, 32).Render(s, nil, testCamera())
	if got := pixelAt(buf, 16, 16); got != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("center pixel = %v, want the finite triangle's colour", got)
	}
}

func BenchmarkRasterRender(b *testing.B) {
	s := scene.NewScene()
	s.Add(
		filledTriangle(red, 0, 4),
		filledTriangle(blue.WithAlpha(0.5), 5, 2),
		scene.NewLine(math3d.V3(-3, -2, 0), math3d.V3(3, -2, 0), scene.RGB(1, 1, 0), 0.5),
	)
	r := NewRasterRenderer(128, 128)
	cam := testCamera()

	for b.Loop() {
		r.Render(s, nil, cam)
	}
}
