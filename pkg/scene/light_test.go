package scene

import (
	"math"
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
)

func TestAmbientLight(t *testing.T) {
	l := NewAmbientLight(0.3)
	sample := l.LightAt(math3d.V3(5, -2, 9))
	if sample.Intensity != 0.3 || sample.Directed {
		t.Errorf("LightAt = %+v, want undirected 0.3", sample)
	}
	if l.CastsShadow() {
		t.Error("ambient light should never cast shadows")
	}

	blocker := NewTriangle(math3d.V3(-10, -10, 1), math3d.V3(10, -10, 1), math3d.V3(0, 10, 1))
	if got := l.Obstruction(math3d.Zero3(), []*Triangle{blocker}, nil); got != 0 {
		t.Errorf("Obstruction = %v, want 0", got)
	}
}

func TestDirectionalLight(t *testing.T) {
	l := NewDirectionalLight(math3d.NewUnit(math3d.V3(0, -1, 0)), 0.7)

	for _, p := range []math3d.Vec3{math3d.Zero3(), math3d.V3(100, 3, -40)} {
		sample := l.LightAt(p)
		if sample.Intensity != 0.7 || !sample.Directed {
			t.Errorf("LightAt(%v) = %+v, want directed 0.7", p, sample)
		}
		if got, want := sample.Direction.Vec3(), math3d.V3(0, -1, 0); !vecAlmostEqual(got, want) {
			t.Errorf("Direction = %v, want %v", got, want)
		}
	}
}

func TestPointLightFalloff(t *testing.T) {
	l := NewPointLight(math3d.V3(0, 10, 0), 100)

	tests := []struct {
		name string
		p    math3d.Vec3
		want float64
	}{
		{"one unit away", math3d.V3(0, 9, 0), 100},
		{"two units away", math3d.V3(0, 8, 0), 25},
		{"ten units away", math3d.V3(0, 0, 0), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := l.LightAt(tt.p)
			if math.Abs(sample.Intensity-tt.want) > 1e-9 {
				t.Errorf("Intensity = %v, want %v", sample.Intensity, tt.want)
			}
			if got, want := sample.Direction.Vec3(), math3d.V3(0, -1, 0); !vecAlmostEqual(got, want) {
				t.Errorf("Direction = %v, want %v", got, want)
			}
		})
	}

	t.Run("linear falloff", func(t *testing.T) {
		l := NewPointLight(math3d.V3(0, 10, 0), 100)
		l.AttenuationExponent = 1
		if got := l.LightAt(math3d.V3(0, 0, 0)).Intensity; math.Abs(got-10) > 1e-9 {
			t.Errorf("Intensity = %v, want 10", got)
		}
	})
}

func TestObstruction(t *testing.T) {
	light := NewPointLight(math3d.V3(0, 10, 0), 100)
	light.Shadow = true

	// A large triangle at y=5, squarely between the origin and the
	// light.
	blocker := NewTriangle(math3d.V3(-10, 5, -10), math3d.V3(10, 5, -10), math3d.V3(0, 5, 10))
	blocker.CastsShadow = true

	receiver := NewTriangle(math3d.V3(-1, 0, -1), math3d.V3(1, 0, -1), math3d.V3(0, 0, 1))

	tests := []struct {
		name    string
		p       math3d.Vec3
		casters []*Triangle
		exclude *Triangle
		want    float64
	}{
		{"blocked", math3d.Zero3(), []*Triangle{blocker}, receiver, 1},
		{"no casters", math3d.Zero3(), nil, receiver, 0},
		{"self excluded by identity", math3d.Zero3(), []*Triangle{blocker}, blocker, 0},
		{"caster behind the light", math3d.V3(0, 20, 0), []*Triangle{blocker}, receiver, 0},
		{"point beside the shadow volume", math3d.V3(50, 0, 0), []*Triangle{blocker}, receiver, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := light.Obstruction(tt.p, tt.casters, tt.exclude); got != tt.want {
				t.Errorf("Obstruction = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("disabled shadow reports clear", func(t *testing.T) {
		off := NewPointLight(math3d.V3(0, 10, 0), 100)
		if got := off.Obstruction(math3d.Zero3(), []*Triangle{blocker}, receiver); got != 0 {
			t.Errorf("Obstruction = %v, want 0 when Shadow is unset", got)
		}
	})
}

func TestDirectionalObstruction(t *testing.T) {
	l := NewDirectionalLight(math3d.NewUnit(math3d.V3(0, -1, 0)), 1)
	l.Shadow = true

	blocker := NewTriangle(math3d.V3(-10, 5, -10), math3d.V3(10, 5, -10), math3d.V3(0, 5, 10))

	// Directional rays are tested to infinity, so a blocker at any
	// height above the point obstructs.
	if got := l.Obstruction(math3d.Zero3(), []*Triangle{blocker}, nil); got != 1 {
		t.Errorf("Obstruction = %v, want 1", got)
	}
	if got := l.Obstruction(math3d.V3(0, 6, 0), []*Triangle{blocker}, nil); got != 0 {
		t.Errorf("Obstruction above the blocker = %v, want 0", got)
	}
}

func TestSpotLight(t *testing.T) {
	l := NewSpotLight(math3d.V3(0, 10, 0), math3d.NewUnit(math3d.V3(0, -1, 0)), 100, math.Pi/8, math.Pi/4)

	t.Run("inside beam", func(t *testing.T) {
		got := l.LightAt(math3d.V3(0, 0, 0)).Intensity
		if math.Abs(got-1) > 1e-9 {
			t.Errorf("Intensity = %v, want 1", got)
		}
	})

	t.Run("outside cutoff", func(t *testing.T) {
		if got := l.LightAt(math3d.V3(20, 10, 0)).Intensity; got != 0 {
			t.Errorf("Intensity = %v, want 0", got)
		}
	})

	t.Run("between beam and cutoff", func(t *testing.T) {
		// 22.5 degrees corresponds to halfway through the falloff
		// band, at distance 10/cos(22.5 deg) from the light.
		angle := 3 * math.Pi / 16
		p := math3d.V3(10*math.Tan(angle), 0, 0)
		dist := math3d.V3(0, 10, 0).Distance(p)
		want := 100 * 0.5 / (dist * dist)
		got := l.LightAt(p).Intensity
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Intensity = %v, want %v", got, want)
		}
	})
}

func TestShadowScenario(t *testing.T) {
	// A caster squarely between a point light and a receiving surface:
	// the shaded colour at the blocked point must collapse to the
	// ambient-only colour, and away from the shadow it must match the
	// fully lit colour.
	light := NewPointLight(math3d.V3(0, 10, 0), 100)
	light.Shadow = true
	ambient := NewAmbientLight(0.1)
	lights := []Light{ambient, light}

	caster := NewTriangle(math3d.V3(-2, 5, -2), math3d.V3(2, 5, -2), math3d.V3(0, 5, 2))
	caster.CastsShadow = true
	casters := []*Triangle{caster}

	receiver := NewTriangle(math3d.V3(-50, 0, -50), math3d.V3(50, 0, -50), math3d.V3(0, 0, 50))
	receiver.ReceivesShadow = true
	m := NewPhongMaterial(RGB(0.8, 0.8, 0.8))

	shade := func(p math3d.Vec3) Color {
		obstructions := []float64{
			ambient.Obstruction(p, casters, receiver),
			light.Obstruction(p, casters, receiver),
		}
		return m.GetColor(p, receiver.Normal(), dropZCamera{}, lights, obstructions)
	}

	shadowed := shade(math3d.Zero3())
	ambientOnly := m.GetColor(math3d.Zero3(), receiver.Normal(), dropZCamera{}, []Light{ambient}, nil)
	if !colorAlmostEqual(shadowed, ambientOnly) {
		t.Errorf("shadowed colour %v, want ambient-only %v", shadowed, ambientOnly)
	}

	lit := shade(math3d.V3(30, 0, 0))
	open := m.GetColor(math3d.V3(30, 0, 0), receiver.Normal(), dropZCamera{}, lights, nil)
	if !colorAlmostEqual(lit, open) {
		t.Errorf("unobstructed colour %v, want fully lit %v", lit, open)
	}
	if lit == ambientOnly {
		t.Error("lit and shadowed colours should differ")
	}
}
