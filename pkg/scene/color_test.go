package scene

import (
	"image/color"
	"math"
	"testing"
)

func TestBlendFrontIdentityLaws(t *testing.T) {
	backgrounds := []struct {
		name string
		c    Color
	}{
		{"transparent", Color{}},
		{"opaque gray", RGB(0.5, 0.5, 0.5)},
		{"translucent red", RGBA(1, 0, 0, 0.3)},
	}

	opaque := RGB(0.1, 0.9, 0.4)
	for _, bg := range backgrounds {
		t.Run("opaque source over "+bg.name, func(t *testing.T) {
			if got := BlendFront(bg.c, opaque); got != opaque {
				t.Errorf("BlendFront(%v, %v) = %v, want %v", bg.c, opaque, got, opaque)
			}
		})
	}

	clear := RGBA(0.7, 0.2, 0.1, 0)
	for _, bg := range backgrounds {
		t.Run("transparent source over "+bg.name, func(t *testing.T) {
			if got := BlendFront(bg.c, clear); got != bg.c {
				t.Errorf("BlendFront(%v, %v) = %v, want %v", bg.c, clear, got, bg.c)
			}
		})
	}
}

func TestBlendFrontTranslucent(t *testing.T) {
	dst := RGB(0, 0, 1)
	src := RGBA(1, 0, 0, 0.5)
	got := BlendFront(dst, src)

	want := Color{0.5, 0, 0.5, 1}
	if !colorAlmostEqual(got, want) {
		t.Errorf("BlendFront(%v, %v) = %v, want %v", dst, src, got, want)
	}
}

func TestBlendBack(t *testing.T) {
	tests := []struct {
		name     string
		dst, src Color
		want     Color
	}{
		{
			name: "opaque destination blocks source",
			dst:  RGB(0, 1, 0),
			src:  RGB(1, 0, 0),
			want: RGB(0, 1, 0),
		},
		{
			name: "transparent destination passes source",
			dst:  Color{},
			src:  RGB(1, 0, 0),
			want: RGB(1, 0, 0),
		},
		{
			name: "translucent destination stays in front",
			dst:  RGBA(1, 0, 0, 0.5),
			src:  RGB(0, 0, 1),
			want: Color{0.5, 0, 0.5, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BlendBack(tt.dst, tt.src); !colorAlmostEqual(got, tt.want) {
				t.Errorf("BlendBack(%v, %v) = %v, want %v", tt.dst, tt.src, got, tt.want)
			}
		})
	}
}

func TestBlendBackMatchesFrontToBackWalk(t *testing.T) {
	// Compositing a stack front to back with BlendBack must agree with
	// compositing the same stack back to front with BlendFront.
	stack := []Color{
		RGBA(1, 0, 0, 0.25),
		RGBA(0, 1, 0, 0.5),
		RGB(0, 0, 1),
	}

	var frontToBack Color
	for _, c := range stack {
		frontToBack = BlendBack(frontToBack, c)
	}

	var backToFront Color
	for i := len(stack) - 1; i >= 0; i-- {
		backToFront = BlendFront(backToFront, stack[i])
	}

	if !colorAlmostEqual(frontToBack, backToFront) {
		t.Errorf("front-to-back %v, back-to-front %v", frontToBack, backToFront)
	}
}

func TestNRGBA(t *testing.T) {
	tests := []struct {
		name string
		c    Color
		want color.NRGBA
	}{
		{"black", RGB(0, 0, 0), color.NRGBA{0, 0, 0, 255}},
		{"white", RGB(1, 1, 1), color.NRGBA{255, 255, 255, 255}},
		{"mid gray", RGB(0.5, 0.5, 0.5), color.NRGBA{128, 128, 128, 255}},
		{"clamped high", RGBA(2, 1.5, 1, 3), color.NRGBA{255, 255, 255, 255}},
		{"clamped low", RGBA(-1, 0, 0, -0.5), color.NRGBA{0, 0, 0, 0}},
		{"nan channels", Color{math.NaN(), 0, 0, math.NaN()}, color.NRGBA{0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.NRGBA(); got != tt.want {
				t.Errorf("%v.NRGBA() = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestFromNRGBARoundTrip(t *testing.T) {
	in := color.NRGBA{R: 12, G: 200, B: 77, A: 190}
	if got := FromNRGBA(in).NRGBA(); got != in {
		t.Errorf("round trip = %v, want %v", got, in)
	}
}

func TestLerp(t *testing.T) {
	a := RGBA(0, 0, 0, 0)
	b := RGBA(1, 0.5, 0.25, 1)

	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Lerp(0) = %v, want %v", got, a)
	}
	if got := a.Lerp(b, 1); got != b {
		t.Errorf("Lerp(1) = %v, want %v", got, b)
	}
	mid := Color{0.5, 0.25, 0.125, 0.5}
	if got := a.Lerp(b, 0.5); !colorAlmostEqual(got, mid) {
		t.Errorf("Lerp(0.5) = %v, want %v", got, mid)
	}
}

func colorAlmostEqual(a, b Color) bool {
	const eps = 1e-12
	return math.Abs(a.R-b.R) < eps &&
		math.Abs(a.G-b.G) < eps &&
		math.Abs(a.B-b.B) < eps &&
		math.Abs(a.A-b.A) < eps
}
