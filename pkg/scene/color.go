// Package scene holds the drawable element model consumed by the
// renderers: points, lines and triangles with their appearance state,
// fill materials, light sources, and the scene container itself.
package scene

import (
	"image/color"
	"math"
)

// Color is an RGBA colour with float64 components in [0, 1],
// non-premultiplied. Values outside the range are clamped only at
// byte-quantization time.
type Color struct {
	R, G, B, A float64
}

// RGB creates an opaque colour.
func RGB(r, g, b float64) Color {
	return Color{r, g, b, 1}
}

// RGBA creates a colour with explicit alpha.
func RGBA(r, g, b, a float64) Color {
	return Color{r, g, b, a}
}

// FromNRGBA converts an 8-bit non-premultiplied colour.
func FromNRGBA(c color.NRGBA) Color {
	return Color{
		float64(c.R) / 255,
		float64(c.G) / 255,
		float64(c.B) / 255,
		float64(c.A) / 255,
	}
}

// NRGBA quantizes to 8-bit non-premultiplied form, clamping each
// channel to [0, 255].
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: quantize(c.R),
		G: quantize(c.G),
		B: quantize(c.B),
		A: quantize(c.A),
	}
}

func quantize(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// WithAlpha returns the colour with its alpha replaced.
func (c Color) WithAlpha(a float64) Color {
	c.A = a
	return c
}

// ScaleAlpha returns the colour with its alpha scaled by f, used for
// coverage-weighted fragments.
func (c Color) ScaleAlpha(f float64) Color {
	c.A *= f
	return c
}

// Lerp returns the channel-wise interpolation between c and d by t.
func (c Color) Lerp(d Color, t float64) Color {
	return Color{
		c.R + (d.R-c.R)*t,
		c.G + (d.G-c.G)*t,
		c.B + (d.B-c.B)*t,
		c.A + (d.A-c.A)*t,
	}
}

// BlendFront composites src over dst (src is in front). A fully
// opaque src replaces dst exactly; a fully transparent src leaves dst
// exactly unchanged.
func BlendFront(dst, src Color) Color {
	if src.A >= 1 {
		return src
	}
	if src.A <= 0 {
		return dst
	}
	a := src.A + dst.A*(1-src.A)
	if a == 0 {
		return Color{}
	}
	back := dst.A * (1 - src.A)
	return Color{
		(src.R*src.A + dst.R*back) / a,
		(src.G*src.A + dst.G*back) / a,
		(src.B*src.A + dst.B*back) / a,
		a,
	}
}

// BlendBack composites src underneath dst (dst keeps the front). A
// fully opaque dst hides src exactly.
func BlendBack(dst, src Color) Color {
	if dst.A >= 1 {
		return dst
	}
	return BlendFront(src, dst)
}
