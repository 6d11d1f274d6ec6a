// Package ggcanvas bridges the vector renderer to a gg drawing
// context, turning recorded primitives into rasterized 2D output.
package ggcanvas

import (
	"github.com/gogpu/gg"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/render"
	"github.com/taigrr/facet/pkg/scene"
)

// Canvas adapts a gg.Context to the render.Canvas interface. Primitives
// are drawn in whatever coordinate space the context's transform is set
// to; Fit configures it for a camera. Tags have no gg representation
// and are dropped. Drawing errors are sticky, check Err after the pass.
type Canvas struct {
	ctx *gg.Context
	err error
}

// New wraps a gg context.
func New(ctx *gg.Context) *Canvas {
	return &Canvas{ctx: ctx}
}

// Fit sets the context transform so the camera's view rectangle fills
// the whole context surface.
func Fit(ctx *gg.Context, cam scene.Camera) {
	size := cam.ViewSize()
	tl := cam.TopLeft()
	ctx.Scale(float64(ctx.Width())/size.X, float64(ctx.Height())/size.Y)
	ctx.Translate(-tl.X, -tl.Y)
}

// Err returns the first error any drawing call produced, if any.
func (c *Canvas) Err() error {
	return c.err
}

func (c *Canvas) note(err error) {
	if c.err == nil {
		c.err = err
	}
}

// FillPolygon draws a closed filled polygon.
func (c *Canvas) FillPolygon(pts []math3d.Vec2, col scene.Color, _ string) {
	if len(pts) < 3 {
		return
	}
	c.ctx.SetRGBA(col.R, col.G, col.B, col.A)
	c.ctx.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.ctx.LineTo(p.X, p.Y)
	}
	c.ctx.ClosePath()
	c.note(c.ctx.Fill())
}

// FillCircle draws a filled disc.
func (c *Canvas) FillCircle(center math3d.Vec2, r float64, col scene.Color, _ string) {
	c.ctx.SetRGBA(col.R, col.G, col.B, col.A)
	c.ctx.DrawCircle(center.X, center.Y, r)
	c.note(c.ctx.Fill())
}

// StrokeLine draws a stroked segment with the given cap and dash
// pattern.
func (c *Canvas) StrokeLine(a, b math3d.Vec2, col scene.Color, width float64, lineCap scene.LineCap, dash scene.Dash, _ string) {
	c.ctx.SetRGBA(col.R, col.G, col.B, col.A)
	c.ctx.SetLineWidth(width)
	c.ctx.SetLineCap(capOf(lineCap))
	if dash.Solid() {
		c.ctx.ClearDash()
	} else {
		c.ctx.SetDash(dash.On, dash.Off)
		c.ctx.SetDashOffset(dash.Phase)
	}
	c.ctx.MoveTo(a.X, a.Y)
	c.ctx.LineTo(b.X, b.Y)
	c.note(c.ctx.Stroke())
}

// DrawImage blits a pixel buffer into the rectangle at (x, y) with the
// given size, honouring the buffer's interpolation hint.
func (c *Canvas) DrawImage(img *render.PixelBuffer, x, y, w, h float64, _ string) {
	c.ctx.DrawImageEx(gg.ImageBufFromImage(img.ToImage()), gg.DrawImageOptions{
		X:             x,
		Y:             y,
		DstWidth:      w,
		DstHeight:     h,
		Interpolation: interpOf(img.Interpolation),
		Opacity:       1,
	})
}

func capOf(lc scene.LineCap) gg.LineCap {
	switch lc {
	case scene.CapRound:
		return gg.LineCapRound
	case scene.CapSquare:
		return gg.LineCapSquare
	default:
		return gg.LineCapButt
	}
}

func interpOf(in render.Interpolation) gg.InterpolationMode {
	switch in {
	case render.InterpBilinear:
		return gg.InterpBilinear
	case render.InterpBicubic:
		return gg.InterpBicubic
	default:
		return gg.InterpNearest
	}
}
