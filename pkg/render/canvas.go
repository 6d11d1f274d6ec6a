package render

import (
	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/scene"
)

// Canvas is the drawing-surface sink the vector renderer emits into.
// Implementations receive primitives in back-to-front paint order.
// Tags are opaque strings callers can use for hit-testing or linking;
// empty means untagged. Sinks without a tag concept drop them.
type Canvas interface {
	FillPolygon(pts []math3d.Vec2, col scene.Color, tag string)
	FillCircle(center math3d.Vec2, r float64, col scene.Color, tag string)
	StrokeLine(a, b math3d.Vec2, col scene.Color, width float64, lineCap scene.LineCap, dash scene.Dash, tag string)
	DrawImage(img *PixelBuffer, x, y, w, h float64, tag string)
}

// OpKind identifies a recorded canvas operation.
type OpKind int

const (
	OpFillPolygon OpKind = iota
	OpFillCircle
	OpStrokeLine
	OpDrawImage
)

// Op is one recorded canvas call. Only the fields relevant to its
// kind are set.
type Op struct {
	Kind   OpKind
	Points []math3d.Vec2 // polygon vertices, or stroke endpoints a/b
	Center math3d.Vec2
	Radius float64
	Color  scene.Color
	Width  float64
	Cap    scene.LineCap
	Dash   scene.Dash
	Image  *PixelBuffer
	X      float64
	Y      float64
	W      float64
	H      float64
	Tag    string
}

// Drawing is a Canvas that records every operation for later replay.
// It is what tests and tag-based consumers inspect, and it can be
// replayed into any other sink.
type Drawing struct {
	ops []Op
}

// NewDrawing creates an empty recording.
func NewDrawing() *Drawing {
	return &Drawing{}
}

// FillPolygon records a filled polygon.
func (d *Drawing) FillPolygon(pts []math3d.Vec2, col scene.Color, tag string) {
	cp := make([]math3d.Vec2, len(pts))
	copy(cp, pts)
	d.ops = append(d.ops, Op{Kind: OpFillPolygon, Points: cp, Color: col, Tag: tag})
}

// FillCircle records a filled circle.
func (d *Drawing) FillCircle(center math3d.Vec2, r float64, col scene.Color, tag string) {
	d.ops = append(d.ops, Op{Kind: OpFillCircle, Center: center, Radius: r, Color: col, Tag: tag})
}

// StrokeLine records a stroked segment.
func (d *Drawing) StrokeLine(a, b math3d.Vec2, col scene.Color, width float64, lineCap scene.LineCap, dash scene.Dash, tag string) {
	d.ops = append(d.ops, Op{
		Kind:   OpStrokeLine,
		Points: []math3d.Vec2{a, b},
		Color:  col,
		Width:  width,
		Cap:    lineCap,
		Dash:   dash,
		Tag:    tag,
	})
}

// DrawImage records a raster blit.
func (d *Drawing) DrawImage(img *PixelBuffer, x, y, w, h float64, tag string) {
	d.ops = append(d.ops, Op{Kind: OpDrawImage, Image: img, X: x, Y: y, W: w, H: h, Tag: tag})
}

// Ops returns the recorded operations in paint order.
func (d *Drawing) Ops() []Op {
	return d.ops
}

// Reset discards all recorded operations.
func (d *Drawing) Reset() {
	d.ops = d.ops[:0]
}

// Replay issues every recorded operation against c in order.
func (d *Drawing) Replay(c Canvas) {
	for _, op := range d.ops {
		switch op.Kind {
		case OpFillPolygon:
			c.FillPolygon(op.Points, op.Color, op.Tag)
		case OpFillCircle:
			c.FillCircle(op.Center, op.Radius, op.Color, op.Tag)
		case OpStrokeLine:
			c.StrokeLine(op.Points[0], op.Points[1], op.Color, op.Width, op.Cap, op.Dash, op.Tag)
		case OpDrawImage:
			c.DrawImage(op.Image, op.X, op.Y, op.W, op.H, op.Tag)
		}
	}
}
