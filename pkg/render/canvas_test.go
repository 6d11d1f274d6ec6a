package render

import (
	"reflect"
	"testing"

	"github.com/taigrr/facet/pkg/math3d"
	"github.com/taigrr/facet/pkg/scene"
)

func TestDrawingRecordsOps(t *testing.T) {
	d := NewDrawing()
	img := NewPixelBuffer(2, 2)

	d.FillPolygon([]math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, red, "poly")
	d.FillCircle(math3d.V2(3, 4), 1.5, blue, "dot")
	d.StrokeLine(math3d.V2(0, 0), math3d.V2(5, 5), red, 2, scene.CapRound, scene.Dash{On: 1, Off: 1}, "seg")
	d.DrawImage(img, 1, 2, 3, 4, "blit")

	ops := d.Ops()
	if len(ops) != 4 {
		t.Fatalf("recorded %d ops, want 4", len(ops))
	}

	wantKinds := []OpKind{OpFillPolygon, OpFillCircle, OpStrokeLine, OpDrawImage}
	for i, k := range wantKinds {
		if ops[i].Kind != k {
			t.Errorf("op %d kind = %v, want %v", i, ops[i].Kind, k)
		}
	}

	if got := ops[1]; got.Center != math3d.V2(3, 4) || got.Radius != 1.5 || got.Tag != "dot" {
		t.Errorf("circle op = %+v", got)
	}
	if got := ops[2]; got.Points[0] != math3d.V2(0, 0) || got.Points[1] != math3d.V2(5, 5) ||
		got.Width != 2 || got.Cap != scene.CapRound || got.Tag != "seg" {
		t.Errorf("stroke op = %+v", got)
	}
	if got := ops[3]; got.Image != img || got.X != 1 || got.Y != 2 || got.W != 3 || got.H != 4 {
		t.Errorf("image op = %+v", got)
	}
}

func TestDrawingCopiesPolygonPoints(t *testing.T) {
	pts := []math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}

	d := NewDrawing()
	d.FillPolygon(pts, red, "")

	pts[0] = math3d.V2(99, 99)

	if got := d.Ops()[0].Points[0]; got != math3d.V2(0, 0) {
		t.Errorf("recorded vertex = %v, want the value at record time", got)
	}
}

func TestDrawingReset(t *testing.T) {
	d := NewDrawing()
	d.FillCircle(math3d.V2(0, 0), 1, red, "")
	d.Reset()

	if n := len(d.Ops()); n != 0 {
		t.Fatalf("ops after reset = %d, want 0", n)
	}

	d.FillCircle(math3d.V2(1, 1), 2, blue, "again")
	if got := d.Ops(); len(got) != 1 || got[0].Tag != "again" {
		t.Errorf("ops after re-record = %+v", got)
	}
}

func TestDrawingReplay(t *testing.T) {
	src := NewDrawing()
	src.FillPolygon([]math3d.Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 2}}, red, "poly")
	src.FillCircle(math3d.V2(-1, 3), 0.5, blue, "dot")
	src.StrokeLine(math3d.V2(0, 1), math3d.V2(1, 0), red, 1, scene.CapSquare, scene.Dash{On: 2, Off: 1, Phase: 0.5}, "seg")
	src.DrawImage(NewPixelBuffer(1, 1), 0, 0, 4, 4, "blit")

	dst := NewDrawing()
	src.Replay(dst)

	if !reflect.DeepEqual(src.Ops(), dst.Ops()) {
		t.Errorf("replayed ops differ:\ngot  %+v\nwant %+v", dst.Ops(), src.Ops())
	}
}
