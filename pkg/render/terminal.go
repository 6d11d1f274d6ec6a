package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/facet/pkg/scene"
)

// Draw renders the buffer into terminal cells. Each cell shows two
// vertically stacked pixels using ▀ with fg=top and bg=bottom, so a
// buffer of w×2h pixels fills a w×h cell area. Buffers of any other
// size are rescaled first using the buffer's interpolation mode.
func (r *PixelBuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	cellW, cellH := area.Dx(), area.Dy()
	if cellW <= 0 || cellH <= 0 {
		return
	}

	src := r
	if r.Width != cellW || r.Height != cellH*2 {
		src = r.Scale(cellW, cellH*2)
	}

	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X

			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(src.At(x, topY)),
					Bg: cellColor(src.At(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// cellColor converts a scene colour for a terminal cell. Fully
// transparent pixels map to nil so the terminal background shows
// through.
func cellColor(c scene.Color) color.Color {
	n := c.NRGBA()
	if n.A == 0 {
		return nil
	}
	return n
}
