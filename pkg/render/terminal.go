package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the framebuffer onto scr with upper half blocks: each cell
// shows two framebuffer rows, the top one as foreground and the bottom one as
// background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, topY+1)),
				},
			})
		}
	}
}

func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is the framebuffer pixel type.
type Color = color.RGBA

// Map palette.
var (
	ColorBackground = color.RGBA{12, 12, 16, 255}
	ColorLeaf       = color.RGBA{48, 48, 56, 255}
	ColorActiveZone = color.RGBA{40, 72, 110, 255}
	ColorVisited    = color.RGBA{46, 160, 67, 255}
	ColorNested     = color.RGBA{150, 90, 200, 255}
	ColorPortal     = color.RGBA{255, 214, 0, 255}
	ColorMirror     = color.RGBA{0, 200, 255, 255}
	ColorEye        = color.RGBA{255, 40, 40, 255}
)
