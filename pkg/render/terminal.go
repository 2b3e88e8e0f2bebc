package render

import (
	"image/color"
	"strings"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the framebuffer onto scr, two pixel rows per terminal row:
// the upper half block takes the top pixel as foreground and the bottom
// pixel as background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		if topY >= fb.Height {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: toColor(fb.GetPixel(x, topY)),
					Bg: toColor(fb.GetPixel(x, topY+1)),
				},
			})
		}
	}
}

// Rows returns the number of terminal rows the framebuffer occupies.
func (fb *Framebuffer) Rows() int { return (fb.Height + 1) / 2 }

// Render returns the framebuffer as ANSI-styled text, one line per two
// pixel rows, with trailing blanks trimmed.
func (fb *Framebuffer) Render() string {
	scr := uv.NewScreenBuffer(fb.Width, fb.Rows())
	fb.Draw(scr, uv.Rect(0, 0, fb.Width, fb.Rows()))
	return strings.TrimRight(scr.Render(), "\n")
}

// toColor maps a transparent pixel to the terminal default colour.
func toColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
