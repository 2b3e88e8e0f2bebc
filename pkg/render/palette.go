package render

import (
	"hash/fnv"
	"image/color"
	"strings"
)

// RGB creates an opaque colour.
func RGB(r, g, b uint8) color.RGBA { return color.RGBA{r, g, b, 255} }

// Preview colours for cells that carry no brick.
var (
	ColorUnfilled = RGB(90, 90, 100)
	ColorEmpty    = color.RGBA{}
	ColorGrid     = RGB(30, 30, 40)
)

var named = map[string]color.RGBA{
	"red":       RGB(201, 26, 9),
	"blue":      RGB(0, 85, 191),
	"green":     RGB(35, 120, 65),
	"orange":    RGB(254, 138, 24),
	"purple":    RGB(129, 0, 123),
	"grey":      RGB(160, 165, 169),
	"gray":      RGB(160, 165, 169),
	"turquoise": RGB(0, 143, 155),
	"yellow":    RGB(242, 205, 55),
	"white":     RGB(244, 244, 244),
	"black":     RGB(27, 42, 52),
	"tan":       RGB(228, 205, 158),
}

// AttributeColor maps a brick attribute to a colour. Known colour names
// use brick-like shades; anything else gets a stable colour derived from
// its name.
func AttributeColor(attr string) color.RGBA {
	if c, ok := named[strings.ToLower(attr)]; ok {
		return c
	}
	h := fnv.New32a()
	h.Write([]byte(attr))
	v := h.Sum32()
	// Keep channels away from black so bricks stay visible on dark terminals.
	return RGB(64+uint8(v)%160, 64+uint8(v>>8)%160, 64+uint8(v>>16)%160)
}

// Shade scales the colour's channels by f in [0, 1].
func Shade(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{uint8(float64(c.R) * f), uint8(float64(c.G) * f), uint8(float64(c.B) * f), c.A}
}
