// Package font rasterizes text onto a pixel target using bitmap fonts.
//
// Two strategies exist: Fixed, where every glyph is a W x H cell of column-packed bits, and
// GFX, the variable width layout used by Adafruit GFX fonts. Callers pick one through ForID
// and only ever see the Rasterizer interface.
package font

import (
	"PixelCtl/internal/color"
)

// Plotter is anything a glyph can be drawn onto. Implementations decide what to do with
// coordinates outside their bounds.
type Plotter interface {
	SetPixel(x, y int, c color.RGB)
}

type Rasterizer interface {
	// MeasureWidth returns the width in device pixels of text drawn at size.
	MeasureWidth(text string, size int) int
	// Render draws text with its top left corner at (x, y). It writes nothing but lit pixels.
	Render(dst Plotter, text string, c color.RGB, x, y, size int)
}

// ID selects a font on a text line. The values are part of the device protocol.
type ID int

const (
	Regular ID = iota
	Pico
)

func (id ID) String() string {
	switch id {
	case Regular:
		return "regular"
	case Pico:
		return "pico"
	default:
		return "unknown"
	}
}

var (
	classic = NewFixed(classic5x8[:], 5, 8)
	pico    = NewGFX(picoBitmaps, picoGlyphs, 0x20)
)

// ForID returns the rasterizer for id. Unknown ids get the regular font.
func ForID(id ID) Rasterizer {
	if id == Pico {
		return pico
	}

	return classic
}

// fillBlock expands one font sub-pixel into a size x size block of device pixels.
func fillBlock(dst Plotter, x, y, size int, c color.RGB) {
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			dst.SetPixel(x+dx, y+dy, c)
		}
	}
}

func normSize(size int) int {
	if size < 1 {
		return 1
	}

	return size
}
