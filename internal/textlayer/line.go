// Package textlayer turns the configured text lines into the text overlay: it resolves clock
// directives, lays lines out on the two-row grid and keeps clock text fresh.
package textlayer

import (
	"math"

	"PixelCtl/internal/color"
	"PixelCtl/internal/font"
)

type Align int

const (
	Left Align = iota
	Center
	Right
)

const (
	MaxLines  = 5
	MinOffset = -20
	MaxOffset = 20
	MinSize   = 1
	MaxSize   = 4
)

// Row positions of the two layout lines.
const (
	firstLineY  = 5
	secondLineY = 23
)

// Line is one piece of text on the matrix. Text may contain strftime directives.
type Line struct {
	Text    string    `json:"text" yaml:"text"`
	Size    int       `json:"size" yaml:"size"`
	Align   Align     `json:"align" yaml:"align"`
	OffsetX int       `json:"offsetX" yaml:"offsetX"`
	OffsetY int       `json:"offsetY" yaml:"offsetY"`
	Color   color.RGB `json:"color" yaml:"color"`
	Font    font.ID   `json:"font" yaml:"font"`
	Line    int       `json:"line" yaml:"line"`
}

// Defaults are the lines a fresh panel starts with: a large clock and the date below it.
func Defaults() []Line {
	return []Line{
		{Text: "%H:%M", Size: 2, Align: Center, OffsetX: -1, OffsetY: -5, Color: color.White, Font: font.Regular, Line: 1},
		{Text: "%d.%b", Size: 1, Align: Center, OffsetX: 2, OffsetY: -3, Color: color.White, Font: font.Regular, Line: 2},
	}
}

func ClampOffset(v int) int {
	return clamp(v, MinOffset, MaxOffset)
}

// Clamp forces every field of l into the range the device accepts.
func (l Line) Clamp() Line {
	l.Size = clamp(l.Size, MinSize, MaxSize)
	l.Align = Align(clamp(int(l.Align), int(Left), int(Right)))
	l.OffsetX = ClampOffset(l.OffsetX)
	l.OffsetY = ClampOffset(l.OffsetY)
	if l.Line != 2 {
		l.Line = 1
	}
	if l.Font != font.Pico {
		l.Font = font.Regular
	}

	return l
}

// ClampAll clamps every line and drops anything past MaxLines.
func ClampAll(lines []Line) []Line {
	if len(lines) > MaxLines {
		lines = lines[:MaxLines]
	}

	out := make([]Line, len(lines))
	for i, l := range lines {
		out[i] = l.Clamp()
	}

	return out
}

// Layout returns the top left corner for text already resolved from l on a grid width
// pixels wide.
func Layout(l Line, text string, width int) (x, y int) {
	w := font.ForID(l.Font).MeasureWidth(text, l.Size)

	top := float64(firstLineY)
	if l.Line == 2 {
		top = secondLineY
	}

	var left float64
	switch l.Align {
	case Center:
		left = float64(width-w) / 2
	case Right:
		left = float64(width - w)
	}

	return roundHalfUp(left + float64(l.OffsetX)), roundHalfUp(top + float64(l.OffsetY))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
