package font

import (
	"PixelCtl/internal/color"
)

// GlyphEntry describes one character of a GFX font. Offsets are relative to the cursor
// with y growing downwards from the baseline, so glyphs above the baseline have a negative
// YOffset.
type GlyphEntry struct {
	Index   int
	Width   int
	Height  int
	Advance int
	XOffset int
	YOffset int
}

// Disabled glyphs are placeholders for characters the font does not draw.
func (g GlyphEntry) Disabled() bool {
	return g.Width == 0 && g.Height == 0 && g.Advance == 0
}

// GFX renders variable width fonts. Glyph bitmaps are packed MSB first, row after row,
// with no padding between rows.
type GFX struct {
	Bitmaps []byte
	Glyphs  []GlyphEntry
	First   rune

	baseline  int
	maxHeight int
}

func NewGFX(bitmaps []byte, glyphs []GlyphEntry, first rune) *GFX {
	f := &GFX{
		Bitmaps: bitmaps,
		Glyphs:  glyphs,
		First:   first,
	}

	under := 0
	for _, g := range glyphs {
		inv := -g.YOffset
		if inv > f.baseline {
			f.baseline = inv
		}
		if low := inv + 1 - g.Height; low < under {
			under = low
		}
	}
	f.maxHeight = f.baseline + 1 - under

	return f
}

// Baseline is the distance in font pixels from the top of a line to its baseline.
func (f *GFX) Baseline() int {
	return f.baseline
}

func (f *GFX) MaxHeight() int {
	return f.maxHeight
}

func (f *GFX) glyph(r rune) (int, bool) {
	i := int(r - f.First)
	if r < f.First || i >= len(f.Glyphs) {
		return 0, false
	}
	if f.Glyphs[i].Disabled() {
		return 0, false
	}

	return i, true
}

// run returns the bitmap bytes of glyph i. A run ends where the next glyph with a non-zero
// index starts; placeholder entries in between carry index 0 and are skipped.
func (f *GFX) run(i int) []byte {
	start := f.Glyphs[i].Index
	end := len(f.Bitmaps)
	for j := i + 1; j < len(f.Glyphs); j++ {
		if f.Glyphs[j].Index != 0 {
			end = f.Glyphs[j].Index
			break
		}
	}

	if start > end || end > len(f.Bitmaps) {
		return nil
	}

	return f.Bitmaps[start:end]
}

func (f *GFX) MeasureWidth(text string, size int) int {
	size = normSize(size)

	w := 0
	n := 0
	for _, r := range text {
		i, ok := f.glyph(r)
		if !ok {
			continue
		}

		w += f.Glyphs[i].Width + 1
		n++
	}

	if n == 0 {
		return 0
	}

	return (w - 1) * size
}

func (f *GFX) Render(dst Plotter, text string, c color.RGB, x, y, size int) {
	size = normSize(size)

	cursor := 0
	for _, r := range text {
		i, ok := f.glyph(r)
		if !ok {
			continue
		}

		g := f.Glyphs[i]
		f.renderGlyph(dst, g, f.run(i), c, x, y, cursor, size)
		cursor += g.Width + 1
	}
}

func (f *GFX) renderGlyph(dst Plotter, g GlyphEntry, bits []byte, c color.RGB, x, y, cursor, size int) {
	left := cursor + g.XOffset
	top := f.baseline + g.YOffset

	for gy := 0; gy < g.Height; gy++ {
		for gx := 0; gx < g.Width; gx++ {
			// Only the advance box is painted.
			if rel := g.XOffset + gx; rel < 0 || rel >= g.Advance {
				continue
			}

			n := gy*g.Width + gx
			if n/8 >= len(bits) || bits[n/8]&(0x80>>uint(n%8)) == 0 {
				continue
			}

			fillBlock(dst, x+(left+gx)*size, y+(top+gy)*size, size, c)
		}
	}
}
