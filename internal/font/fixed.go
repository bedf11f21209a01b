package font

import (
	"golang.org/x/text/encoding/charmap"

	"PixelCtl/internal/color"
)

// Fixed renders fonts where each glyph is W columns of H bits. Column c of character code
// n is Table[n*W+c] and bit y of that byte is row y.
type Fixed struct {
	Table []byte
	W, H  int

	// CodePage maps runes to table indices. Runes it cannot encode are unknown.
	CodePage *charmap.Charmap
}

func NewFixed(table []byte, w, h int) *Fixed {
	return &Fixed{
		Table:    table,
		W:        w,
		H:        h,
		CodePage: charmap.CodePage437,
	}
}

// codes returns the table indices for text, dropping characters the font does not have.
func (f *Fixed) codes(text string) []int {
	out := make([]int, 0, len(text))
	for _, r := range text {
		b, ok := f.CodePage.EncodeRune(r)
		if !ok {
			continue
		}

		code := int(b)
		if (code+1)*f.W > len(f.Table) {
			continue
		}

		out = append(out, code)
	}

	return out
}

// MeasureWidth is n*W*size plus one size-wide gap between glyphs.
func (f *Fixed) MeasureWidth(text string, size int) int {
	size = normSize(size)
	n := len(f.codes(text))
	if n == 0 {
		return 0
	}

	return n*f.W*size + (n-1)*size
}

func (f *Fixed) Render(dst Plotter, text string, c color.RGB, x, y, size int) {
	size = normSize(size)

	for l, code := range f.codes(text) {
		cols := f.Table[code*f.W : (code+1)*f.W]
		shift := centerShift(cols)
		cellX := x + l*(f.W+1)*size

		for col, bits := range cols {
			for row := 0; row < f.H; row++ {
				if (bits>>uint(row))&1 == 0 {
					continue
				}

				fillBlock(dst, cellX+(col+shift)*size, y+row*size, size, c)
			}
		}
	}
}

// centerShift moves narrow glyphs towards the middle of their cell. The cell is W columns
// plus the gap column; when the rightmost lit column is one of the first three, the glyph
// moves right by half the empty columns to its right.
func centerShift(cols []byte) int {
	last := -1
	for i := len(cols) - 1; i >= 0; i-- {
		if cols[i] != 0 {
			last = i
			break
		}
	}

	if last < 0 || last > 2 {
		return 0
	}

	return (len(cols) - last) / 2
}
