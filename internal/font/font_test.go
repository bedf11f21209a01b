package font

import (
	"testing"

	"PixelCtl/internal/color"
)

type plot map[[2]int]color.RGB

func (p plot) SetPixel(x, y int, c color.RGB) {
	p[[2]int{x, y}] = c
}

func (p plot) lit(x, y int) bool {
	_, ok := p[[2]int{x, y}]
	return ok
}

func TestFixedMeasureWidth(t *testing.T) {
	f := ForID(Regular)

	tests := []struct {
		text string
		size int
		want int
	}{
		{"A", 1, 5},
		{"AB", 1, 11},
		{"AB", 2, 22},
		{"12:34", 1, 29},
		{"", 1, 0},
		{"", 3, 0},
		{"A€", 1, 5},
		{"€€", 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := f.MeasureWidth(tt.text, tt.size); got != tt.want {
				t.Errorf("MeasureWidth(%q, %d) = %v, want %v", tt.text, tt.size, got, tt.want)
			}
		})
	}
}

func TestFixedRenderA(t *testing.T) {
	p := plot{}
	red := color.RGB{R: 0xff}
	ForID(Regular).Render(p, "A", red, 0, 0, 1)

	// 0x7e 0x11 0x11 0x11 0x7e
	if len(p) != 18 {
		t.Fatalf("lit pixels = %v, want 18", len(p))
	}
	if p.lit(0, 0) || !p.lit(0, 1) || !p.lit(2, 0) || !p.lit(4, 6) {
		t.Errorf("unexpected glyph shape: %v", p)
	}
	if p[[2]int{0, 1}] != red {
		t.Errorf("pixel colour = %v, want %v", p[[2]int{0, 1}], red)
	}
}

func TestFixedRenderScalesAndSpaces(t *testing.T) {
	p := plot{}
	ForID(Regular).Render(p, "AA", color.White, 10, 3, 2)

	if len(p) != 2*18*4 {
		t.Fatalf("lit pixels = %v, want %v", len(p), 2*18*4)
	}
	// second glyph starts at x + 6*size
	if !p.lit(22, 5) || !p.lit(23, 6) {
		t.Errorf("expected second glyph column 0 row 1 at (22..23, 5..6)")
	}
	if p.lit(20, 5) || p.lit(21, 5) {
		t.Errorf("expected empty gap column between glyphs")
	}
}

func TestFixedCentersNarrowGlyphs(t *testing.T) {
	table := make([]byte, 128*5)
	copy(table['A'*5:], []byte{0x01, 0, 0, 0, 0})
	copy(table['B'*5:], []byte{0, 0, 0, 0, 0x01})
	f := NewFixed(table, 5, 8)

	p := plot{}
	f.Render(p, "A", color.White, 0, 0, 1)
	if !p.lit(2, 0) || len(p) != 1 {
		t.Errorf("left-hugging glyph not centred: %v", p)
	}

	p = plot{}
	f.Render(p, "B", color.White, 0, 0, 1)
	if !p.lit(4, 0) || len(p) != 1 {
		t.Errorf("right-hugging glyph moved: %v", p)
	}
}

func TestFixedCentersClockColon(t *testing.T) {
	p := plot{}
	ForID(Regular).Render(p, "12:34", color.White, 0, 0, 1)

	// ':' is the third glyph, its cell starts at 12. Columns 1 and 2 (0x36) land on 14 and 15.
	for _, y := range []int{1, 2, 4, 5} {
		if p.lit(13, y) || !p.lit(14, y) || !p.lit(15, y) || p.lit(16, y) {
			t.Errorf("colon row %v not shifted one column right", y)
		}
	}

	// Digits are wide enough to stay put: '1' is 0x00 0x42 0x7f 0x40 0x00.
	if !p.lit(1, 1) || !p.lit(2, 0) || p.lit(3, 0) {
		t.Errorf("'1' moved: %v", p)
	}
}

func TestFixedShiftedGlyphs(t *testing.T) {
	f := ForID(Regular).(*Fixed)

	var shifted []rune
	for r := rune(0x20); r < 0x7f; r++ {
		code := int(r)
		if centerShift(f.Table[code*f.W:(code+1)*f.W]) != 0 {
			shifted = append(shifted, r)
		}
	}

	if string(shifted) != "!',.:;|" {
		t.Errorf("shifted glyphs = %q, want %q", string(shifted), "!',.:;|")
	}
}

func TestCenterShift(t *testing.T) {
	tests := []struct {
		name string
		cols []byte
		want int
	}{
		{"empty", []byte{0, 0, 0, 0, 0}, 0},
		{"full", []byte{1, 1, 1, 1, 1}, 0},
		{"one", []byte{0x00, 0x42, 0x7f, 0x40, 0x00}, 0},
		{"left", []byte{1, 1, 0, 0, 0}, 2},
		{"leftmost", []byte{1, 0, 0, 0, 0}, 2},
		{"colon", []byte{0x00, 0x36, 0x36, 0x00, 0x00}, 1},
		{"bar", []byte{0x00, 0x00, 0x7f, 0x00, 0x00}, 1},
		{"third", []byte{0, 0, 0, 1, 0}, 0},
		{"right", []byte{0, 0, 0, 1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := centerShift(tt.cols); got != tt.want {
				t.Errorf("centerShift(%v) = %v, want %v", tt.cols, got, tt.want)
			}
		})
	}
}

func TestGFXMetrics(t *testing.T) {
	f := pico
	if f.Baseline() != 5 {
		t.Errorf("Baseline() = %v, want 5", f.Baseline())
	}
	if f.MaxHeight() != 7 {
		t.Errorf("MaxHeight() = %v, want 7", f.MaxHeight())
	}
}

func TestGFXMeasureWidth(t *testing.T) {
	f := ForID(Pico)

	tests := []struct {
		text string
		size int
		want int
	}{
		{"A", 1, 3},
		{"AB", 1, 7},
		{"AB", 2, 14},
		{"i", 1, 1},
		{"A`B", 1, 7},
		{"`", 1, 0},
		{"", 1, 0},
		{"ä", 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := f.MeasureWidth(tt.text, tt.size); got != tt.want {
				t.Errorf("MeasureWidth(%q, %d) = %v, want %v", tt.text, tt.size, got, tt.want)
			}
		})
	}
}

func TestGFXRunSkipsPlaceholders(t *testing.T) {
	f := pico

	under := int('_' - f.First)
	if got := len(f.run(under)); got != 1 {
		t.Errorf("len(run('_')) = %v, want 1", got)
	}

	last := int('}' - f.First)
	if got := len(f.run(last)); got != 2 {
		t.Errorf("len(run('}')) = %v, want 2", got)
	}
}

func TestGFXDisabled(t *testing.T) {
	if !(GlyphEntry{}).Disabled() {
		t.Error("zero entry should be disabled")
	}
	if (GlyphEntry{Advance: 2}).Disabled() {
		t.Error("space-like entry should not be disabled")
	}

	p := plot{}
	ForID(Pico).Render(p, "~`", color.White, 0, 0, 1)
	if len(p) != 0 {
		t.Errorf("disabled glyphs drew %v pixels", len(p))
	}
}

func TestGFXRenderA(t *testing.T) {
	p := plot{}
	ForID(Pico).Render(p, "A", color.White, 0, 0, 1)

	// .#. / #.# / ### / #.# / #.#
	want := [][2]int{{1, 0}, {0, 1}, {2, 1}, {0, 2}, {1, 2}, {2, 2}, {0, 3}, {2, 3}, {0, 4}, {2, 4}}
	if len(p) != len(want) {
		t.Fatalf("lit pixels = %v, want %v", len(p), len(want))
	}
	for _, w := range want {
		if !p.lit(w[0], w[1]) {
			t.Errorf("expected (%v, %v) lit", w[0], w[1])
		}
	}
}

func TestGFXRenderLayout(t *testing.T) {
	p := plot{}
	ForID(Pico).Render(p, "Ag", color.White, 2, 1, 1)

	// 'g' starts one row lower than capitals and four columns to the right.
	if !p.lit(2+4+1, 1+1) {
		t.Errorf("expected top of g at (7, 2): %v", p)
	}
	if p.lit(2+4+1, 1) {
		t.Errorf("g should not reach the cap line")
	}
}

func TestGFXClipsToAdvance(t *testing.T) {
	// Four pixels wide, starting one column left of the cursor, inside a two column box.
	f := NewGFX([]byte{0xf0}, []GlyphEntry{{Width: 4, Height: 1, Advance: 2, XOffset: -1, YOffset: -1}}, 'A')

	p := plot{}
	f.Render(p, "A", color.White, 0, 0, 1)

	if len(p) != 2 || !p.lit(0, 0) || !p.lit(1, 0) {
		t.Errorf("lit pixels = %v, want (0, 0) and (1, 0)", p)
	}
}

func TestForIDFallback(t *testing.T) {
	if ForID(ID(42)) != ForID(Regular) {
		t.Error("unknown font id should fall back to regular")
	}
	if ID(42).String() != "unknown" || Pico.String() != "pico" {
		t.Error("unexpected ID names")
	}
}
