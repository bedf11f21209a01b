// Package pixel holds the grids that mirror the matrix: one for the drawn background and
// one for the text overlay.
package pixel

import (
	"encoding/json"
	"fmt"
	"sync"

	"PixelCtl/internal/color"
)

// Pixel is one coordinate on the matrix and its colour. On the wire it looks like
// {"p": [x, y], "c": "#rrggbb"}.
type Pixel struct {
	X, Y int
	C    color.RGB
}

type wirePixel struct {
	P [2]int    `json:"p"`
	C color.RGB `json:"c"`
}

func (p Pixel) MarshalJSON() ([]byte, error) {
	return json.Marshal(wirePixel{P: [2]int{p.X, p.Y}, C: p.C})
}

func (p *Pixel) UnmarshalJSON(b []byte) error {
	var w wirePixel
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*p = Pixel{X: w.P[0], Y: w.P[1], C: w.C}
	return nil
}

// Batch is the set of pixels produced by one gesture. Order carries no meaning for the
// device, but batches are sent in the order they were made.
type Batch []Pixel

// Buffer is a fixed size grid of colours. The zero colour is black, which doubles as
// transparent on the text layer.
type Buffer struct {
	width, height int

	mu    sync.RWMutex
	cells []color.RGB
}

func New(width, height int) *Buffer {
	if width < 1 || height < 1 {
		panic(fmt.Sprintf("pixel: invalid buffer size %dx%d", width, height))
	}

	return &Buffer{
		width:  width,
		height: height,
		cells:  make([]color.RGB, width*height),
	}
}

func (b *Buffer) Width() int  { return b.width }
func (b *Buffer) Height() int { return b.height }

func (b *Buffer) InBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

func (b *Buffer) Clear() {
	b.Fill(color.Black)
}

func (b *Buffer) Fill(c color.RGB) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.cells {
		b.cells[i] = c
	}
}

// SetPixel ignores coordinates outside the grid.
func (b *Buffer) SetPixel(x, y int, c color.RGB) {
	if !b.InBounds(x, y) {
		return
	}

	b.mu.Lock()
	b.cells[y*b.width+x] = c
	b.mu.Unlock()
}

func (b *Buffer) SetPixels(batch Batch) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range batch {
		if !b.InBounds(p.X, p.Y) {
			continue
		}

		b.cells[p.Y*b.width+p.X] = p.C
	}
}

func (b *Buffer) ReadPixel(x, y int) (color.RGB, bool) {
	if !b.InBounds(x, y) {
		return color.Black, false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cells[y*b.width+x], true
}

// ReadAll returns every pixel in row-major order.
func (b *Buffer) ReadAll() Batch {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(Batch, 0, len(b.cells))
	for i, c := range b.cells {
		out = append(out, Pixel{X: i % b.width, Y: i / b.width, C: c})
	}

	return out
}

// Lit returns the non-black pixels in row-major order.
func (b *Buffer) Lit() Batch {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out Batch
	for i, c := range b.cells {
		if c.IsBlack() {
			continue
		}

		out = append(out, Pixel{X: i % b.width, Y: i / b.width, C: c})
	}

	return out
}

// Filter drops pixels that fall outside a width x height grid.
func (batch Batch) Filter(width, height int) Batch {
	out := make(Batch, 0, len(batch))
	for _, p := range batch {
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}

		out = append(out, p)
	}

	return out
}
