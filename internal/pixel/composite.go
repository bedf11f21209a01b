package pixel

import (
	"PixelCtl/internal/color"
)

// Mode is how the text layer is combined with the background on the device.
type Mode int

const (
	Stack Mode = iota
	Blend
	Silhouette
)

// NormalizeMode maps anything outside the known modes to Stack.
func NormalizeMode(m int) Mode {
	if m < int(Stack) || m > int(Silhouette) {
		return Stack
	}

	return Mode(m)
}

// Next cycles Stack -> Blend -> Silhouette -> Stack.
func (m Mode) Next() Mode {
	return NormalizeMode((int(NormalizeMode(int(m))) + 1) % 3)
}

func (m Mode) String() string {
	switch m {
	case Stack:
		return "stack"
	case Blend:
		return "blend"
	case Silhouette:
		return "silhouette"
	default:
		return "unknown"
	}
}

// Composite builds the image the device shows for bg and text. Black text pixels are
// transparent in every mode.
func Composite(bg, text *Buffer, mode Mode) *Buffer {
	out := New(bg.Width(), bg.Height())

	bgPixels := bg.ReadAll()
	for _, p := range bgPixels {
		t, _ := text.ReadPixel(p.X, p.Y)

		c := p.C
		switch NormalizeMode(int(mode)) {
		case Stack:
			if !t.IsBlack() {
				c = t
			}
		case Blend:
			if !t.IsBlack() {
				c = color.Blend(p.C, t, 0.5)
			}
		case Silhouette:
			if t.IsBlack() {
				c = color.Black
			}
		}

		out.cells[p.Y*out.width+p.X] = c
	}

	return out
}
