package pixel

import (
	"fmt"
	"image"
	stdcolor "image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"PixelCtl/internal/color"
)

var gridColor = stdcolor.RGBA{0x33, 0x33, 0x33, 0xff}

// Preview draws b the way the editor shows it: every device pixel becomes a block of
// ratio-1 pixels inset by one, leaving grid lines in between.
func Preview(b *Buffer, ratio int) *image.RGBA {
	if ratio < 2 {
		ratio = 2
	}

	img := image.NewRGBA(image.Rect(0, 0, b.Width()*ratio+1, b.Height()*ratio+1))
	draw.Draw(img, img.Bounds(), image.NewUniform(gridColor), image.Point{}, draw.Src)

	for _, p := range b.ReadAll() {
		cell := image.Rect(
			p.X*ratio+1,
			p.Y*ratio+1,
			p.X*ratio+ratio,
			p.Y*ratio+ratio,
		)
		c := stdcolor.RGBA{p.C.R, p.C.G, p.C.B, 0xff}
		draw.Draw(img, cell, image.NewUniform(c), image.Point{}, draw.Src)
	}

	return img
}

func WritePNG(w io.Writer, b *Buffer, ratio int) error {
	return png.Encode(w, Preview(b, ratio))
}

// DecodeImage reads any of png, jpeg, gif, bmp or webp.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode image: %w", err)
	}

	return img, nil
}

// FromImage scales img onto a black width x height grid and samples it row by row.
func FromImage(img image.Image, width, height int) Batch {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(stdcolor.Black), image.Point{}, draw.Src)
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	out := make(Batch, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out = append(out, Pixel{X: x, Y: y, C: SampleRGBA(dst, x, y)})
		}
	}

	return out
}

// SampleRGBA reads one pixel of img as an editor colour, ignoring alpha.
func SampleRGBA(img *image.RGBA, x, y int) color.RGB {
	i := img.PixOffset(x, y)
	return color.RGB{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}
}
