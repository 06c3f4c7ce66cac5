package sink

import (
	"bytes"
	"image"
	"image/png"

	"github.com/matzehuels/stitchgrid/pkg/pattern"
)

// DefaultPixelScale is the pixel art block size per stitch.
const DefaultPixelScale = 4

// PixelOption configures pixel art rendering.
type PixelOption func(*pixelRenderer)

type pixelRenderer struct {
	scale int
}

// WithPixelScale sets the block size per stitch.
func WithPixelScale(n int) PixelOption {
	return func(r *pixelRenderer) {
		if n > 0 {
			r.scale = n
		}
	}
}

// PixelArt draws the grid with each stitch as a scale x scale block.
func PixelArt(g *pattern.Grid, scale int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width*scale, g.Height*scale))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y).RGB
			for py := y * scale; py < (y+1)*scale; py++ {
				off := img.PixOffset(x*scale, py)
				for px := 0; px < scale; px++ {
					img.Pix[off+0] = c.R
					img.Pix[off+1] = c.G
					img.Pix[off+2] = c.B
					img.Pix[off+3] = 0xff
					off += 4
				}
			}
		}
	}
	return img
}

// RenderPixelArt renders the grid as a pixel art PNG.
func RenderPixelArt(g *pattern.Grid, opts ...PixelOption) ([]byte, error) {
	r := pixelRenderer{scale: DefaultPixelScale}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, PixelArt(g, r.scale)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
