// Package rgb defines the 8-bit RGB triple shared by the catalog, the
// quantizer and the mapper, together with the color math they need.
//
// Distances are computed on the raw 0–255 channels. Hue is the standard
// HSV hue of the 0–1 normalized channels, in degrees [0, 360).
package rgb

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an opaque 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// New builds a Color from channel values, clamping each to 0–255.
func New(r, g, b int) Color {
	return Color{R: clamp(r), G: clamp(g), B: clamp(b)}
}

// FromColor converts any image/color value to RGB, compositing
// translucent pixels onto white.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	if a == 0xffff {
		return Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
	}
	// RGBA() is alpha-premultiplied; add the white background's share.
	bg := 0xffff - a
	return Color{
		R: uint8((r + bg) >> 8),
		G: uint8((g + bg) >> 8),
		B: uint8((b + bg) >> 8),
	}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

// NRGBA returns the opaque image/color representation.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Hex returns the lowercase #rrggbb form.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String formats the triple as "(r, g, b)".
func (c Color) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// Distance returns the Euclidean distance between a and b in RGB space.
func Distance(a, b Color) float64 {
	return math.Sqrt(float64(DistanceSq(a, b)))
}

// DistanceSq returns the squared Euclidean distance; it is exact and
// preserves ordering, so comparisons never need the square root.
func DistanceSq(a, b Color) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// DeltaE returns the CIEDE2000 perceptual difference between a and b.
func DeltaE(a, b Color) float64 {
	return a.colorful().DistanceCIEDE2000(b.colorful())
}

// Hue returns the HSV hue in degrees [0, 360). Achromatic colors have hue 0.
func (c Color) Hue() float64 {
	h, _, _ := c.colorful().Hsv()
	return h
}

// IsDark reports whether every channel is below the midpoint. Text drawn
// over a dark color uses white, otherwise black.
func (c Color) IsDark() bool {
	return c.R < 128 && c.G < 128 && c.B < 128
}

// TextColor returns the label color readable on top of c.
func (c Color) TextColor() Color {
	if c.IsDark() {
		return Color{255, 255, 255}
	}
	return Color{}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
