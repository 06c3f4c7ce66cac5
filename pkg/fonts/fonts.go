// Package fonts provides the embedded font used to label chart cells.
//
// Charts are drawn with Go Mono Bold from golang.org/x/image/font/gofont so
// that thread IDs render identically on every machine without a system font
// lookup.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
)

// FontFamily is the CSS font-family name for the chart font.
const FontFamily = "Go Mono"

// FallbackFontFamily lists CSS fallbacks for viewers without the font.
const FallbackFontFamily = `'Go Mono', 'DejaVu Sans Mono', Menlo, Consolas, monospace`

// Parsed font (computed once on first access).
var (
	monoFont     *truetype.Font
	monoFontErr  error
	monoFontOnce sync.Once
)

// Mono returns the parsed chart font.
func Mono() (*truetype.Font, error) {
	monoFontOnce.Do(func() {
		monoFont, monoFontErr = truetype.Parse(gomonobold.TTF)
	})
	return monoFont, monoFontErr
}

// Face returns a face of the chart font at the given point size (72 DPI, so
// points equal pixels).
func Face(size float64) (font.Face, error) {
	f, err := Mono()
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}
