package sink

import (
	"bytes"

	"github.com/fogleman/gg"

	"github.com/matzehuels/stitchgrid/pkg/fonts"
	"github.com/matzehuels/stitchgrid/pkg/pattern"
)

// Color key layout.
const (
	KeyMaxEntries = 100
	KeyColumnLen  = 20

	keyItemWidth  = 50
	keyItemHeight = 30
	keyPadX       = 20
	keyPadY       = 10
	keyFontSize   = 11
)

// KeyLayout returns the column and row of key entry i.
func KeyLayout(i int) (col, row int) {
	return i / KeyColumnLen, i % KeyColumnLen
}

// RenderKey renders the color key as a PNG of labelled swatches. Entries
// beyond [KeyMaxEntries] are omitted.
func RenderKey(key pattern.ColorKey) ([]byte, error) {
	if len(key) > KeyMaxEntries {
		key = key[:KeyMaxEntries]
	}

	cols := max(1, (len(key)+KeyColumnLen-1)/KeyColumnLen)
	rows := min(max(1, len(key)), KeyColumnLen)
	dc := gg.NewContext(2*keyPadX+cols*keyItemWidth, 2*keyPadY+rows*keyItemHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	face, err := fonts.Face(keyFontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()
	dc.SetFontFace(face)

	for i, e := range key {
		col, row := KeyLayout(i)
		x := float64(keyPadX + col*keyItemWidth)
		y := float64(keyPadY + row*keyItemHeight)

		dc.SetColor(e.Thread.RGB)
		dc.DrawRectangle(x, y, keyItemWidth, keyItemHeight)
		dc.Fill()

		dc.SetColor(e.Thread.RGB.TextColor())
		dc.DrawStringAnchored(e.Thread.ID, x+keyItemWidth/2, y+keyItemHeight/2, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
