package sink

import (
	"bytes"

	"github.com/fogleman/gg"

	"github.com/matzehuels/stitchgrid/pkg/fonts"
	"github.com/matzehuels/stitchgrid/pkg/pattern"
)

const (
	// DefaultChartCellSize is the chart cell size per stitch in pixels.
	DefaultChartCellSize = 64
	// DefaultChartFontSize is the thread-ID label size in pixels.
	DefaultChartFontSize = 18
)

// ChartOption configures thread-ID chart rendering.
type ChartOption func(*chartRenderer)

type chartRenderer struct {
	cell      int
	fontSize  float64
	gridLines bool
}

// WithChartCellSize sets the cell size per stitch.
func WithChartCellSize(n int) ChartOption {
	return func(r *chartRenderer) {
		if n > 0 {
			r.cell = n
		}
	}
}

// WithChartFontSize sets the label font size.
func WithChartFontSize(size float64) ChartOption {
	return func(r *chartRenderer) {
		if size > 0 {
			r.fontSize = size
		}
	}
}

// WithChartGridLines draws cell borders.
func WithChartGridLines() ChartOption {
	return func(r *chartRenderer) { r.gridLines = true }
}

// RenderChart renders the grid as a PNG chart with each cell labelled by its
// thread ID.
func RenderChart(g *pattern.Grid, opts ...ChartOption) ([]byte, error) {
	r := chartRenderer{cell: DefaultChartCellSize, fontSize: DefaultChartFontSize}
	for _, opt := range opts {
		opt(&r)
	}

	face, err := fonts.Face(r.fontSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	cell := float64(r.cell)
	dc := gg.NewContext(g.Width*r.cell, g.Height*r.cell)
	dc.SetFontFace(face)

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			t := g.At(x, y)
			left, top := float64(x)*cell, float64(y)*cell

			dc.SetColor(t.RGB)
			dc.DrawRectangle(left, top, cell, cell)
			dc.Fill()

			dc.SetColor(t.RGB.TextColor())
			dc.DrawStringAnchored(t.ID, left+cell/2, top+cell/2, 0.5, 0.5)
		}
	}

	if r.gridLines {
		drawGridLines(dc, g.Width, g.Height, cell)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawGridLines(dc *gg.Context, cols, rows int, cell float64) {
	w, h := float64(cols)*cell, float64(rows)*cell
	dc.SetRGBA(0, 0, 0, 0.35)
	for x := 0; x <= cols; x++ {
		dc.SetLineWidth(lineWidth(x))
		dc.DrawLine(float64(x)*cell, 0, float64(x)*cell, h)
		dc.Stroke()
	}
	for y := 0; y <= rows; y++ {
		dc.SetLineWidth(lineWidth(y))
		dc.DrawLine(0, float64(y)*cell, w, float64(y)*cell)
		dc.Stroke()
	}
}

// lineWidth is bold every ten stitches.
func lineWidth(i int) float64 {
	if i%10 == 0 {
		return 3
	}
	return 1
}
