package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/stitchgrid/pkg/fonts"
	"github.com/matzehuels/stitchgrid/pkg/pattern"
)

// DefaultSVGCellSize is the SVG cell size per stitch in user units.
const DefaultSVGCellSize = 16

const (
	svgMargin    = 24
	svgKeyRow    = 20
	svgKeyHeader = 32
)

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	cell   float64
	labels bool
	key    bool
	title  string
}

func WithSVGCellSize(n float64) SVGOption { return func(r *svgRenderer) { r.cell = n } }
func WithSVGLabels() SVGOption            { return func(r *svgRenderer) { r.labels = true } }
func WithSVGKey() SVGOption               { return func(r *svgRenderer) { r.key = true } }
func WithSVGTitle(s string) SVGOption     { return func(r *svgRenderer) { r.title = s } }

// RenderSVG renders the grid as an SVG chart.
func RenderSVG(g *pattern.Grid, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var key pattern.ColorKey
	if r.key {
		key = g.ColorKey()
	}

	chartW := float64(g.Width) * r.cell
	chartH := float64(g.Height) * r.cell
	totalW := chartW + 2*svgMargin
	totalH := chartH + 2*svgMargin
	if r.key {
		totalH += svgKeyHeader + float64(len(key))*svgKeyRow
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		totalW, totalH, totalW, totalH)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}
	buf.WriteString(`  <rect width="100%" height="100%" fill="#ffffff"/>` + "\n")
	fmt.Fprintf(&buf, `  <g transform="translate(%d %d)">`+"\n", svgMargin, svgMargin)

	renderCells(&buf, g, r.cell)
	if r.labels {
		renderLabels(&buf, g, r.cell)
	}
	renderGridLines(&buf, g.Width, g.Height, r.cell)

	buf.WriteString("  </g>\n")

	if r.key {
		renderKeyTable(&buf, key, svgMargin, chartH+2*svgMargin)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{cell: DefaultSVGCellSize}
	for _, opt := range opts {
		opt(&r)
	}
	if r.cell <= 0 {
		r.cell = DefaultSVGCellSize
	}
	return r
}

func renderCells(buf *bytes.Buffer, g *pattern.Grid, cell float64) {
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			t := g.At(x, y)
			fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" data-thread="%s"/>`+"\n",
				float64(x)*cell, float64(y)*cell, cell, cell, t.Hex(), html.EscapeString(t.ID))
		}
	}
}

func renderLabels(buf *bytes.Buffer, g *pattern.Grid, cell float64) {
	size := cell * 0.3
	fmt.Fprintf(buf, `    <g font-family="%s" font-size="%.1f" text-anchor="middle" dominant-baseline="central">`+"\n",
		html.EscapeString(fonts.FallbackFontFamily), size)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			t := g.At(x, y)
			fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" fill="%s">%s</text>`+"\n",
				(float64(x)+0.5)*cell, (float64(y)+0.5)*cell, t.RGB.TextColor().Hex(), html.EscapeString(t.ID))
		}
	}
	buf.WriteString("    </g>\n")
}

func renderGridLines(buf *bytes.Buffer, cols, rows int, cell float64) {
	w, h := float64(cols)*cell, float64(rows)*cell
	buf.WriteString(`    <g stroke="#000000" stroke-opacity="0.35">` + "\n")
	for x := 0; x <= cols; x++ {
		fmt.Fprintf(buf, `      <line x1="%.1f" y1="0" x2="%.1f" y2="%.1f" stroke-width="%.1f"/>`+"\n",
			float64(x)*cell, float64(x)*cell, h, lineWidth(x)/2)
	}
	for y := 0; y <= rows; y++ {
		fmt.Fprintf(buf, `      <line x1="0" y1="%.1f" x2="%.1f" y2="%.1f" stroke-width="%.1f"/>`+"\n",
			float64(y)*cell, w, float64(y)*cell, lineWidth(y)/2)
	}
	buf.WriteString("    </g>\n")
}

func renderKeyTable(buf *bytes.Buffer, key pattern.ColorKey, x, y float64) {
	fmt.Fprintf(buf, `  <g font-family="%s" font-size="12" transform="translate(%.1f %.1f)">`+"\n",
		html.EscapeString(fonts.FallbackFontFamily), x, y)
	fmt.Fprintf(buf, `    <text x="0" y="16" font-weight="bold">Color key (%d threads)</text>`+"\n", len(key))
	for i, e := range key {
		top := float64(svgKeyHeader + i*svgKeyRow)
		fmt.Fprintf(buf, `    <rect x="0" y="%.1f" width="28" height="%d" fill="%s" stroke="#000000" stroke-width="0.5"/>`+"\n",
			top, svgKeyRow-4, e.Thread.Hex())
		fmt.Fprintf(buf, `    <text x="36" y="%.1f" dominant-baseline="central">%s  %s  ×%d</text>`+"\n",
			top+float64(svgKeyRow-4)/2, html.EscapeString(e.Thread.ID), html.EscapeString(e.Thread.Name), e.Stitches)
	}
	buf.WriteString("  </g>\n")
}
