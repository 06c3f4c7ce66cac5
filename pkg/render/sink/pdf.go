package sink

import (
	"context"

	"github.com/matzehuels/stitchgrid/pkg/pattern"
	"github.com/matzehuels/stitchgrid/pkg/render"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	svgOpts []SVGOption
}

// WithPDFSVGOptions passes options through to the underlying SVG renderer.
func WithPDFSVGOptions(opts ...SVGOption) PDFOption {
	return func(r *pdfRenderer) { r.svgOpts = opts }
}

// RenderPDF renders the grid as PDF via SVG conversion.
// Without options the chart is labelled and carries the color key.
func RenderPDF(ctx context.Context, g *pattern.Grid, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{svgOpts: []SVGOption{WithSVGLabels(), WithSVGKey()}}
	for _, opt := range opts {
		opt(&r)
	}
	return render.ToPDF(ctx, RenderSVG(g, r.svgOpts...))
}
