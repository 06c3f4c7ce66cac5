// Package sink provides output format renderers for stitch patterns.
//
// # Overview
//
// A "sink" transforms a finished [pattern.Grid] (or its [pattern.ColorKey])
// into a final output format. Every renderer takes functional options and
// returns encoded bytes:
//
//	png, err := sink.RenderPixelArt(grid)
//	ids, err := sink.RenderChart(grid, sink.WithChartFontSize(18))
//	key, err := sink.RenderKey(grid.ColorKey())
//	svg := sink.RenderSVG(grid, sink.WithSVGLabels(), sink.WithSVGKey())
//	pdf, err := sink.RenderPDF(ctx, grid)
//	data, err := sink.RenderJSON(grid, sink.WithJSONID(id))
//
// # Raster Output
//
// [RenderPixelArt] draws each stitch as a solid block ([DefaultPixelScale]
// pixels square). [RenderChart] draws each stitch as a larger cell labelled
// with its thread ID; the label is white on dark cells (all channels below
// 128) and black otherwise. [RenderKey] draws the color key: swatches
// labelled with thread IDs, filled top to bottom in columns of
// [KeyColumnLen], at most [KeyMaxEntries] entries.
//
// # Vector Output
//
// [RenderSVG] produces a chart with thin grid lines every stitch and bold
// lines every ten, the usual cross-stitch convention. [RenderPDF] converts it
// through [render.ToPDF] and requires librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [pattern.Grid]: github.com/matzehuels/stitchgrid/pkg/pattern.Grid
// [pattern.ColorKey]: github.com/matzehuels/stitchgrid/pkg/pattern.ColorKey
// [render.ToPDF]: github.com/matzehuels/stitchgrid/pkg/render.ToPDF
package sink
