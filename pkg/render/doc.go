// Package render turns a finished pattern into output artifacts.
//
// # Overview
//
// Rendering is the last stage of a generation. It only reads the immutable
// [pattern.Grid] and [pattern.ColorKey], so artifacts for several formats can
// be encoded concurrently. This package provides:
//
//   - Generic format conversion (SVG to PDF/PNG via rsvg-convert)
//   - Pattern sinks (in the [sink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg):
//
//	svg := sink.RenderSVG(grid, sink.WithSVGLabels())
//	pdf, err := render.ToPDF(ctx, svg)
//
// # Sinks
//
// The [sink] subpackage renders a grid as:
//
//   - Pixel art PNG, one square block per stitch
//   - Thread-ID chart PNG, each stitch a cell with its thread ID centred
//   - SVG chart with grid lines and an optional legend table
//   - PDF (the SVG chart, converted)
//   - Color key PNG, swatches in columns of 20
//   - JSON export of the label grid, threads and key
//
// [pattern.Grid]: github.com/matzehuels/stitchgrid/pkg/pattern.Grid
// [pattern.ColorKey]: github.com/matzehuels/stitchgrid/pkg/pattern.ColorKey
// [sink]: github.com/matzehuels/stitchgrid/pkg/render/sink
package render
