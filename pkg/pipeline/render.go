package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
//
// Formats are encoded concurrently; they only read the finished generation.
func Render(ctx context.Context, gen *Generation, opts Options) (map[string][]byte, error) {
	if gen == nil || gen.Grid == nil {
		return nil, errors.New(errors.ErrCodeInternal, "render without a generation")
	}

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := RenderFormat(ctx, gen, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// RenderFormat encodes one artifact.
func RenderFormat(ctx context.Context, gen *Generation, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatPNG:
		return sink.RenderPixelArt(gen.Grid, sink.WithPixelScale(opts.PixelScale))
	case FormatIDs:
		return sink.RenderChart(gen.Grid, buildChartOptions(opts)...)
	case FormatSVG:
		return sink.RenderSVG(gen.Grid, buildSVGOptions(opts)...), nil
	case FormatPDF:
		return sink.RenderPDF(ctx, gen.Grid)
	case FormatKey:
		return sink.RenderKey(gen.Key)
	case FormatJSON:
		return sink.RenderJSON(gen.Grid,
			sink.WithJSONID(gen.ID),
			sink.WithJSONSource(opts.ImageName),
			sink.WithJSONOptions(opts.Params()))
	}
	return nil, ValidateFormat(format)
}

// buildChartOptions builds thread-ID chart options.
func buildChartOptions(opts Options) []sink.ChartOption {
	chartOpts := []sink.ChartOption{sink.WithChartCellSize(opts.CellSize)}
	if opts.GridLines {
		chartOpts = append(chartOpts, sink.WithChartGridLines())
	}
	return chartOpts
}

// buildSVGOptions builds SVG rendering options. The standalone SVG always
// carries the color key.
func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithSVGKey()}
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithSVGLabels())
	}
	if opts.ImageName != "" {
		svgOpts = append(svgOpts, sink.WithSVGTitle(opts.ImageName))
	}
	return svgOpts
}
