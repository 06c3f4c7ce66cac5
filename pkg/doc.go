// Package pkg provides the core libraries for Stitchgrid cross-stitch pattern
// generation.
//
// # Overview
//
// Stitchgrid turns an image into a stitchable grid of embroidery thread
// colors. The pkg directory is organized into three main areas:
//
//  1. Domain logic ([raster], [quantize], [thread], [match], [pattern], [viewport])
//  2. Output ([render/sink], [render])
//  3. Infrastructure ([pipeline], [cache], [errors], [observability], [buildinfo])
//
// # Architecture
//
// The data flow of one generation:
//
//	Image bytes
//	     ↓
//	[raster] decode, flatten alpha onto white, resize to units × stitches per unit
//	     ↓
//	[quantize] reduce to a bounded palette (per-pixel labels + centroids)
//	     ↓
//	[match] map every centroid to its nearest catalog [thread]
//	     ↓
//	[pattern] label grid + hue-sorted color key
//	     ↓
//	[render/sink] pixel art, thread-ID chart, SVG, PDF, legend, JSON
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Image:   data,
//	    Colors:  24,
//	    Formats: []string{"png", "key"},
//	})
//
// # Main Packages
//
// [thread] - Ordered thread catalogs read from CSV, with the DMC floss
// catalog embedded.
//
// [quantize] - Color quantization. The default mini-batch k-means is seeded
// and deterministic; Lloyd's algorithm is available for comparison.
//
// [match] - Nearest-thread mapping under plain RGB distance or CIEDE2000.
// Ties resolve to the earliest catalog entry.
//
// [viewport] - Zoom and pan arithmetic for interactive viewers, with the
// point under the pointer kept fixed while zooming.
//
// [pipeline] - The complete generate → render pipeline used by the CLI, the
// terminal viewer and the HTTP API, cached per stage.
//
// [cache] - File (zstd compressed), Redis and no-op caches behind one
// interface, with deterministic keys.
//
// # Testing
//
//	go test ./pkg/...         # All tests
//	go test ./pkg/quantize/   # Specific package
//	go test -run Example      # Examples only
//
// [raster]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/raster
// [quantize]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/quantize
// [thread]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/thread
// [match]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/match
// [pattern]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/pattern
// [viewport]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/viewport
// [render]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/stitchgrid/pkg/buildinfo
package pkg
