package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stitchgrid/pkg/cache"
	"github.com/matzehuels/stitchgrid/pkg/match"
	"github.com/matzehuels/stitchgrid/pkg/observability"
	"github.com/matzehuels/stitchgrid/pkg/pattern"
	"github.com/matzehuels/stitchgrid/pkg/quantize"
	"github.com/matzehuels/stitchgrid/pkg/raster"
	"github.com/matzehuels/stitchgrid/pkg/rgb"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

// Generation is one finished pattern. It is immutable once built; a new
// image or parameter change produces a new Generation.
type Generation struct {
	// ID is derived from Hash, so equal patterns share an ID.
	ID string

	// Hash is the content hash of the encoded pattern.
	Hash string

	Quantized   *quantize.Result
	Assignments []match.Assignment
	Grid        *pattern.Grid
	Key         pattern.ColorKey
}

// idNamespace scopes name-based generation IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/stitchgrid"))

// =============================================================================
// Generation
// =============================================================================

// Generate runs resize → quantize → map → grid on a decoded image.
// opts must have generation defaults applied.
func Generate(ctx context.Context, img image.Image, cat *thread.Catalog, opts Options) (*Generation, error) {
	hooks := observability.Pipeline()

	filter, err := raster.ParseFilter(opts.Filter)
	if err != nil {
		return nil, err
	}
	metric, err := match.ParseMetric(opts.Metric)
	if err != nil {
		return nil, err
	}
	clusterer, err := opts.NewClusterer()
	if err != nil {
		return nil, err
	}

	small, err := raster.Resize(img, opts.Size(), filter)
	if err != nil {
		return nil, fmt.Errorf("resize: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := small.Bounds()
	hooks.OnQuantizeStart(ctx, b.Dx()*b.Dy(), opts.Colors)
	start := time.Now()
	res, err := quantize.Quantize(small, opts.Colors, clusterer)
	if err != nil {
		hooks.OnQuantizeComplete(ctx, 0, time.Since(start), err)
		return nil, fmt.Errorf("quantize: %w", err)
	}
	hooks.OnQuantizeComplete(ctx, res.Used(), time.Since(start), nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	assignments, err := match.MapColors(res.Colors, cat, metric)
	if err != nil {
		hooks.OnMapComplete(ctx, len(res.Colors), 0, time.Since(start), err)
		return nil, fmt.Errorf("map threads: %w", err)
	}

	gen, err := newGeneration(res, assignments)
	if err != nil {
		hooks.OnMapComplete(ctx, len(res.Colors), 0, time.Since(start), err)
		return nil, err
	}
	hooks.OnMapComplete(ctx, len(res.Colors), len(gen.Key), time.Since(start), nil)
	return gen, nil
}

// newGeneration packages a quantization result and its assignments.
func newGeneration(res *quantize.Result, assignments []match.Assignment) (*Generation, error) {
	grid, err := pattern.BuildGrid(res, assignments)
	if err != nil {
		return nil, fmt.Errorf("build grid: %w", err)
	}
	gen := &Generation{
		Quantized:   res,
		Assignments: assignments,
		Grid:        grid,
		Key:         grid.ColorKey(),
	}
	data, err := gen.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode pattern: %w", err)
	}
	gen.Hash = cache.Hash(data)
	gen.ID = uuid.NewSHA1(idNamespace, []byte(gen.Hash)).String()
	return gen, nil
}

// =============================================================================
// Serialization
// =============================================================================

// generationRecord is the cache encoding of a Generation. Thread colors are
// stored explicitly because thread.Color omits RGB from its JSON form.
type generationRecord struct {
	Width       int                `json:"width"`
	Height      int                `json:"height"`
	Colors      []rgb.Color        `json:"colors"`
	Labels      []int              `json:"labels"`
	Assignments []assignmentRecord `json:"assignments"`
}

type assignmentRecord struct {
	Label    int       `json:"label"`
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	RGB      rgb.Color `json:"rgb"`
	Distance float64   `json:"distance"`
}

// MarshalJSON encodes the quantization result and assignments.
func (g *Generation) MarshalJSON() ([]byte, error) {
	rec := generationRecord{
		Width:       g.Quantized.Width,
		Height:      g.Quantized.Height,
		Colors:      g.Quantized.Colors,
		Labels:      g.Quantized.Labels,
		Assignments: make([]assignmentRecord, len(g.Assignments)),
	}
	for i, a := range g.Assignments {
		rec.Assignments[i] = assignmentRecord{
			Label:    a.Label,
			ID:       a.Thread.ID,
			Name:     a.Thread.Name,
			RGB:      a.Thread.RGB,
			Distance: a.Distance,
		}
	}
	return json.Marshal(rec)
}

// UnmarshalGeneration decodes a Generation and rebuilds its grid and key.
func UnmarshalGeneration(data []byte) (*Generation, error) {
	var rec generationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	res := &quantize.Result{
		Colors: rec.Colors,
		Labels: rec.Labels,
		Width:  rec.Width,
		Height: rec.Height,
	}
	assignments := make([]match.Assignment, len(rec.Assignments))
	for i, a := range rec.Assignments {
		assignments[i] = match.Assignment{
			Label:    a.Label,
			Thread:   thread.Color{ID: a.ID, Name: a.Name, RGB: a.RGB},
			Distance: a.Distance,
		}
	}
	return newGeneration(res, assignments)
}
