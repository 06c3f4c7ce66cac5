package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stitchgrid/pkg/cache"
	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/observability"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

// Runner encapsulates pipeline execution with caching.
// The CLI, the viewer and the API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → generate → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Stage 1: Parse
	img, cat, err := Parse(opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	r.Logger.Debug("loaded inputs",
		"image", opts.ImageName,
		"bounds", img.Bounds().Size(),
		"threads", cat.Len())

	result := &Result{}

	// Stage 2: Generate
	genStart := time.Now()
	gen, genHit, err := r.GenerateWithCacheInfo(ctx, img, cat, opts)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	result.Generation = gen
	result.Stats.GenerateTime = time.Since(genStart)
	result.Stats.Stitches = gen.Grid.Width * gen.Grid.Height
	result.Stats.Colors = len(gen.Quantized.Colors)
	result.Stats.Threads = len(gen.Key)
	result.CacheInfo.GenerateHit = genHit

	r.Logger.Info("generated pattern",
		"id", gen.ID,
		"size", fmt.Sprintf("%dx%d", gen.Grid.Width, gen.Grid.Height),
		"threads", len(gen.Key),
		"cached", genHit,
		"duration", result.Stats.GenerateTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, gen, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateWithCacheInfo generates a pattern with caching and returns cache
// hit info. The key covers the image bytes, the catalog contents and every
// generation option; opts.Image must be the bytes img was decoded from.
func (r *Runner) GenerateWithCacheInfo(ctx context.Context, img image.Image, cat *thread.Catalog, opts Options) (*Generation, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForGenerate(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	// Without source bytes there is nothing stable to key on.
	cacheable := len(opts.Image) > 0
	var cacheKey string
	if cacheable {
		cacheKey = r.Keyer.PatternKey(cache.Hash(opts.Image), opts.PatternKeyOpts(CatalogHash(cat)))
	}

	// Try cache first (unless refresh requested)
	if cacheable && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if gen, err := UnmarshalGeneration(data); err == nil {
				hooks.OnCacheHit(ctx, "pattern")
				return gen, true, nil
			}
			// If deserialization fails, fall through to regenerate
			opts.Logger.Debug("discarding unreadable cached pattern", "key", cacheKey)
		}
		hooks.OnCacheMiss(ctx, "pattern")
	}

	gen, err := Generate(ctx, img, cat, opts)
	if err != nil {
		return nil, false, err
	}

	if cacheable {
		if data, err := gen.MarshalJSON(); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLPattern); err != nil {
				opts.Logger.Warn("cache write failed", "error", err)
			} else {
				hooks.OnCacheSet(ctx, "pattern", len(data))
			}
		}
	}

	return gen, false, nil
}

// Generate is a convenience wrapper that calls GenerateWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Generate(ctx context.Context, img image.Image, cat *thread.Catalog, opts Options) (*Generation, error) {
	gen, _, err := r.GenerateWithCacheInfo(ctx, img, cat, opts)
	return gen, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit
// info. Only the formats missing from the cache are rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, gen *Generation, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if gen == nil {
		return nil, false, errors.New(errors.ErrCodeInternal, "render without a generation")
	}
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string

	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(gen.Hash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			cacheHooks.OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		return artifacts, true, nil
	}

	renderOpts := opts
	renderOpts.Formats = missing
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	rendered, err := Render(ctx, gen, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		key := r.Keyer.ArtifactKey(gen.Hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}

	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, gen *Generation, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, gen, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
