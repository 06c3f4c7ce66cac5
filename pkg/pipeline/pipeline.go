// Package pipeline provides the pattern generation pipeline for Stitchgrid.
//
// This package implements the complete resize → quantize → map → render
// pipeline used by the CLI, the terminal viewer and the HTTP API. By
// centralizing this logic, every entry point produces identical patterns for
// identical inputs.
//
// # Architecture
//
// The pipeline consists of two stages:
//
//  1. Generate: resize the image to its physical stitch size, reduce it to a
//     bounded palette, map every palette color to its nearest thread, and
//     package the label grid with its color key
//  2. Render: encode the finished pattern in the requested formats
//     (pixel art, thread-ID chart, SVG, PDF, legend, JSON)
//
// Each stage can be run independently or as part of the complete pipeline,
// and both stages are cached when the [Runner] has a cache.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Image:   data,
//	    Colors:  24,
//	    Formats: []string{"png", "key"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
//
// Run individual stages:
//
//	gen, err := runner.Generate(ctx, img, catalog, opts)
//	artifacts, err := runner.Render(ctx, gen, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stitchgrid/pkg/cache"
	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/match"
	"github.com/matzehuels/stitchgrid/pkg/quantize"
	"github.com/matzehuels/stitchgrid/pkg/raster"
	"github.com/matzehuels/stitchgrid/pkg/render/sink"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, Viewer, and API
// =============================================================================

const (
	// DefaultUnits is the default pattern width and height in units.
	DefaultUnits = 4
	MinUnits     = 1
	MaxUnits     = 12

	// DefaultPerUnit is the default number of stitches per unit.
	DefaultPerUnit = 14
	MinPerUnit     = 8
	MaxPerUnit     = 16

	// DefaultColors is the default palette size.
	DefaultColors = 24
	MinColors     = 2
	MaxColors     = 100

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)
)

// Clusterer names.
const (
	ClustererMiniBatch = "minibatch"
	ClustererLloyd     = "lloyd"
)

// DefaultClusterer is the default quantization algorithm.
const DefaultClusterer = ClustererMiniBatch

// Format constants for output formats.
const (
	FormatPNG  = "png"  // pixel art
	FormatIDs  = "ids"  // thread-ID chart
	FormatSVG  = "svg"  // vector chart
	FormatPDF  = "pdf"  // printable chart
	FormatKey  = "key"  // legend
	FormatJSON = "json" // grid export
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatIDs:  true,
	FormatSVG:  true,
	FormatPDF:  true,
	FormatKey:  true,
	FormatJSON: true,
}

// ValidClusterers is the set of supported quantization algorithms.
var ValidClusterers = map[string]bool{
	ClustererMiniBatch: true,
	ClustererLloyd:     true,
}

// FormatExt returns the file extension of a format's artifact.
func FormatExt(format string) string {
	switch format {
	case FormatIDs, FormatKey:
		return "png"
	default:
		return format
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the generation pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input
	Image       []byte `json:"-"`
	ImageName   string `json:"image_name,omitempty"`
	CatalogPath string `json:"-"`
	Refresh     bool   `json:"refresh,omitempty"`

	// Generation options
	Width     int    `json:"width,omitempty"`    // units
	Height    int    `json:"height,omitempty"`   // units
	PerUnit   int    `json:"per_unit,omitempty"` // stitches per unit
	Colors    int    `json:"colors,omitempty"`
	Filter    string `json:"filter,omitempty"`
	Metric    string `json:"metric,omitempty"`
	Clusterer string `json:"clusterer,omitempty"`
	Seed      uint64 `json:"seed,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	PixelScale int      `json:"pixel_scale,omitempty"` // pixel art px per stitch
	CellSize   int      `json:"cell_size,omitempty"`   // chart px per stitch
	GridLines  bool     `json:"grid_lines,omitempty"`
	Labels     bool     `json:"labels,omitempty"` // thread IDs in SVG cells

	// Runtime options (not serialized)
	Logger  *log.Logger     `json:"-"`
	Catalog *thread.Catalog `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Generation is the finished pattern.
	Generation *Generation

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// ID returns the generation ID.
func (r *Result) ID() string {
	if r.Generation == nil {
		return ""
	}
	return r.Generation.ID
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Stitches     int // grid cells
	Colors       int // palette size
	Threads      int // distinct threads in the color key
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GenerateHit bool // Whether the pattern came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: png, ids, svg, pdf, key, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateClusterer checks that a clusterer name is valid.
func ValidateClusterer(name string) error {
	if !ValidClusterers[name] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid clusterer: %q (must be one of: minibatch, lloyd)", name)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults for the full
// pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGenerate(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetGenerateDefaults fills zero generation fields with their defaults.
func (o *Options) SetGenerateDefaults() {
	if o.Width == 0 {
		o.Width = DefaultUnits
	}
	if o.Height == 0 {
		o.Height = DefaultUnits
	}
	if o.PerUnit == 0 {
		o.PerUnit = DefaultPerUnit
	}
	if o.Colors == 0 {
		o.Colors = DefaultColors
	}
	if o.Filter == "" {
		o.Filter = string(raster.Lanczos)
	}
	if o.Metric == "" {
		o.Metric = match.MetricRGB
	}
	if o.Clusterer == "" {
		o.Clusterer = DefaultClusterer
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForGenerate sets generation defaults and checks parameter ranges.
func (o *Options) ValidateForGenerate() error {
	o.SetGenerateDefaults()
	checks := []error{
		errors.ValidateRange("width", o.Width, MinUnits, MaxUnits),
		errors.ValidateRange("height", o.Height, MinUnits, MaxUnits),
		errors.ValidateRange("stitches per unit", o.PerUnit, MinPerUnit, MaxPerUnit),
		errors.ValidateRange("colors", o.Colors, MinColors, MaxColors),
		ValidateClusterer(o.Clusterer),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	if _, err := raster.ParseFilter(o.Filter); err != nil {
		return err
	}
	_, err := match.ParseMetric(o.Metric)
	return err
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.PixelScale == 0 {
		o.PixelScale = sink.DefaultPixelScale
	}
	if o.CellSize == 0 {
		o.CellSize = sink.DefaultChartCellSize
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if o.PixelScale < 1 || o.CellSize < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "pixel scale and cell size must be positive")
	}
	return ValidateFormats(o.Formats)
}

// Size returns the physical pattern size.
func (o *Options) Size() raster.Size {
	return raster.Size{Width: o.Width, Height: o.Height, PerUnit: o.PerUnit}
}

// NewClusterer returns the configured quantization algorithm.
func (o *Options) NewClusterer() (quantize.Clusterer, error) {
	switch o.Clusterer {
	case "", ClustererMiniBatch:
		return quantize.NewMiniBatch(o.Seed), nil
	case ClustererLloyd:
		return quantize.NewLloyd(), nil
	}
	return nil, ValidateClusterer(o.Clusterer)
}

// PatternKeyOpts returns cache key options for generation.
func (o *Options) PatternKeyOpts(catalogHash string) cache.PatternKeyOpts {
	return cache.PatternKeyOpts{
		Width:       o.Width,
		Height:      o.Height,
		PerUnit:     o.PerUnit,
		Colors:      o.Colors,
		Filter:      o.Filter,
		Metric:      o.Metric,
		Clusterer:   o.Clusterer,
		Seed:        o.Seed,
		CatalogHash: catalogHash,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		k.CellSize = o.PixelScale
	case FormatIDs:
		k.CellSize = o.CellSize
		k.GridLines = o.GridLines
	case FormatSVG:
		k.Labels = o.Labels
		k.Source = o.ImageName
	case FormatJSON:
		k.Source = o.ImageName
		params, _ := json.Marshal(o.Params())
		k.ParamsHash = cache.Hash(params)
	}
	return k
}

// Params returns the generation parameters recorded in the JSON export.
func (o *Options) Params() map[string]any {
	return map[string]any{
		"width":     o.Width,
		"height":    o.Height,
		"per_unit":  o.PerUnit,
		"colors":    o.Colors,
		"filter":    o.Filter,
		"metric":    o.Metric,
		"clusterer": o.Clusterer,
		"seed":      o.Seed,
	}
}

// String summarizes the generation parameters for log lines.
func (o *Options) String() string {
	w, h := o.Size().Pixels()
	return fmt.Sprintf("%dx%d stitches, %d colors, %s", w, h, o.Colors, o.Clusterer)
}
