// Package match assigns each representative color to its nearest thread in
// a catalog.
//
// The search is a brute-force scan over the whole catalog, which is small
// (low hundreds of entries). Ties are resolved in favor of the entry that
// appears first in catalog order, so results never depend on map iteration
// or sort stability.
package match

import (
	"fmt"

	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/rgb"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

// Metric measures the difference between two colors. Smaller is closer.
type Metric interface {
	Name() string
	Distance(a, b rgb.Color) float64
}

// Euclidean is the straight-line distance in RGB space.
type Euclidean struct{}

func (Euclidean) Name() string { return "rgb" }

func (Euclidean) Distance(a, b rgb.Color) float64 { return rgb.Distance(a, b) }

// CIEDE2000 is the perceptual color difference in CIELAB space.
type CIEDE2000 struct{}

func (CIEDE2000) Name() string { return "ciede2000" }

func (CIEDE2000) Distance(a, b rgb.Color) float64 { return rgb.DeltaE(a, b) }

// Metric names accepted by ParseMetric.
const (
	MetricRGB       = "rgb"
	MetricCIEDE2000 = "ciede2000"
)

// ParseMetric resolves a metric by name. The empty name selects Euclidean.
func ParseMetric(name string) (Metric, error) {
	switch name {
	case "", MetricRGB:
		return Euclidean{}, nil
	case MetricCIEDE2000:
		return CIEDE2000{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown color metric %q (must be rgb or ciede2000)", name)
}

// Assignment maps a quantizer label to its chosen thread.
type Assignment struct {
	Label    int
	Thread   thread.Color
	Distance float64
}

func (a Assignment) String() string {
	return fmt.Sprintf("%d -> %s (%.1f)", a.Label, a.Thread.ID, a.Distance)
}

// Nearest returns the catalog entry closest to c under m.
func Nearest(c rgb.Color, catalog *thread.Catalog, m Metric) (thread.Color, float64, error) {
	if catalog.Len() == 0 {
		return thread.Color{}, 0, errors.New(errors.ErrCodeEmptyCatalog, "thread catalog is empty")
	}
	if m == nil {
		m = Euclidean{}
	}

	best := 0
	bestD := m.Distance(c, catalog.At(0).RGB)
	for i := 1; i < catalog.Len(); i++ {
		if d := m.Distance(c, catalog.At(i).RGB); d < bestD {
			best, bestD = i, d
		}
	}
	return catalog.At(best), bestD, nil
}

// MapColors assigns every color its nearest thread; colors[i] becomes the
// assignment for label i. Several labels may share a thread.
func MapColors(colors []rgb.Color, catalog *thread.Catalog, m Metric) ([]Assignment, error) {
	if catalog.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptyCatalog, "cannot map %d colors: thread catalog is empty", len(colors))
	}

	out := make([]Assignment, len(colors))
	for i, c := range colors {
		t, d, err := Nearest(c, catalog, m)
		if err != nil {
			return nil, err
		}
		out[i] = Assignment{Label: i, Thread: t, Distance: d}
	}
	return out, nil
}
