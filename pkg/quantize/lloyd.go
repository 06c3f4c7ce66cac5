package quantize

import (
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/matzehuels/stitchgrid/pkg/errors"
)

// DefaultDeltaThreshold stops Lloyd iterations once fewer than this fraction
// of points change cluster in a round.
const DefaultDeltaThreshold = 0.01

// Lloyd is a full-batch k-means clusterer backed by github.com/muesli/kmeans.
//
// The library seeds centers randomly, so results are not reproducible
// across runs. Use [MiniBatch] when determinism matters.
type Lloyd struct {
	DeltaThreshold float64
}

// NewLloyd returns a Lloyd clusterer with the default delta threshold.
func NewLloyd() *Lloyd {
	return &Lloyd{DeltaThreshold: DefaultDeltaThreshold}
}

// Cluster implements Clusterer.
//
// Coordinates are scaled to 0–1 because the library draws its initial
// centers from the unit cube.
func (l *Lloyd) Cluster(points []Point, k int) ([]Point, []int, error) {
	if k < 1 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "k must be positive, got %d", k)
	}
	if len(points) < k {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "need at least %d pixels for %d colors, got %d", k, k, len(points))
	}

	obs := make(clusters.Observations, len(points))
	for i, p := range points {
		obs[i] = clusters.Coordinates{p[0] / 255, p[1] / 255, p[2] / 255}
	}

	km, err := kmeans.NewWithOptions(l.DeltaThreshold, nil)
	if err != nil {
		return nil, nil, err
	}
	cc, err := km.Partition(obs, k)
	if err != nil {
		return nil, nil, err
	}

	centers := make([]Point, len(cc))
	for i, c := range cc {
		centers[i] = Point{c.Center[0] * 255, c.Center[1] * 255, c.Center[2] * 255}
	}
	labels := assign(points, centers)
	recenter(points, labels, centers)
	return centers, labels, nil
}
