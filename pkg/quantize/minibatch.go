package quantize

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/stitchgrid/pkg/errors"
)

// Mini-batch defaults.
const (
	DefaultBatchSize = 1024
	DefaultMaxIter   = 100
	DefaultTolerance = 1e-3
	DefaultSeed      = uint64(42)
)

// MiniBatch is a seeded mini-batch k-means clusterer (Sculley, 2010).
//
// Centers are seeded with k-means++ and refined by per-center learning-rate
// updates over random batches. A final pass assigns every point to its
// nearest center and recomputes each non-empty center as the mean of its
// members, so centers are true centroids of the returned labels.
type MiniBatch struct {
	Seed      uint64
	BatchSize int
	MaxIter   int
	Tolerance float64
}

// NewMiniBatch returns a mini-batch clusterer with default parameters.
func NewMiniBatch(seed uint64) *MiniBatch {
	return &MiniBatch{
		Seed:      seed,
		BatchSize: DefaultBatchSize,
		MaxIter:   DefaultMaxIter,
		Tolerance: DefaultTolerance,
	}
}

// Cluster implements Clusterer.
func (m *MiniBatch) Cluster(points []Point, k int) ([]Point, []int, error) {
	if k < 1 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "k must be positive, got %d", k)
	}
	if len(points) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "no points to cluster")
	}

	rng := rand.New(rand.NewPCG(m.Seed, m.Seed^0x9e3779b97f4a7c15))
	centers := seedPlusPlus(points, k, rng)

	batch := m.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	maxIter := m.MaxIter
	if maxIter <= 0 {
		maxIter = DefaultMaxIter
	}

	counts := make([]float64, k)
	sample := make([]int, min(batch, len(points)))
	near := make([]int, len(sample))

	for iter := 0; iter < maxIter; iter++ {
		if len(sample) == len(points) {
			for i := range sample {
				sample[i] = i
			}
		} else {
			for i := range sample {
				sample[i] = rng.IntN(len(points))
			}
		}

		// Assign against the centers as they were at the start of the batch.
		for i, idx := range sample {
			near[i] = nearest(points[idx], centers)
		}

		var shift float64
		for i, idx := range sample {
			c := near[i]
			counts[c]++
			eta := 1 / counts[c]
			p := points[idx]
			for d := 0; d < 3; d++ {
				delta := eta * (p[d] - centers[c][d])
				centers[c][d] += delta
				shift = math.Max(shift, math.Abs(delta))
			}
		}
		if shift < m.Tolerance {
			break
		}
	}

	labels := assign(points, centers)
	recenter(points, labels, centers)
	return centers, labels, nil
}

// seedPlusPlus picks k initial centers with k-means++ (D² weighting).
// When every point already coincides with a center, the remaining centers
// are duplicates of uniformly chosen points.
func seedPlusPlus(points []Point, k int, rng *rand.Rand) []Point {
	centers := make([]Point, 0, k)
	centers = append(centers, points[rng.IntN(len(points))])

	dist := make([]float64, len(points))
	for i, p := range points {
		dist[i] = distSq(p, centers[0])
	}

	for len(centers) < k {
		var total float64
		for _, d := range dist {
			total += d
		}

		next := rng.IntN(len(points))
		if total > 0 {
			target := rng.Float64() * total
			for i, d := range dist {
				target -= d
				if target < 0 && d > 0 {
					next = i
					break
				}
			}
		}

		c := points[next]
		centers = append(centers, c)
		for i, p := range points {
			if d := distSq(p, c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centers
}

// recenter moves every non-empty center to the mean of its members.
func recenter(points []Point, labels []int, centers []Point) {
	sums := make([]Point, len(centers))
	counts := make([]int, len(centers))
	for i, p := range points {
		l := labels[i]
		counts[l]++
		for d := 0; d < 3; d++ {
			sums[l][d] += p[d]
		}
	}
	for c := range centers {
		if counts[c] == 0 {
			continue
		}
		n := float64(counts[c])
		centers[c] = Point{sums[c][0] / n, sums[c][1] / n, sums[c][2] / n}
	}
}
