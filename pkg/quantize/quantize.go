// Package quantize reduces an image to a bounded palette of representative
// colors plus a per-pixel label grid.
//
// # Algorithm
//
// Every pixel is treated as a point in 3-dimensional RGB space and the whole
// population is partitioned into k clusters by a [Clusterer]. The
// representative colors are the integer-rounded cluster centroids; the label
// grid holds, for every pixel, the index of its cluster.
//
// Two clusterers are provided:
//
//   - [MiniBatch]: seeded mini-batch k-means with k-means++ initialization.
//     Deterministic for a fixed seed; the default.
//   - [Lloyd]: full-batch Lloyd's algorithm backed by github.com/muesli/kmeans.
//
// # Usage
//
//	res, err := quantize.Quantize(img, 24, quantize.NewMiniBatch(42))
//	if err != nil {
//	    return err
//	}
//	for i, c := range res.Colors {
//	    fmt.Println(i, c.Hex())
//	}
//
// Images with fewer distinct colors than k may produce duplicate or unused
// representative colors. This is tolerated and not reported as an error.
package quantize

import (
	"image"
	"math"

	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/rgb"
)

// Point is a pixel in RGB space with channels in 0–255.
type Point = [3]float64

// Clusterer partitions points into k clusters.
//
// Implementations must return exactly k centers and one label in [0, k) per
// input point, in input order.
type Clusterer interface {
	Cluster(points []Point, k int) (centers []Point, labels []int, err error)
}

// Result is the output of one quantization run.
type Result struct {
	// Colors holds the representative colors; the index is the label.
	Colors []rgb.Color

	// Labels holds one label per pixel, row-major from the top-left.
	Labels []int

	Width  int
	Height int
}

// Label returns the label of the pixel at (x, y).
func (r *Result) Label(x, y int) int {
	return r.Labels[y*r.Width+x]
}

// Used returns the number of labels that at least one pixel carries.
func (r *Result) Used() int {
	seen := make([]bool, len(r.Colors))
	n := 0
	for _, l := range r.Labels {
		if !seen[l] {
			seen[l] = true
			n++
		}
	}
	return n
}

// Quantize partitions the pixels of img into colorCount clusters using c.
// The image is expected to be opaque RGB; translucent pixels are composited
// onto white.
func Quantize(img image.Image, colorCount int, c Clusterer) (*Result, error) {
	if colorCount < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "color count must be positive, got %d", colorCount)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, errors.New(errors.ErrCodeInvalidImage, "image has no pixels")
	}

	points := Flatten(img)
	centers, labels, err := c.Cluster(points, colorCount)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "cluster %d pixels", len(points))
	}
	if len(centers) != colorCount || len(labels) != len(points) {
		return nil, errors.New(errors.ErrCodeInternal,
			"clusterer returned %d centers and %d labels, want %d and %d",
			len(centers), len(labels), colorCount, len(points))
	}

	colors := make([]rgb.Color, len(centers))
	for i, ctr := range centers {
		colors[i] = rgb.New(round(ctr[0]), round(ctr[1]), round(ctr[2]))
	}
	return &Result{
		Colors: colors,
		Labels: labels,
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

// Flatten returns the pixels of img as RGB points in a single row-major pass.
func Flatten(img image.Image) []Point {
	b := img.Bounds()
	points := make([]Point, 0, b.Dx()*b.Dy())

	switch src := img.(type) {
	case *image.RGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				if row[i+3] != 0xff {
					points = append(points, toPoint(rgb.FromColor(src.RGBAAt(b.Min.X+i/4, y))))
					continue
				}
				points = append(points, Point{float64(row[i]), float64(row[i+1]), float64(row[i+2])})
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				points = append(points, toPoint(rgb.FromColor(img.At(x, y))))
			}
		}
	}
	return points
}

func toPoint(c rgb.Color) Point {
	return Point{float64(c.R), float64(c.G), float64(c.B)}
}

func round(v float64) int {
	return int(math.Round(v))
}

// distSq is the squared Euclidean distance between two points.
func distSq(a, b Point) float64 {
	d0 := a[0] - b[0]
	d1 := a[1] - b[1]
	d2 := a[2] - b[2]
	return d0*d0 + d1*d1 + d2*d2
}

// nearest returns the index of the center closest to p.
// Ties go to the lowest index.
func nearest(p Point, centers []Point) int {
	best, bestD := 0, math.Inf(1)
	for i, c := range centers {
		if d := distSq(p, c); d < bestD {
			best, bestD = i, d
		}
	}
	return best
}

// assign labels every point with its nearest center.
func assign(points, centers []Point) []int {
	labels := make([]int, len(points))
	for i, p := range points {
		labels[i] = nearest(p, centers)
	}
	return labels
}
