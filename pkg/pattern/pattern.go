// Package pattern combines quantizer labels and thread assignments into the
// final stitch grid and derives its color key.
//
// # Grid
//
// A [Grid] is a row-major array of labels, one per stitch, plus the lookup
// from label to thread. [BuildGrid] validates that every label present in
// the quantizer output has an assignment; a missing one is a programming
// defect and fails with [errors.ErrCodeMissingAssignment].
//
// # Color Key
//
// The color key is the legend of distinct threads. [BuildColorKey] sorts
// threads by HSV hue (stable, so equal hues keep their input order) and then
// drops exact-RGB duplicates, keeping the first one seen in hue order:
//
//	key := pattern.BuildColorKey(grid.Threads)
//	for _, e := range key {
//	    fmt.Println(e.Thread.ID, e.Thread.Hex())
//	}
package pattern

import (
	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/match"
	"github.com/matzehuels/stitchgrid/pkg/quantize"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

// Grid is the stitchable output of one generation.
type Grid struct {
	Width  int
	Height int

	// Labels holds one label per stitch, row-major from the top-left.
	Labels []int

	// Threads maps label to thread.
	Threads []thread.Color
}

// BuildGrid packages quantizer labels with their thread assignments.
func BuildGrid(res *quantize.Result, assignments []match.Assignment) (*Grid, error) {
	if res == nil {
		return nil, errors.New(errors.ErrCodeInternal, "no quantization result")
	}
	if len(res.Labels) != res.Width*res.Height {
		return nil, errors.New(errors.ErrCodeInternal,
			"label grid has %d cells, want %dx%d", len(res.Labels), res.Width, res.Height)
	}

	maxLabel := -1
	for _, l := range res.Labels {
		if l < 0 {
			return nil, errors.New(errors.ErrCodeMissingAssignment, "negative label %d", l)
		}
		maxLabel = max(maxLabel, l)
	}

	threads := make([]thread.Color, maxLabel+1)
	assigned := make([]bool, maxLabel+1)
	for _, a := range assignments {
		if a.Label < 0 || a.Label > maxLabel {
			continue
		}
		if !assigned[a.Label] {
			threads[a.Label] = a.Thread
			assigned[a.Label] = true
		}
	}

	for _, l := range res.Labels {
		if !assigned[l] {
			return nil, errors.New(errors.ErrCodeMissingAssignment, "label %d has no thread assignment", l)
		}
	}

	labels := make([]int, len(res.Labels))
	copy(labels, res.Labels)
	return &Grid{
		Width:   res.Width,
		Height:  res.Height,
		Labels:  labels,
		Threads: threads,
	}, nil
}

// Label returns the label at (x, y).
func (g *Grid) Label(x, y int) int {
	return g.Labels[y*g.Width+x]
}

// At returns the thread assigned to the stitch at (x, y).
func (g *Grid) At(x, y int) thread.Color {
	return g.Threads[g.Label(x, y)]
}

// Counts returns the number of stitches per label.
func (g *Grid) Counts() []int {
	counts := make([]int, len(g.Threads))
	for _, l := range g.Labels {
		counts[l]++
	}
	return counts
}

// UsedThreads returns the assigned thread of every label that occurs in the
// grid, in label order.
func (g *Grid) UsedThreads() []thread.Color {
	counts := g.Counts()
	out := make([]thread.Color, 0, len(g.Threads))
	for l, t := range g.Threads {
		if counts[l] > 0 {
			out = append(out, t)
		}
	}
	return out
}

// ColorKey builds the legend for the grid with stitch counts attached.
// Counts of labels that collapse onto the same RGB are summed.
func (g *Grid) ColorKey() ColorKey {
	key := BuildColorKey(g.UsedThreads())

	index := make(map[[3]uint8]int, len(key))
	for i, e := range key {
		index[rgbKey(e.Thread)] = i
	}
	for l, n := range g.Counts() {
		if n == 0 {
			continue
		}
		if i, ok := index[rgbKey(g.Threads[l])]; ok {
			key[i].Stitches += n
		}
	}
	return key
}

func rgbKey(t thread.Color) [3]uint8 {
	return [3]uint8{t.RGB.R, t.RGB.G, t.RGB.B}
}
