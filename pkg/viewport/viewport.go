// Package viewport implements the pan and zoom math for displaying a pattern.
//
// A [State] is a plain value: a scale factor and a pan offset in
// rendering-surface units. Operations take the current state and return the
// next one, so the display owns the state and is its only writer.
//
// Zooming is anchored at the pointer. For a pointer p the logical position
// under it is (p - offset) / scale, and [ZoomAt] chooses the new offset so
// that this position is unchanged after the scale moves:
//
//	s := viewport.Reset()
//	s, err := viewport.ZoomAt(s, viewport.Point{X: 50, Y: 50}, viewport.In, extent)
//	// s.Scale == 1.2, s.Offset == {-10, -10}
//
// Scale is clamped to [MinScale, MaxScale]. Panning is unbounded.
package viewport

import (
	"math"

	"github.com/matzehuels/stitchgrid/pkg/errors"
)

const (
	// ZoomFactor is the scale multiplier of a single zoom step.
	ZoomFactor = 1.2

	MinScale = 0.5
	MaxScale = 15.86

	// OverlayThreshold is the scale above which per-cell labels are legible.
	OverlayThreshold = 8.14

	// DefaultCellSize is the display size of one stitch at scale 1.
	DefaultCellSize = 4

	minOverlayFontSize = 7
)

// Direction selects zooming in or out.
type Direction int

const (
	Out Direction = -1
	In  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case In:
		return "in"
	case Out:
		return "out"
	}
	return "none"
}

// Point is a position or displacement on the rendering surface.
type Point struct {
	X, Y float64
}

// Extent is a width and height on the rendering surface.
type Extent struct {
	Width, Height float64
}

// IsZero reports whether either dimension is zero.
func (e Extent) IsZero() bool {
	return e.Width == 0 || e.Height == 0
}

// State is the current zoom and pan of a view.
type State struct {
	Scale  float64 `json:"scale"`
	Offset Point   `json:"offset"`
}

// Reset returns the state of a freshly loaded image.
func Reset() State {
	return State{Scale: 1}
}

// Rendered returns the size of extent drawn at the current scale.
func (s State) Rendered(extent Extent) Extent {
	return Extent{Width: extent.Width * s.Scale, Height: extent.Height * s.Scale}
}

// Logical maps a surface position to unscaled image coordinates.
func (s State) Logical(p Point) Point {
	return Point{X: (p.X - s.Offset.X) / s.Scale, Y: (p.Y - s.Offset.Y) / s.Scale}
}

// CellAt returns the grid cell under pointer for an image of the given
// unscaled extent drawn with cellSize surface units per cell. ok is false
// when the pointer is outside the image.
func (s State) CellAt(pointer Point, extent Extent, cellSize float64) (col, row int, ok bool) {
	if s.Scale <= 0 || cellSize <= 0 {
		return 0, 0, false
	}
	l := s.Logical(pointer)
	if l.X < 0 || l.Y < 0 || l.X >= extent.Width || l.Y >= extent.Height {
		return 0, 0, false
	}
	return int(l.X / cellSize), int(l.Y / cellSize), true
}

// ZoomAt scales the view one step in dir while keeping the point under
// pointer fixed. extent is the unscaled size of the displayed image.
func ZoomAt(s State, pointer Point, dir Direction, extent Extent) (State, error) {
	if !(s.Scale > 0) || math.IsInf(s.Scale, 0) {
		return s, errors.New(errors.ErrCodeInvalidState, "cannot zoom at scale %g", s.Scale)
	}
	if s.Rendered(extent).IsZero() {
		return s, errors.New(errors.ErrCodeInvalidState, "cannot zoom before an image is displayed")
	}

	var scale float64
	switch dir {
	case In:
		scale = s.Scale * ZoomFactor
	case Out:
		scale = s.Scale / ZoomFactor
	default:
		return s, errors.New(errors.ErrCodeInvalidInput, "invalid zoom direction %d", int(dir))
	}
	scale = Clamp(scale)

	ratio := scale / s.Scale
	return State{
		Scale: scale,
		Offset: Point{
			X: pointer.X - (pointer.X-s.Offset.X)*ratio,
			Y: pointer.Y - (pointer.Y-s.Offset.Y)*ratio,
		},
	}, nil
}

// PanBy translates offset by delta.
func PanBy(offset, delta Point) Point {
	return Point{X: offset.X + delta.X, Y: offset.Y + delta.Y}
}

// Clamp limits scale to [MinScale, MaxScale]. NaN clamps to MinScale.
func Clamp(scale float64) float64 {
	if math.IsNaN(scale) {
		return MinScale
	}
	return math.Min(MaxScale, math.Max(MinScale, scale))
}

// ShouldShowOverlay reports whether a requested overlay should be drawn at
// scale.
func ShouldShowOverlay(scale float64, requested bool) bool {
	return requested && scale > OverlayThreshold
}

// OverlayFontSize is the label font size used for the overlay at scale.
func OverlayFontSize(scale float64) int {
	return max(minOverlayFontSize, int(scale/2))
}
