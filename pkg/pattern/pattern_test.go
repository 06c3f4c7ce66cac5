package pattern

import (
	"fmt"
	"testing"

	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/match"
	"github.com/matzehuels/stitchgrid/pkg/quantize"
	"github.com/matzehuels/stitchgrid/pkg/rgb"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

var (
	red   = thread.Color{ID: "606", Name: "Bright Orange-Red", RGB: rgb.Color{R: 250, G: 50, B: 3}}
	green = thread.Color{ID: "700", Name: "Bright Green", RGB: rgb.Color{R: 7, G: 115, B: 27}}
	blue  = thread.Color{ID: "820", Name: "Very Dark Royal Blue", RGB: rgb.Color{R: 14, G: 54, B: 92}}
)

func TestBuildGrid(t *testing.T) {
	res := &quantize.Result{
		Width:  3,
		Height: 2,
		Labels: []int{0, 1, 2, 2, 1, 0},
		Colors: make([]rgb.Color, 3),
	}
	assignments := []match.Assignment{
		{Label: 0, Thread: red},
		{Label: 1, Thread: green},
		{Label: 2, Thread: blue},
	}

	g, err := BuildGrid(res, assignments)
	if err != nil {
		t.Fatalf("BuildGrid() error = %v", err)
	}
	if g.Width != 3 || g.Height != 2 {
		t.Fatalf("size = %dx%d, want 3x2", g.Width, g.Height)
	}
	if got := g.At(2, 0); got.ID != blue.ID {
		t.Errorf("At(2, 0) = %s, want %s", got.ID, blue.ID)
	}
	if got := g.At(0, 1); got.ID != blue.ID {
		t.Errorf("At(0, 1) = %s, want %s", got.ID, blue.ID)
	}
	if got := g.At(2, 1); got.ID != red.ID {
		t.Errorf("At(2, 1) = %s, want %s", got.ID, red.ID)
	}

	res.Labels[0] = 2
	if g.Label(0, 0) != 0 {
		t.Error("grid should not alias the quantizer labels")
	}
}

func TestBuildGridMissingAssignment(t *testing.T) {
	res := &quantize.Result{Width: 2, Height: 1, Labels: []int{0, 1}}

	_, err := BuildGrid(res, []match.Assignment{{Label: 0, Thread: red}})
	if !errors.Is(err, errors.ErrCodeMissingAssignment) {
		t.Errorf("BuildGrid() error = %v, want %s", err, errors.ErrCodeMissingAssignment)
	}
	if !errors.IsDefect(err) {
		t.Error("a missing assignment should be reported as a defect")
	}
}

func TestBuildGridShapeMismatch(t *testing.T) {
	res := &quantize.Result{Width: 2, Height: 2, Labels: []int{0}}
	if _, err := BuildGrid(res, nil); err == nil {
		t.Error("BuildGrid() should reject a label grid of the wrong size")
	}
	if _, err := BuildGrid(nil, nil); err == nil {
		t.Error("BuildGrid(nil) should fail")
	}
}

func TestHueSort(t *testing.T) {
	got := HueSort([]thread.Color{blue, red, green})
	want := []string{red.ID, green.ID, blue.ID}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("HueSort()[%d] = %s, want %s", i, got[i].ID, id)
		}
	}

	again := HueSort(got)
	for i := range got {
		if again[i] != got[i] {
			t.Fatalf("HueSort is not idempotent at %d: %s vs %s", i, again[i].ID, got[i].ID)
		}
	}
}

func TestHueSortStableOnEqualHue(t *testing.T) {
	// Both greys have hue 0, as does pure red.
	a := thread.Color{ID: "a", RGB: rgb.Color{R: 10, G: 10, B: 10}}
	b := thread.Color{ID: "b", RGB: rgb.Color{R: 200, G: 200, B: 200}}
	c := thread.Color{ID: "c", RGB: rgb.Color{R: 255}}

	got := HueSort([]thread.Color{b, c, a})
	for i, id := range []string{"b", "c", "a"} {
		if got[i].ID != id {
			t.Errorf("HueSort()[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestBuildColorKeyDedupes(t *testing.T) {
	dup := thread.Color{ID: "606-alt", Name: "Orange-Red Alt", RGB: red.RGB}

	key := BuildColorKey([]thread.Color{blue, red, green, dup, red})
	if len(key) != 3 {
		t.Fatalf("len(key) = %d, want 3", len(key))
	}
	if key[0].Thread.ID != red.ID {
		t.Errorf("key[0] = %s, want first red occurrence %s", key[0].Thread.ID, red.ID)
	}
	if key[1].Thread.ID != green.ID || key[2].Thread.ID != blue.ID {
		t.Errorf("key order = %v, want red, green, blue", key.Threads())
	}
}

func TestBuildColorKeyEmpty(t *testing.T) {
	if key := BuildColorKey(nil); len(key) != 0 {
		t.Errorf("BuildColorKey(nil) has %d entries, want 0", len(key))
	}
}

func TestGridColorKeyCounts(t *testing.T) {
	dup := thread.Color{ID: "606-alt", RGB: red.RGB}
	g := &Grid{
		Width:   4,
		Height:  1,
		Labels:  []int{0, 0, 1, 2},
		Threads: []thread.Color{red, blue, dup, green},
	}

	key := g.ColorKey()
	if len(key) != 2 {
		t.Fatalf("len(key) = %d, want 2 (unused label 3 and duplicate red dropped)", len(key))
	}
	if key[0].Thread.ID != red.ID || key[0].Stitches != 3 {
		t.Errorf("key[0] = %s x%d, want %s x3", key[0].Thread.ID, key[0].Stitches, red.ID)
	}
	if key[1].Thread.ID != blue.ID || key[1].Stitches != 1 {
		t.Errorf("key[1] = %s x%d, want %s x1", key[1].Thread.ID, key[1].Stitches, blue.ID)
	}
}

func ExampleBuildColorKey() {
	key := BuildColorKey([]thread.Color{blue, red, green, red})
	for _, e := range key {
		fmt.Println(e.Thread.ID, e.Thread.Name)
	}
	// Output:
	// 606 Bright Orange-Red
	// 700 Bright Green
	// 820 Very Dark Royal Blue
}
