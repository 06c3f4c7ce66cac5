package pattern

import (
	"slices"

	"github.com/matzehuels/stitchgrid/pkg/thread"
)

// KeyEntry is one legend row.
type KeyEntry struct {
	Thread thread.Color

	// Stitches is the number of grid cells drawn in this color. It is zero
	// when the key was built without a grid.
	Stitches int
}

// ColorKey is the ordered legend of distinct thread colors.
type ColorKey []KeyEntry

// Threads returns the key's threads in order.
func (k ColorKey) Threads() []thread.Color {
	out := make([]thread.Color, len(k))
	for i, e := range k {
		out[i] = e.Thread
	}
	return out
}

// HueSort returns threads stably sorted by ascending HSV hue.
// Saturation and value are not sort keys.
func HueSort(threads []thread.Color) []thread.Color {
	type keyed struct {
		hue float64
		t   thread.Color
	}
	ks := make([]keyed, len(threads))
	for i, t := range threads {
		ks[i] = keyed{hue: t.RGB.Hue(), t: t}
	}
	slices.SortStableFunc(ks, func(a, b keyed) int {
		switch {
		case a.hue < b.hue:
			return -1
		case a.hue > b.hue:
			return 1
		}
		return 0
	})

	out := make([]thread.Color, len(ks))
	for i, k := range ks {
		out[i] = k.t
	}
	return out
}

// BuildColorKey hue-sorts threads and removes exact-RGB duplicates, keeping
// the first occurrence in hue order.
func BuildColorKey(threads []thread.Color) ColorKey {
	seen := make(map[[3]uint8]bool, len(threads))
	key := make(ColorKey, 0, len(threads))
	for _, t := range HueSort(threads) {
		k := rgbKey(t)
		if seen[k] {
			continue
		}
		seen[k] = true
		key = append(key, KeyEntry{Thread: t})
	}
	return key
}
