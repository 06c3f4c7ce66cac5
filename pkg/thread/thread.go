// Package thread provides the catalog of physical embroidery threads that
// pattern colors are mapped onto.
//
// # Catalog Source
//
// A catalog is read from CSV rows of the form:
//
//	id, name, R, G, B[, extra columns...]
//
// Rows with fewer than five fields are skipped, which also tolerates short
// header rows. A first row whose color columns are not numeric is treated as
// a header and skipped. Any later row with a non-numeric or out-of-range
// channel aborts the load with an [errors.ErrCodeCatalogParse] error.
//
// # Ordering
//
// Catalog order is the source row order. Nearest-thread ties are resolved
// by this order, so it is preserved exactly and never re-sorted.
//
// # Default Catalog
//
// [Default] returns the embedded DMC floss catalog:
//
//	cat := thread.Default()
//	t, ok := cat.Lookup("310") // Black
package thread

import (
	"fmt"

	"github.com/matzehuels/stitchgrid/pkg/rgb"
)

// Color is one catalog entry: a named, identified thread color.
type Color struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	RGB  rgb.Color `json:"-"`
}

// String formats the entry as "ID: <id>, Name: <name>, RGB: (r, g, b)".
func (c Color) String() string {
	return fmt.Sprintf("ID: %s, Name: %s, RGB: %s", c.ID, c.Name, c.RGB)
}

// Hex returns the thread color as #rrggbb.
func (c Color) Hex() string {
	return c.RGB.Hex()
}

// Catalog is an ordered, read-only collection of threads.
type Catalog struct {
	threads []Color
	byID    map[string]int
}

// NewCatalog builds a catalog from threads in the given order.
// When IDs repeat, Lookup returns the first occurrence.
func NewCatalog(threads []Color) *Catalog {
	c := &Catalog{
		threads: make([]Color, len(threads)),
		byID:    make(map[string]int, len(threads)),
	}
	copy(c.threads, threads)
	for i, t := range c.threads {
		if _, dup := c.byID[t.ID]; !dup {
			c.byID[t.ID] = i
		}
	}
	return c
}

// Len returns the number of threads.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.threads)
}

// At returns the i-th thread in catalog order.
func (c *Catalog) At(i int) Color {
	return c.threads[i]
}

// All returns a copy of the threads in catalog order.
func (c *Catalog) All() []Color {
	if c == nil {
		return nil
	}
	out := make([]Color, len(c.threads))
	copy(out, c.threads)
	return out
}

// Lookup finds a thread by ID.
func (c *Catalog) Lookup(id string) (Color, bool) {
	if c == nil {
		return Color{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Color{}, false
	}
	return c.threads[i], true
}
