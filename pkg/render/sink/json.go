package sink

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/matzehuels/stitchgrid/pkg/pattern"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	id      string
	source  string
	options map[string]any
}

// WithJSONID sets the generation ID. Without it a random UUID is used.
func WithJSONID(id string) JSONOption { return func(r *jsonRenderer) { r.id = id } }

// WithJSONSource records the source image name.
func WithJSONSource(name string) JSONOption { return func(r *jsonRenderer) { r.source = name } }

// WithJSONOptions records the generation parameters for reproducibility.
func WithJSONOptions(opts map[string]any) JSONOption {
	return func(r *jsonRenderer) { r.options = opts }
}

// Document is the JSON export of one generation.
type Document struct {
	ID      string         `json:"id"`
	Source  string         `json:"source,omitempty"`
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Options map[string]any `json:"options,omitempty"`
	Threads []Thread       `json:"threads"`
	Key     []KeyEntry     `json:"key"`
	Rows    [][]int        `json:"rows"`
}

// Thread is the assignment of one label.
type Thread struct {
	Label int    `json:"label"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	Hex   string `json:"hex"`
}

// KeyEntry is one color key row.
type KeyEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Hex      string `json:"hex"`
	Stitches int    `json:"stitches"`
}

// NewDocument builds the export document for a grid.
func NewDocument(g *pattern.Grid, opts ...JSONOption) Document {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if r.id == "" {
		r.id = uuid.NewString()
	}

	doc := Document{
		ID:      r.id,
		Source:  r.source,
		Width:   g.Width,
		Height:  g.Height,
		Options: r.options,
		Threads: make([]Thread, len(g.Threads)),
		Key:     []KeyEntry{},
		Rows:    make([][]int, g.Height),
	}
	for l, t := range g.Threads {
		doc.Threads[l] = Thread{Label: l, ID: t.ID, Name: t.Name, Hex: t.Hex()}
	}
	for _, e := range g.ColorKey() {
		doc.Key = append(doc.Key, KeyEntry{
			ID: e.Thread.ID, Name: e.Thread.Name, Hex: e.Thread.Hex(), Stitches: e.Stitches,
		})
	}
	for y := range doc.Rows {
		doc.Rows[y] = g.Labels[y*g.Width : (y+1)*g.Width]
	}
	return doc
}

// RenderJSON exports the grid, its threads and color key as indented JSON.
func RenderJSON(g *pattern.Grid, opts ...JSONOption) ([]byte, error) {
	return json.MarshalIndent(NewDocument(g, opts...), "", "  ")
}
