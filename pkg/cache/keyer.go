package cache

// Keyer generates cache keys for pipeline stages.
type Keyer interface {
	// PatternKey identifies a generated grid by the source image hash and
	// every option that affects generation.
	PatternKey(imageHash string, opts PatternKeyOpts) string

	// ArtifactKey identifies a rendered output of a grid.
	ArtifactKey(patternHash string, opts ArtifactKeyOpts) string
}

// PatternKeyOpts are the generation options that change the grid.
type PatternKeyOpts struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	PerUnit     int    `json:"per_unit"`
	Colors      int    `json:"colors"`
	Filter      string `json:"filter"`
	Metric      string `json:"metric"`
	Clusterer   string `json:"clusterer"`
	Seed        uint64 `json:"seed"`
	CatalogHash string `json:"catalog_hash"`
}

// ArtifactKeyOpts are the render options that change an artifact.
type ArtifactKeyOpts struct {
	Format    string `json:"format"`
	CellSize  int    `json:"cell_size,omitempty"`
	FontSize  int    `json:"font_size,omitempty"`
	GridLines bool   `json:"grid_lines,omitempty"`
	Labels    bool   `json:"labels,omitempty"`
	Source    string `json:"source,omitempty"`

	// ParamsHash covers generation parameters recorded inside the artifact.
	ParamsHash string `json:"params_hash,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PatternKey returns "pattern:<hash>".
func (DefaultKeyer) PatternKey(imageHash string, opts PatternKeyOpts) string {
	return hashKey("pattern", imageHash, opts)
}

// ArtifactKey returns "artifact:<hash>".
func (DefaultKeyer) ArtifactKey(patternHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", patternHash, opts)
}
