package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one backend without seeing each other's entries.
//
//	keyer := cache.NewScopedKeyer(nil, "stitchgrid:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// A nil inner keyer selects the DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) PatternKey(imageHash string, opts PatternKeyOpts) string {
	return k.prefix + k.inner.PatternKey(imageHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(patternHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(patternHash, opts)
}
