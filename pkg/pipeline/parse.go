package pipeline

import (
	"fmt"
	"image"
	"strings"

	"github.com/matzehuels/stitchgrid/pkg/cache"
	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/raster"
	"github.com/matzehuels/stitchgrid/pkg/thread"
)

// Parse decodes the input image and resolves the thread catalog.
//
// The catalog comes from opts.Catalog when set, then opts.CatalogPath, and
// falls back to the embedded DMC catalog.
func Parse(opts Options) (image.Image, *thread.Catalog, error) {
	if len(opts.Image) == 0 {
		return nil, nil, errors.New(errors.ErrCodeInvalidImage, "no image data")
	}
	img, err := raster.DecodeBytes(opts.Image)
	if err != nil {
		return nil, nil, err
	}
	cat, err := LoadCatalog(opts)
	if err != nil {
		return nil, nil, err
	}
	return img, cat, nil
}

// LoadCatalog resolves the thread catalog for opts.
func LoadCatalog(opts Options) (*thread.Catalog, error) {
	switch {
	case opts.Catalog != nil:
		return opts.Catalog, nil
	case opts.CatalogPath != "":
		return thread.LoadFile(opts.CatalogPath)
	default:
		return thread.Default(), nil
	}
}

// CatalogHash returns a content hash of the catalog, used in cache keys so
// editing the catalog invalidates cached patterns.
func CatalogHash(cat *thread.Catalog) string {
	var b strings.Builder
	for _, t := range cat.All() {
		fmt.Fprintf(&b, "%s\t%s\t%d,%d,%d\n", t.ID, t.Name, t.RGB.R, t.RGB.G, t.RGB.B)
	}
	return cache.Hash([]byte(b.String()))
}
