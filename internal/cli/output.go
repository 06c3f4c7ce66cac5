package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/pipeline"
)

// artifactWriteParams describes where rendered artifacts go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string // source image, used to derive default names
	output    string // explicit file (single format) or base path (multiple)
}

// writeArtifacts writes each artifact to its output path and reports the files.
func writeArtifacts(p artifactWriteParams) ([]string, error) {
	paths := make([]string, 0, len(p.formats))
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			return paths, errors.New(errors.ErrCodeInternal, "no %s artifact", format)
		}
		path, err := artifactPath(p.input, p.output, format, len(p.formats) == 1)
		if err != nil {
			return paths, err
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return paths, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactPath picks the file name for one format.
//
// A single format with an explicit output uses that path as given. Otherwise
// the output (or the input without its extension) is a base name and every
// format gets its own suffix: photo.png, photo.ids.png, photo.key.png,
// photo.svg and so on.
func artifactPath(input, output, format string, single bool) (string, error) {
	ext := pipeline.FormatExt(format)
	if single && output != "" {
		if err := errors.ValidateOutputPath(output, ext); err != nil {
			return "", err
		}
		return output, nil
	}

	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}

	switch format {
	case pipeline.FormatIDs, pipeline.FormatKey:
		return base + "." + format + "." + ext, nil
	case pipeline.FormatPNG:
		// Never overwrite the source image.
		if base+"."+ext == input {
			return base + ".pattern." + ext, nil
		}
	}
	return base + "." + ext, nil
}
