package thread

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/rgb"
)

// minFields is the number of leading columns a row needs: id, name, R, G, B.
const minFields = 5

//go:embed dmc.csv
var dmcCSV []byte

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the embedded DMC floss catalog.
// The catalog is parsed once on first access.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		cat, err := Load(bytes.NewReader(dmcCSV))
		if err != nil {
			panic("thread: embedded catalog is malformed: " + err.Error())
		}
		defaultCatalog = cat
	})
	return defaultCatalog
}

// LoadFile reads a catalog from a CSV file.
// A missing file yields an [errors.ErrCodeCatalogNotFound] error.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeCatalogNotFound, err, "thread catalog %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeCatalogParse, err, "open thread catalog %s", path)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a catalog from CSV rows of id, name, R, G, B.
// See the package documentation for the row-skipping rules.
func Load(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var threads []Color
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalogParse, err, "read thread catalog")
		}
		if len(rec) < minFields {
			continue
		}
		header := first && isHeader(rec)
		first = false
		if header {
			continue
		}

		c, err := parseRow(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, errors.Wrap(errors.ErrCodeCatalogParse, err, "thread catalog line %d", line)
		}
		threads = append(threads, c)
	}
	return NewCatalog(threads), nil
}

func parseRow(rec []string) (Color, error) {
	var ch [3]int
	for i := range ch {
		v, err := strconv.Atoi(strings.TrimSpace(rec[2+i]))
		if err != nil {
			return Color{}, err
		}
		if v < 0 || v > 255 {
			return Color{}, errors.New(errors.ErrCodeInvalidInput, "channel value %d out of range 0-255", v)
		}
		ch[i] = v
	}
	return Color{
		ID:   strings.TrimSpace(rec[0]),
		Name: strings.TrimSpace(rec[1]),
		RGB:  rgb.New(ch[0], ch[1], ch[2]),
	}, nil
}

// isHeader reports whether none of the color columns hold a number.
func isHeader(rec []string) bool {
	for _, f := range rec[2:minFields] {
		if _, err := strconv.Atoi(strings.TrimSpace(f)); err == nil {
			return false
		}
	}
	return true
}
