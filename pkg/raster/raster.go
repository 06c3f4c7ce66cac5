// Package raster prepares source images for quantization: decoding,
// conversion to opaque RGB and resizing to the physical pattern size.
//
// A pattern is measured in units (inches by default) and stitches per unit,
// so a 4x3 unit pattern at 14 stitches per unit is resized to 56x42 pixels,
// one pixel per stitch:
//
//	img, err := raster.DecodeFile("photo.jpg")
//	small, err := raster.Resize(img, raster.Size{Width: 4, Height: 3, PerUnit: 14}, raster.Lanczos)
package raster

import (
	"bytes"
	stderrors "errors"
	"image"
	"image/color"
	"io"
	"io/fs"
	"os"

	// Registered decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"github.com/matzehuels/stitchgrid/pkg/errors"
)

// Size is a physical pattern size.
type Size struct {
	Width   int // units
	Height  int // units
	PerUnit int // stitches per unit
}

// Pixels returns the stitch dimensions.
func (s Size) Pixels() (w, h int) {
	return s.Width * s.PerUnit, s.Height * s.PerUnit
}

// Filter selects the resampling kernel.
type Filter string

const (
	Lanczos    Filter = "lanczos"
	CatmullRom Filter = "catmullrom"
	Bilinear   Filter = "bilinear"
	Nearest    Filter = "nearest"
)

// Filters lists the accepted filter names.
var Filters = []Filter{Lanczos, CatmullRom, Bilinear, Nearest}

// ParseFilter resolves a filter name. The empty name selects Lanczos.
func ParseFilter(name string) (Filter, error) {
	if name == "" {
		return Lanczos, nil
	}
	for _, f := range Filters {
		if string(f) == name {
			return f, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown resample filter %q", name)
}

// Decode reads a PNG, JPEG or GIF image.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "decode image")
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidImage, "image is empty")
	}
	return img, nil
}

// DecodeBytes decodes an in-memory image.
func DecodeBytes(data []byte) (image.Image, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeFile opens and decodes the image at path.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "image not found: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidImage, err, "open %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// ToRGB returns an opaque RGBA copy of img anchored at the origin, with any
// transparency composited onto white.
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, xdraw.Src)
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Over)
	return dst
}

// Resize scales img to size's stitch dimensions, ignoring aspect ratio, and
// returns an opaque RGB image.
func Resize(img image.Image, size Size, f Filter) (*image.RGBA, error) {
	w, h := size.Pixels()
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid target size %dx%d", w, h)
	}

	src := ToRGB(img)
	switch f {
	case Lanczos, "":
		return toRGBA(imaging.Resize(src, w, h, imaging.Lanczos)), nil
	case Nearest:
		return toRGBA(imaging.Resize(src, w, h, imaging.NearestNeighbor)), nil
	case CatmullRom:
		return scale(src, w, h, xdraw.CatmullRom), nil
	case Bilinear:
		return scale(src, w, h, xdraw.BiLinear), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown resample filter %q", f)
}

func scale(src image.Image, w, h int, s xdraw.Scaler) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	s.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// toRGBA reinterprets imaging's NRGBA output. The source is opaque, so
// premultiplied and straight alpha coincide.
func toRGBA(n *image.NRGBA) *image.RGBA {
	return &image.RGBA{Pix: n.Pix, Stride: n.Stride, Rect: n.Rect}
}
