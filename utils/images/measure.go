// Package images measures and decodes images referenced from rendered
// content.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"github.com/srwiley/oksvg"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupported is returned for data which is not an image we can handle.
var ErrUnsupported = errors.New("unsupported image format")

// size used for SVG without view box
const defaultSVGSize = 300

// IsSVG reports whether data looks like SVG document.
func IsSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	return bytes.Contains(head, []byte("<svg")) || (bytes.Contains(head, []byte("<?xml")) && bytes.Contains(data, []byte("<svg")))
}

// Kind returns MIME type of image data.
func Kind(data []byte) string {
	if IsSVG(data) {
		return "image/svg+xml"
	}
	if kind, err := filetype.Image(data); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return ""
}

// Measure returns natural size of image in data.
func Measure(data []byte) (width, height float64, err error) {
	if len(data) == 0 {
		return 0, 0, ErrUnsupported
	}
	if IsSVG(data) {
		icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
		if err != nil {
			return 0, 0, fmt.Errorf("unable to parse svg: %w", err)
		}
		w, h := svgSize(icon)
		return float64(w), float64(h), nil
	}
	if !filetype.IsImage(data) {
		return 0, 0, ErrUnsupported
	}
	cfg, kind, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("unable to decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("%s image has no size", kind)
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

// Decode decodes raster images honoring EXIF orientation and rasterizes SVG
// at its natural size.
func Decode(data []byte) (image.Image, error) {
	if IsSVG(data) {
		return RasterizeSVG(data, 0, 0)
	}
	if !filetype.IsImage(data) {
		return nil, ErrUnsupported
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("unable to decode image: %w", err)
	}
	return img, nil
}

func svgSize(icon *oksvg.SvgIcon) (int, int) {
	w := int(math.Ceil(icon.ViewBox.W))
	h := int(math.Ceil(icon.ViewBox.H))
	if w <= 0 {
		w = defaultSVGSize
	}
	if h <= 0 {
		h = defaultSVGSize
	}
	return w, h
}
