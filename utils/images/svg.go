package images

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// maxRasterDim limits pixel dimension of rasterized SVG, huge view boxes
// would otherwise exhaust memory.
var maxRasterDim = 8192

// RasterizeSVG rasterizes SVG onto white background.
//
// With zero width and height view box size is used, with one of them set the
// other follows aspect ratio, with both set image is fitted into the box.
func RasterizeSVG(data []byte, width, height int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	w, h := fit(icon, width, height)

	icon.SetTarget(0, 0, float64(w), float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return dst, nil
}

func fit(icon *oksvg.SvgIcon, width, height int) (int, int) {
	iw, ih := svgSize(icon)
	w, h := iw, ih
	switch {
	case width <= 0 && height <= 0:
	case height <= 0:
		w = width
		h = int(math.Round(float64(w) * float64(ih) / float64(iw)))
	case width <= 0:
		h = height
		w = int(math.Round(float64(h) * float64(iw) / float64(ih)))
	default:
		scale := math.Min(float64(width)/float64(iw), float64(height)/float64(ih))
		w = int(math.Round(float64(iw) * scale))
		h = int(math.Round(float64(ih) * scale))
	}
	w, h = max(w, 1), max(h, 1)
	if w > maxRasterDim || h > maxRasterDim {
		s := min(float64(maxRasterDim)/float64(w), float64(maxRasterDim)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}
	return w, h
}
