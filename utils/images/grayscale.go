package images

import (
	"image"
	"image/color"
	"image/draw"
)

// IsGrayscale reports whether all pixels of img have equal color components.
func IsGrayscale(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.R != c.G || c.G != c.B {
				return false
			}
		}
	}
	return true
}

// Flatten returns grayscale copy of img when it has no colors and img itself
// otherwise.
func Flatten(img image.Image) image.Image {
	if _, ok := img.(*image.Gray); ok || !IsGrayscale(img) {
		return img
	}
	gray := image.NewGray(img.Bounds())
	draw.Draw(gray, gray.Bounds(), img, img.Bounds().Min, draw.Src)
	return gray
}
