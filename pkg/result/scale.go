package result

import (
	"image"

	"golang.org/x/image/draw"
)

// Scale resamples src by factor with Catmull-Rom interpolation.
// A factor of 1 returns src unchanged.
func Scale(src image.Image, factor float64) image.Image {
	if factor == 1 || factor <= 0 {
		return src
	}
	b := src.Bounds()
	w := max(1, int(float64(b.Dx())*factor+0.5))
	h := max(1, int(float64(b.Dy())*factor+0.5))
	if b.Empty() {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
