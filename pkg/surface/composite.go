package surface

import (
	"image"
	"image/color"
)

// composite blends a premultiplied layer onto dst. Both images must share
// bounds and stride.
func composite(dst, src *image.RGBA, op CompositeOp) {
	s, d := src.Pix, dst.Pix
	for i := 0; i+3 < len(s) && i+3 < len(d); i += 4 {
		a := uint32(s[i+3])
		if a == 0 {
			continue
		}
		blend(d[i:i+4:i+4], uint32(s[i]), uint32(s[i+1]), uint32(s[i+2]), a, op)
	}
}

// compositeTinted blends tint onto dst using the alpha channel of mask as coverage.
func compositeTinted(dst *image.RGBA, mask *image.NRGBA, tint color.NRGBA, op CompositeOp) {
	m, d := mask.Pix, dst.Pix
	for i := 0; i+3 < len(m) && i+3 < len(d); i += 4 {
		a := uint32(m[i+3]) * uint32(tint.A) / 255
		if a == 0 {
			continue
		}
		r := uint32(tint.R) * a / 255
		g := uint32(tint.G) * a / 255
		b := uint32(tint.B) * a / 255
		blend(d[i:i+4:i+4], r, g, b, a, op)
	}
}

// blend combines one premultiplied source pixel into d.
func blend(d []uint8, r, g, b, a uint32, op CompositeOp) {
	switch op {
	case Lighter:
		d[0] = uint8(min(255, uint32(d[0])+r))
		d[1] = uint8(min(255, uint32(d[1])+g))
		d[2] = uint8(min(255, uint32(d[2])+b))
		d[3] = uint8(min(255, uint32(d[3])+a))
	default:
		inv := 255 - a
		d[0] = uint8(r + uint32(d[0])*inv/255)
		d[1] = uint8(g + uint32(d[1])*inv/255)
		d[2] = uint8(b + uint32(d[2])*inv/255)
		d[3] = uint8(a + uint32(d[3])*inv/255)
	}
}
