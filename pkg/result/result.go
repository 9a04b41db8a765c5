package result

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"

	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/surface"
)

// ReferenceWidth is the stroke width that maps to full shake intensity.
const ReferenceWidth = 12

// MinShake is the smallest intensity reported for an actual strike.
const MinShake = 0.04

// Kind identifies which extraction path produced an image.
type Kind string

const (
	KindBitmap Kind = "bitmap"
	KindPixels Kind = "pixels"
)

// Image is either a bitmap snapshot or a raw pixel buffer.
type Image struct {
	Kind   Kind
	Bitmap image.Image
	Pixels *surface.PixelBuffer
}

// Bounds returns the image size.
func (im *Image) Bounds() image.Rectangle {
	switch {
	case im == nil:
		return image.Rectangle{}
	case im.Bitmap != nil:
		return im.Bitmap.Bounds()
	case im.Pixels != nil:
		return image.Rect(0, 0, im.Pixels.Width, im.Pixels.Height)
	}
	return image.Rectangle{}
}

// Decoded returns the image as a Go image regardless of kind.
func (im *Image) Decoded() image.Image {
	if im.Bitmap != nil {
		return im.Bitmap
	}
	if im.Pixels != nil {
		return im.Pixels.Image()
	}
	return nil
}

// EncodePNG encodes the image as PNG.
func (im *Image) EncodePNG() ([]byte, error) {
	src := im.Decoded()
	if src == nil {
		return nil, apperr.New(apperr.ErrCodeEncodeFailed, "no image to encode")
	}
	if b := src.Bounds(); b.Empty() {
		// image/png rejects empty images; a 0x0 canvas encodes as one transparent pixel.
		src = image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeEncodeFailed, err, "encode png")
	}
	return buf.Bytes(), nil
}

// Result is the outcome of packaging one surface.
type Result struct {
	Image          *Image
	ShakeIntensity float64
	DidStrike      bool
	Err            error
}

// Summary is what the packager needs to know about the generated bolt.
// *bolt.Accumulator satisfies it.
type Summary interface {
	DidStrike() bool
	MaxWidth() float64
}

// ShakeIntensity returns 0 when nothing struck, otherwise maxWidth relative
// to ReferenceWidth clamped to [MinShake, 1].
func ShakeIntensity(didStrike bool, maxWidth float64) float64 {
	if !didStrike {
		return 0
	}
	return max(MinShake, min(1, maxWidth/ReferenceWidth))
}

// Packager extracts images from surfaces.
type Packager struct{}

// Package extracts the surface image. The returned Result owns the image;
// the surface may be discarded.
func (Packager) Package(ctx context.Context, s surface.Surface, sum Summary) Result {
	strike := sum.DidStrike()
	shake := ShakeIntensity(strike, sum.MaxWidth())

	bm, bmErr := s.Bitmap(ctx)
	if bmErr == nil && bm != nil {
		return Result{Image: &Image{Kind: KindBitmap, Bitmap: bm}, ShakeIntensity: shake, DidStrike: strike}
	}
	if bmErr == nil {
		bmErr = surface.ErrUnsupported
	}

	px, pxErr := s.Pixels()
	if pxErr == nil && px != nil {
		return Result{Image: &Image{Kind: KindPixels, Pixels: px}, ShakeIntensity: shake, DidStrike: strike}
	}
	if pxErr == nil {
		pxErr = surface.ErrExtraction
	}

	return Degraded(apperr.Wrap(apperr.ErrCodeSurfaceExtraction, errors.Join(bmErr, pxErr), "extract image"))
}

// Degraded returns the empty result carrying err.
func Degraded(err error) Result {
	return Result{Err: err}
}
