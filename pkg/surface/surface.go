package surface

import (
	"context"
	"errors"
	"image"
	"image/color"
)

// Sentinel errors returned by extraction.
var (
	// ErrUnsupported is returned by Bitmap when the fast path is unavailable.
	ErrUnsupported = errors.New("bitmap encoding unsupported")

	// ErrExtraction is returned when pixels cannot be read back.
	ErrExtraction = errors.New("pixel extraction failed")
)

// CompositeOp selects how strokes combine with what is already drawn.
type CompositeOp int

const (
	// SourceOver paints strokes over existing content.
	SourceOver CompositeOp = iota
	// Lighter adds stroke color to existing content, saturating at white.
	Lighter
)

// String returns the canvas name of the operation.
func (op CompositeOp) String() string {
	switch op {
	case Lighter:
		return "lighter"
	default:
		return "source-over"
	}
}

// Surface is a 2D drawing target.
//
// A path is started with BeginPath, built with MoveTo, LineTo and Arc, and
// drawn with Stroke using the stroke color, line width, shadow and composite
// state in effect at the time of the Stroke call.
type Surface interface {
	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	// ClearRect makes the given region fully transparent.
	ClearRect(x, y, w, h float64)

	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	// Arc adds a circular arc centered at (x, y) from start to end radians.
	Arc(x, y, r, start, end float64)
	ClosePath()

	SetStrokeColor(c color.Color)
	SetLineWidth(w float64)
	// SetShadow sets the blur radius and color of the shadow drawn beneath
	// strokes. A zero blur disables the shadow.
	SetShadow(blur float64, c color.Color)
	SetCompositeOp(op CompositeOp)

	Stroke()

	// Bitmap returns a snapshot of the surface. The caller owns the image.
	Bitmap(ctx context.Context) (image.Image, error)

	// Pixels returns a copy of the surface as non-premultiplied RGBA bytes.
	Pixels() (*PixelBuffer, error)
}

// PixelBuffer is raw non-premultiplied RGBA pixel data, four bytes per pixel.
type PixelBuffer struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Stride int    `json:"stride"`
	Data   []byte `json:"data"`
}

// Image wraps the buffer as an image without copying.
func (p *PixelBuffer) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.Data,
		Stride: p.Stride,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}
