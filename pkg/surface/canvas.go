package surface

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
)

type pathOpKind int

const (
	opMove pathOpKind = iota
	opLine
	opArc
	opClose
)

type pathOp struct {
	kind          pathOpKind
	x, y, r, a, b float64
}

// Canvas is a Surface rasterized in memory with gg.
//
// gg only paints source-over without shadows, so strokes made while a shadow
// or the Lighter operation is active are drawn onto an offscreen layer. The
// layer is composited onto the base image, shadow first, whenever the shadow
// or composite state changes and before any extraction. Within one layer,
// strokes combine with source-over; the layer as a whole combines with the
// base using the active operation.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	base    *image.RGBA
	baseDC  *gg.Context
	layer   *image.RGBA
	layerDC *gg.Context
	dirty   bool

	path   []pathOp
	stroke color.Color
	width  float64
	op     CompositeOp
	blur   float64
	shadow color.Color

	bitmap bool
}

// CanvasOption configures a Canvas.
type CanvasOption func(*Canvas)

// WithoutBitmap disables the fast extraction path. Bitmap then always fails
// with ErrUnsupported and callers must read pixels instead.
func WithoutBitmap() CanvasOption {
	return func(c *Canvas) { c.bitmap = false }
}

// NewCanvas returns a fully transparent canvas. Negative sizes are treated as zero.
func NewCanvas(width, height int, opts ...CanvasOption) *Canvas {
	base := image.NewRGBA(image.Rect(0, 0, max(0, width), max(0, height)))
	c := &Canvas{
		base:   base,
		baseDC: newContext(base),
		stroke: color.Black,
		width:  1,
		shadow: color.Transparent,
		bitmap: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newContext(im *image.RGBA) *gg.Context {
	dc := gg.NewContextForRGBA(im)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	return dc
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	b := c.base.Bounds()
	return b.Dx(), b.Dy()
}

// ClearRect makes a region transparent. Pending layered strokes are
// composited first so the clear applies to them too.
func (c *Canvas) ClearRect(x, y, w, h float64) {
	c.flush()
	r := image.Rect(
		int(math.Floor(x)), int(math.Floor(y)),
		int(math.Ceil(x+w)), int(math.Ceil(y+h)),
	).Intersect(c.base.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.base, r, image.Transparent, image.Point{}, draw.Src)
}

func (c *Canvas) BeginPath()          { c.path = c.path[:0] }
func (c *Canvas) MoveTo(x, y float64) { c.path = append(c.path, pathOp{kind: opMove, x: x, y: y}) }
func (c *Canvas) LineTo(x, y float64) { c.path = append(c.path, pathOp{kind: opLine, x: x, y: y}) }
func (c *Canvas) ClosePath()          { c.path = append(c.path, pathOp{kind: opClose}) }

func (c *Canvas) Arc(x, y, r, start, end float64) {
	c.path = append(c.path, pathOp{kind: opArc, x: x, y: y, r: r, a: start, b: end})
}

func (c *Canvas) SetStrokeColor(col color.Color) { c.stroke = col }
func (c *Canvas) SetLineWidth(w float64)         { c.width = w }

// SetShadow changes the shadow. Strokes made under the previous shadow are
// composited before the change takes effect.
func (c *Canvas) SetShadow(blur float64, col color.Color) {
	if col == nil {
		col = color.Transparent
	}
	if blur == c.blur && sameColor(col, c.shadow) {
		return
	}
	c.flush()
	c.blur = max(0, blur)
	c.shadow = col
}

// SetCompositeOp changes the composite operation. Strokes made under the
// previous operation are composited before the change takes effect.
func (c *Canvas) SetCompositeOp(op CompositeOp) {
	if op == c.op {
		return
	}
	c.flush()
	c.op = op
}

// Stroke draws the current path. The path is kept until the next BeginPath.
func (c *Canvas) Stroke() {
	if len(c.path) == 0 || c.width <= 0 || c.base.Rect.Empty() {
		return
	}
	dc := c.baseDC
	if c.layered() {
		if c.layer == nil {
			c.layer = image.NewRGBA(c.base.Bounds())
			c.layerDC = newContext(c.layer)
		}
		dc = c.layerDC
		c.dirty = true
	}

	dc.ClearPath()
	for _, p := range c.path {
		switch p.kind {
		case opMove:
			dc.MoveTo(p.x, p.y)
		case opLine:
			dc.LineTo(p.x, p.y)
		case opArc:
			dc.DrawArc(p.x, p.y, p.r, p.a, p.b)
		case opClose:
			dc.ClosePath()
		}
	}
	dc.SetColor(c.stroke)
	dc.SetLineWidth(c.width)
	dc.Stroke()
}

// Bitmap composites pending strokes and returns a snapshot of the canvas.
// The canvas must not be drawn on until Bitmap returns.
func (c *Canvas) Bitmap(ctx context.Context) (image.Image, error) {
	if !c.bitmap {
		return nil, ErrUnsupported
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.flush()

	done := make(chan *image.NRGBA, 1)
	go func() { done <- imaging.Clone(c.base) }()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case img := <-done:
		return img, nil
	}
}

// Pixels composites pending strokes and copies the canvas into a new buffer.
func (c *Canvas) Pixels() (*PixelBuffer, error) {
	c.flush()
	b := c.base.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, c.base, b.Min, draw.Src)
	return &PixelBuffer{Width: b.Dx(), Height: b.Dy(), Stride: dst.Stride, Data: dst.Pix}, nil
}

func (c *Canvas) layered() bool {
	return c.op != SourceOver || c.shadowVisible()
}

func (c *Canvas) shadowVisible() bool {
	_, _, _, a := c.shadow.RGBA()
	return c.blur > 0 && a > 0
}

// flush composites the layer onto the base and clears it.
func (c *Canvas) flush() {
	if !c.dirty {
		return
	}
	if c.shadowVisible() {
		halo := imaging.Blur(c.layer, c.blur/2)
		compositeTinted(c.base, halo, color.NRGBAModel.Convert(c.shadow).(color.NRGBA), c.op)
	}
	composite(c.base, c.layer, c.op)
	clear(c.layer.Pix)
	c.dirty = false
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

// Ensure Canvas implements Surface.
var _ Surface = (*Canvas)(nil)
