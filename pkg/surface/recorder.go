package surface

import (
	"context"
	"image"
	"image/color"
	"sync"
)

// Call is one recorded Surface method invocation.
type Call struct {
	Op    string
	Args  []float64
	Color color.Color
	Mode  CompositeOp
}

// StrokeRecord captures the drawing state in effect at a Stroke call.
type StrokeRecord struct {
	Path        [][2]float64
	Width       float64
	Color       color.Color
	Blur        float64
	ShadowColor color.Color
	Mode        CompositeOp
}

// Recorder is a Surface that draws nothing and records every call.
//
// BitmapErr and PixelsErr, when set, are returned by the matching extraction
// method. Extractions otherwise return blank images of the recorder's size.
type Recorder struct {
	W, H      int
	BitmapErr error
	PixelsErr error

	mu      sync.Mutex
	calls   []Call
	strokes []StrokeRecord

	path   [][2]float64
	stroke color.Color
	width  float64
	blur   float64
	shadow color.Color
	mode   CompositeOp
}

// NewRecorder returns a recorder reporting the given size.
func NewRecorder(w, h int) *Recorder {
	return &Recorder{W: w, H: h, stroke: color.Black, width: 1, shadow: color.Transparent}
}

func (r *Recorder) record(c Call) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *Recorder) Size() (int, int) { return r.W, r.H }

func (r *Recorder) ClearRect(x, y, w, h float64) {
	r.record(Call{Op: "ClearRect", Args: []float64{x, y, w, h}})
}

func (r *Recorder) BeginPath() {
	r.path = nil
	r.record(Call{Op: "BeginPath"})
}

func (r *Recorder) MoveTo(x, y float64) {
	r.path = append(r.path, [2]float64{x, y})
	r.record(Call{Op: "MoveTo", Args: []float64{x, y}})
}

func (r *Recorder) LineTo(x, y float64) {
	r.path = append(r.path, [2]float64{x, y})
	r.record(Call{Op: "LineTo", Args: []float64{x, y}})
}

func (r *Recorder) Arc(x, y, rad, start, end float64) {
	r.record(Call{Op: "Arc", Args: []float64{x, y, rad, start, end}})
}

func (r *Recorder) ClosePath() { r.record(Call{Op: "ClosePath"}) }

func (r *Recorder) SetStrokeColor(c color.Color) {
	r.stroke = c
	r.record(Call{Op: "SetStrokeColor", Color: c})
}

func (r *Recorder) SetLineWidth(w float64) {
	r.width = w
	r.record(Call{Op: "SetLineWidth", Args: []float64{w}})
}

func (r *Recorder) SetShadow(blur float64, c color.Color) {
	r.blur, r.shadow = blur, c
	r.record(Call{Op: "SetShadow", Args: []float64{blur}, Color: c})
}

func (r *Recorder) SetCompositeOp(op CompositeOp) {
	r.mode = op
	r.record(Call{Op: "SetCompositeOp", Mode: op})
}

func (r *Recorder) Stroke() {
	rec := StrokeRecord{
		Path:        append([][2]float64(nil), r.path...),
		Width:       r.width,
		Color:       r.stroke,
		Blur:        r.blur,
		ShadowColor: r.shadow,
		Mode:        r.mode,
	}
	r.mu.Lock()
	r.strokes = append(r.strokes, rec)
	r.mu.Unlock()
	r.record(Call{Op: "Stroke"})
}

func (r *Recorder) Bitmap(ctx context.Context) (image.Image, error) {
	r.record(Call{Op: "Bitmap"})
	if r.BitmapErr != nil {
		return nil, r.BitmapErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return image.NewNRGBA(image.Rect(0, 0, max(0, r.W), max(0, r.H))), nil
}

func (r *Recorder) Pixels() (*PixelBuffer, error) {
	r.record(Call{Op: "Pixels"})
	if r.PixelsErr != nil {
		return nil, r.PixelsErr
	}
	w, h := max(0, r.W), max(0, r.H)
	return &PixelBuffer{Width: w, Height: h, Stride: 4 * w, Data: make([]byte, 4*w*h)}, nil
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Strokes returns a copy of the recorded strokes.
func (r *Recorder) Strokes() []StrokeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]StrokeRecord(nil), r.strokes...)
}

// Count returns how many times the named method was called.
func (r *Recorder) Count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

var _ Surface = (*Recorder)(nil)
