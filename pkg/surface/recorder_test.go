package surface

import (
	"context"
	"errors"
	"image/color"
	"testing"
)

func TestRecorderRecordsStrokeState(t *testing.T) {
	r := NewRecorder(10, 10)
	r.SetCompositeOp(Lighter)
	r.SetShadow(12, color.White)
	r.BeginPath()
	r.MoveTo(1, 2)
	r.LineTo(3, 4)
	r.SetLineWidth(5)
	r.SetStrokeColor(color.White)
	r.Stroke()

	strokes := r.Strokes()
	if len(strokes) != 1 {
		t.Fatalf("strokes = %d, want 1", len(strokes))
	}
	s := strokes[0]
	if s.Width != 5 || s.Blur != 12 || s.Mode != Lighter || len(s.Path) != 2 {
		t.Errorf("stroke = %+v", s)
	}
	if r.Count("Stroke") != 1 || r.Count("MoveTo") != 1 {
		t.Errorf("counts: Stroke=%d MoveTo=%d", r.Count("Stroke"), r.Count("MoveTo"))
	}
}

func TestRecorderExtractionFaults(t *testing.T) {
	r := NewRecorder(3, 2)
	img, err := r.Bitmap(context.Background())
	if err != nil || img.Bounds().Dx() != 3 {
		t.Fatalf("Bitmap = %v, %v", img, err)
	}
	buf, err := r.Pixels()
	if err != nil || len(buf.Data) != 3*2*4 {
		t.Fatalf("Pixels = %+v, %v", buf, err)
	}

	r.BitmapErr = ErrUnsupported
	r.PixelsErr = ErrExtraction
	if _, err := r.Bitmap(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Bitmap error = %v", err)
	}
	if _, err := r.Pixels(); !errors.Is(err, ErrExtraction) {
		t.Errorf("Pixels error = %v", err)
	}
}
