package result

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"math"
	"testing"

	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/surface"
)

type summary struct {
	strike bool
	width  float64
}

func (s summary) DidStrike() bool   { return s.strike }
func (s summary) MaxWidth() float64 { return s.width }

func TestShakeIntensity(t *testing.T) {
	tests := []struct {
		name   string
		strike bool
		width  float64
		want   float64
	}{
		{"no strike", false, 8, 0},
		{"main only", true, 8, 8.0 / 12},
		{"thin floor", true, 0.1, MinShake},
		{"saturates", true, 30, 1},
		{"reference", true, 12, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShakeIntensity(tt.strike, tt.width); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("ShakeIntensity(%v, %v) = %v, want %v", tt.strike, tt.width, got, tt.want)
			}
		})
	}
}

func TestPackageBitmap(t *testing.T) {
	rec := surface.NewRecorder(10, 5)
	res := Packager{}.Package(context.Background(), rec, summary{true, 8})

	if res.Err != nil {
		t.Fatalf("Err = %v", res.Err)
	}
	if res.Image == nil || res.Image.Kind != KindBitmap {
		t.Fatalf("image = %+v, want bitmap", res.Image)
	}
	if rec.Count("Pixels") != 0 {
		t.Error("Pixels called although bitmap succeeded")
	}
	if !res.DidStrike || math.Abs(res.ShakeIntensity-0.6667) > 1e-3 {
		t.Errorf("strike=%v shake=%v", res.DidStrike, res.ShakeIntensity)
	}
}

func TestPackageFallsBackToPixels(t *testing.T) {
	rec := surface.NewRecorder(10, 5)
	rec.BitmapErr = surface.ErrUnsupported
	res := Packager{}.Package(context.Background(), rec, summary{true, 4})

	if res.Err != nil {
		t.Fatalf("fallback should not report an error: %v", res.Err)
	}
	if res.Image == nil || res.Image.Kind != KindPixels || res.Image.Pixels.Width != 10 {
		t.Fatalf("image = %+v, want pixel buffer", res.Image)
	}
	if !res.DidStrike || res.ShakeIntensity != ShakeIntensity(true, 4) {
		t.Errorf("strike=%v shake=%v", res.DidStrike, res.ShakeIntensity)
	}
}

func TestPackageBothFail(t *testing.T) {
	rec := surface.NewRecorder(10, 5)
	rec.BitmapErr = surface.ErrUnsupported
	rec.PixelsErr = errors.New("context lost")
	res := Packager{}.Package(context.Background(), rec, summary{true, 8})

	if res.Image != nil || res.ShakeIntensity != 0 || res.DidStrike {
		t.Errorf("degraded result = %+v", res)
	}
	if res.Err == nil || res.Err.Error() == "" {
		t.Fatal("expected populated error")
	}
	if !apperr.Is(res.Err, apperr.ErrCodeSurfaceExtraction) {
		t.Errorf("code = %v", apperr.GetCode(res.Err))
	}
	if !errors.Is(res.Err, surface.ErrUnsupported) {
		t.Error("bitmap cause lost from error chain")
	}
}

func TestPackageNoStrike(t *testing.T) {
	res := Packager{}.Package(context.Background(), surface.NewRecorder(4, 4), summary{false, 0})
	if res.Err != nil || res.Image == nil {
		t.Fatalf("blank surface should still package: %+v", res)
	}
	if res.DidStrike || res.ShakeIntensity != 0 {
		t.Errorf("strike=%v shake=%v", res.DidStrike, res.ShakeIntensity)
	}
}

func TestEncodePNG(t *testing.T) {
	for _, kind := range []Kind{KindBitmap, KindPixels} {
		t.Run(string(kind), func(t *testing.T) {
			rec := surface.NewRecorder(6, 3)
			if kind == KindPixels {
				rec.BitmapErr = surface.ErrUnsupported
			}
			res := Packager{}.Package(context.Background(), rec, summary{})
			data, err := res.Image.EncodePNG()
			if err != nil {
				t.Fatalf("EncodePNG: %v", err)
			}
			img, err := png.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 3 {
				t.Errorf("bounds = %v", b)
			}
		})
	}
}

func TestEncodePNGEmpty(t *testing.T) {
	res := Packager{}.Package(context.Background(), surface.NewRecorder(0, 0), summary{})
	if _, err := res.Image.EncodePNG(); err != nil {
		t.Errorf("EncodePNG on 0x0: %v", err)
	}
	if _, err := (&Image{}).EncodePNG(); !apperr.Is(err, apperr.ErrCodeEncodeFailed) {
		t.Errorf("empty Image error = %v", err)
	}
}

func TestScale(t *testing.T) {
	rec := surface.NewRecorder(100, 50)
	res := Packager{}.Package(context.Background(), rec, summary{})

	half := Scale(res.Image.Decoded(), 0.5)
	if b := half.Bounds(); b.Dx() != 50 || b.Dy() != 25 {
		t.Errorf("scaled bounds = %v", b)
	}
	if same := Scale(res.Image.Decoded(), 1); same != res.Image.Decoded() {
		t.Error("factor 1 should return src")
	}
}
