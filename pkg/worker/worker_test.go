package worker

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/observability"
	"github.com/matzehuels/stormbolt/pkg/result"
	"github.com/matzehuels/stormbolt/pkg/surface"
)

func recorderFactory(configure func(*surface.Recorder)) SurfaceFactory {
	return func(w, h int) surface.Surface {
		r := surface.NewRecorder(w, h)
		if configure != nil {
			configure(r)
		}
		return r
	}
}

func TestStrikeCanvas(t *testing.T) {
	w := New()
	resp := w.Strike(context.Background(), NewRequest().WithSeed(7))

	if resp.Error != "" {
		t.Fatalf("Error = %q", resp.Error)
	}
	if resp.ID == "" {
		t.Error("response has no ID")
	}
	if !resp.DidStrike {
		t.Fatal("800x600 strike should commit at least the main path")
	}
	if resp.ShakeIntensity < result.MinShake || resp.ShakeIntensity > 1 {
		t.Errorf("shake = %v out of range", resp.ShakeIntensity)
	}
	if resp.Image == nil || resp.Image.Kind != result.KindBitmap {
		t.Fatalf("image = %+v, want bitmap", resp.Image)
	}
	if b := resp.Image.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("bounds = %v", b)
	}
	if resp.Seed != 7 {
		t.Errorf("seed = %d, want 7", resp.Seed)
	}
}

func TestSubmitSendsExactlyOne(t *testing.T) {
	w := New(WithSurfaceFactory(recorderFactory(nil)))
	ch := w.Submit(context.Background(), NewRequest())

	select {
	case _, ok := <-ch:
		if !ok {
			t.Fatal("channel closed without a response")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("no response")
	}
	if _, ok := <-ch; ok {
		t.Error("received a second response")
	}
}

func TestStrikeDegenerateCanvas(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"zero width", Request{Width: 0, Height: 600}},
		{"zero height", Request{Width: 800, Height: 0}},
		{"negative", Request{Width: -5, Height: -5}},
	}
	w := New(WithSurfaceFactory(recorderFactory(nil)))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := w.Strike(context.Background(), tt.req)
			if resp.DidStrike || resp.ShakeIntensity != 0 {
				t.Errorf("strike=%v shake=%v, want no strike", resp.DidStrike, resp.ShakeIntensity)
			}
			if resp.Error != "" {
				t.Errorf("no-strike is not an error, got %q", resp.Error)
			}
			if resp.Image == nil {
				t.Error("blank surface should still be returned")
			}
			if resp.Width < 0 || resp.Height < 0 {
				t.Errorf("dimensions not clamped: %dx%d", resp.Width, resp.Height)
			}
		})
	}
}

func TestStrikeRefusesOversizedCanvas(t *testing.T) {
	var made int
	w := New(WithSurfaceFactory(func(width, height int) surface.Surface {
		made++
		return surface.NewRecorder(width, height)
	}))

	for _, req := range []Request{
		{Width: 30000, Height: 30000},
		{Width: apperr.MaxDimension + 1, Height: 10},
		{Width: 10, Height: apperr.MaxDimension + 1},
	} {
		var got []Response
		for resp := range w.Submit(context.Background(), req) {
			got = append(got, resp)
		}
		if len(got) != 1 {
			t.Fatalf("%dx%d: responses = %d, want exactly 1", req.Width, req.Height, len(got))
		}
		resp := got[0]
		if apperr.GetCode(resp.Err) != apperr.ErrCodeInvalidDimensions {
			t.Errorf("%dx%d: code = %q, want %q", req.Width, req.Height, apperr.GetCode(resp.Err), apperr.ErrCodeInvalidDimensions)
		}
		if resp.Image != nil || resp.DidStrike || resp.ShakeIntensity != 0 || resp.Error == "" {
			t.Errorf("%dx%d: response not degraded: %+v", req.Width, req.Height, resp)
		}
	}
	if made != 0 {
		t.Errorf("surfaces created = %d, want none for oversized requests", made)
	}

	resp := w.Strike(context.Background(), Request{Width: apperr.MaxDimension, Height: 1})
	if resp.Err != nil {
		t.Errorf("MaxDimension should be accepted, got %v", resp.Err)
	}
}

func TestStrikeBitmapFallback(t *testing.T) {
	w := New(WithSurfaceFactory(recorderFactory(func(r *surface.Recorder) {
		r.BitmapErr = surface.ErrUnsupported
	})))
	resp := w.Strike(context.Background(), NewRequest().WithSeed(3))

	if resp.Error != "" {
		t.Fatalf("fallback must not set Error, got %q", resp.Error)
	}
	if resp.Image == nil || resp.Image.Kind != result.KindPixels {
		t.Fatalf("image = %+v, want pixel buffer", resp.Image)
	}
	if !resp.DidStrike || resp.ShakeIntensity != result.ShakeIntensity(true, resp.MaxWidth) {
		t.Errorf("strike=%v shake=%v", resp.DidStrike, resp.ShakeIntensity)
	}
}

func TestStrikeBothExtractionsFail(t *testing.T) {
	w := New(WithSurfaceFactory(recorderFactory(func(r *surface.Recorder) {
		r.BitmapErr = surface.ErrUnsupported
		r.PixelsErr = errors.New("surface lost")
	})))
	resp := w.Strike(context.Background(), NewRequest().WithSeed(3))

	if resp.Image != nil || resp.ShakeIntensity != 0 || resp.DidStrike {
		t.Errorf("degraded response = %+v", resp)
	}
	if resp.Error == "" {
		t.Error("Error should be populated")
	}
	if !apperr.Is(resp.Err, apperr.ErrCodeSurfaceExtraction) {
		t.Errorf("code = %v", apperr.GetCode(resp.Err))
	}
}

func TestStrikeRecoversPanics(t *testing.T) {
	w := New(WithSurfaceFactory(func(int, int) surface.Surface { panic("no GPU") }))
	resp := w.Strike(context.Background(), NewRequest())

	if resp.Error == "" || !apperr.Is(resp.Err, apperr.ErrCodeInternal) {
		t.Fatalf("panic not converted: %+v", resp)
	}
	if resp.Image != nil || resp.DidStrike || resp.ShakeIntensity != 0 {
		t.Errorf("degraded response = %+v", resp)
	}
}

func TestStrikeSeededIsReproducible(t *testing.T) {
	w := New(WithSurfaceFactory(recorderFactory(nil)))
	a := w.Strike(context.Background(), NewRequest().WithSeed(2024))
	b := w.Strike(context.Background(), NewRequest().WithSeed(2024))

	if !reflect.DeepEqual(a.Segments, b.Segments) {
		t.Error("equal seeds produced different segments")
	}
	if a.ID == b.ID {
		t.Error("request IDs should be unique")
	}
}

func TestStrikeConcurrent(t *testing.T) {
	w := New(WithSurfaceFactory(recorderFactory(nil)))
	const n = 16

	var wg sync.WaitGroup
	responses := make([]Response, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			responses[i] = w.Strike(context.Background(), Request{Width: 200 + i, Height: 300})
		}()
	}
	wg.Wait()

	for i, r := range responses {
		if r.Width != 200+i {
			t.Errorf("response %d width = %d, responses crossed", i, r.Width)
		}
		if r.Error != "" {
			t.Errorf("response %d error: %s", i, r.Error)
		}
	}
}

type countingHooks struct {
	observability.NoopStrikeHooks
	mu             sync.Mutex
	starts, finals int
}

func (h *countingHooks) OnStrikeStart(context.Context, string, int, int) {
	h.mu.Lock()
	h.starts++
	h.mu.Unlock()
}

func (h *countingHooks) OnStrikeComplete(context.Context, string, int, float64, time.Duration, error) {
	h.mu.Lock()
	h.finals++
	h.mu.Unlock()
}

func TestStrikeHooks(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetStrikeHooks(hooks)
	defer observability.Reset()

	w := New(WithSurfaceFactory(recorderFactory(nil)))
	w.Strike(context.Background(), NewRequest())
	New(WithSurfaceFactory(func(int, int) surface.Surface { panic("boom") })).
		Strike(context.Background(), NewRequest())

	if hooks.starts != 2 || hooks.finals != 2 {
		t.Errorf("starts=%d finals=%d, want 2 each", hooks.starts, hooks.finals)
	}
}

func TestRequestJSONDefaults(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Request
	}{
		{"empty", `{}`, Request{Width: 800, Height: 600}},
		{"width only", `{"width": 320}`, Request{Width: 320, Height: 600}},
		{"explicit zero", `{"width": 0, "height": 0}`, Request{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Request
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}

	var seeded Request
	if err := json.Unmarshal([]byte(`{"seed": 42}`), &seeded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if seeded.Seed == nil || *seeded.Seed != 42 {
		t.Errorf("seed = %v, want 42", seeded.Seed)
	}
}
