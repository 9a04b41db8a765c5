package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stormbolt/pkg/buildinfo"
	"github.com/matzehuels/stormbolt/pkg/cache"
	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/pipeline"
	"github.com/matzehuels/stormbolt/pkg/surface"
	"github.com/matzehuels/stormbolt/pkg/worker"
)

func newTestServer(t *testing.T, configure func(*surface.Recorder)) *Server {
	t.Helper()
	w := worker.New(worker.WithSurfaceFactory(func(width, height int) surface.Surface {
		r := surface.NewRecorder(width, height)
		if configure != nil {
			configure(r)
		}
		return r
	}))
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(pipeline.NewRunner(w, c, nil, logger), WithLogger(logger))
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorDetail {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestStrikeDefaults(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/v1/strike", `{}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	var resp strikeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Width != 800 || resp.Height != 600 {
		t.Errorf("size = %dx%d, want 800x600", resp.Width, resp.Height)
	}
	if resp.ID == "" {
		t.Error("response has no id")
	}
	if resp.Image.Kind != "bitmap" || resp.Image.Encoding != "png" {
		t.Errorf("image = %s/%s", resp.Image.Kind, resp.Image.Encoding)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Image.Data)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("image is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("png bounds = %v", b)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id")
	}
}

func TestStrikeEmptyBody(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/v1/strike", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
}

func TestStrikeSeeded(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/v1/strike", `{"width": 64, "height": 48, "seed": 9}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp strikeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Seed != 9 || resp.Width != 64 || resp.Height != 48 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestStrikeRejectsBadInput(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		name string
		body string
		code apperr.Code
	}{
		{"negative width", `{"width": -5}`, apperr.ErrCodeInvalidDimensions},
		{"huge height", `{"height": 100000}`, apperr.ErrCodeInvalidDimensions},
		{"malformed", `{"width":`, apperr.ErrCodeInvalidInput},
		{"wrong type", `{"width": "wide"}`, apperr.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/strike", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decodeError(t, rec); got.Code != tt.code || got.Message == "" {
				t.Errorf("error = %+v, want code %s", got, tt.code)
			}
		})
	}
}

func TestStrikePixelFallback(t *testing.T) {
	s := newTestServer(t, func(r *surface.Recorder) { r.BitmapErr = surface.ErrUnsupported })
	rec := do(t, s, http.MethodPost, "/v1/strike", `{"width": 10, "height": 4}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp strikeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Image.Kind != "pixels" || resp.Image.Encoding != "rgba" || resp.Image.Stride != 40 {
		t.Errorf("image = %+v", resp.Image)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Image.Data)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 40*4 {
		t.Errorf("pixel data length = %d, want 160", len(data))
	}
}

func TestStrikeDegraded(t *testing.T) {
	s := newTestServer(t, func(r *surface.Recorder) {
		r.BitmapErr = surface.ErrUnsupported
		r.PixelsErr = errors.New("gone")
	})
	rec := do(t, s, http.MethodPost, "/v1/strike", `{}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != apperr.ErrCodeSurfaceExtraction {
		t.Errorf("code = %s", got.Code)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	for field, want := range map[string]string{
		"image":          "null",
		"shakeIntensity": "0",
		"didStrike":      "false",
		"width":          "800",
		"height":         "600",
	} {
		if got := string(body[field]); got != want {
			t.Errorf("%s = %s, want %s", field, got, want)
		}
	}
	if len(body["id"]) <= 2 {
		t.Errorf("id = %s, want the strike id", body["id"])
	}
}

func TestStrikePNG(t *testing.T) {
	s := newTestServer(t, nil)
	target := "/v1/strike.png?width=120&height=90&seed=0x2a"

	first := do(t, s, http.MethodGet, target, "")
	if first.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", first.Code, first.Body)
	}
	if ct := first.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	for _, h := range []string{"X-Shake-Intensity", "X-Did-Strike", "X-Request-Id"} {
		if first.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
	if got := first.Header().Get("X-Seed"); got != "42" {
		t.Errorf("X-Seed = %q, want 42", got)
	}
	if got := first.Header().Get("X-Cache"); got != "miss" {
		t.Errorf("first X-Cache = %q", got)
	}
	if _, err := png.Decode(bytes.NewReader(first.Body.Bytes())); err != nil {
		t.Errorf("body is not a PNG: %v", err)
	}

	second := do(t, s, http.MethodGet, target, "")
	if got := second.Header().Get("X-Cache"); got != "hit" {
		t.Errorf("second X-Cache = %q, want hit", got)
	}
	if second.Header().Get("X-Shake-Intensity") != first.Header().Get("X-Shake-Intensity") {
		t.Error("cached shake intensity differs")
	}
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Error("cached PNG differs")
	}
}

func TestStrikePNGUnseededNotCached(t *testing.T) {
	s := newTestServer(t, nil)
	for range 2 {
		rec := do(t, s, http.MethodGet, "/v1/strike.png?width=30&height=30", "")
		if rec.Header().Get("X-Cache") != "miss" {
			t.Error("unseeded request hit the cache")
		}
		if rec.Header().Get("Cache-Control") != "no-store" {
			t.Errorf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
		}
	}
}

func TestQueryErrors(t *testing.T) {
	s := newTestServer(t, nil)
	tests := []struct {
		target string
		code   apperr.Code
	}{
		{"/v1/strike.png?width=abc", apperr.ErrCodeInvalidDimensions},
		{"/v1/strike.png?height=-1", apperr.ErrCodeInvalidDimensions},
		{"/v1/strike.png?seed=nope", apperr.ErrCodeInvalidSeed},
		{"/v1/strike.png?scale=9", apperr.ErrCodeInvalidInput},
		{"/v1/topology.svg?detailed=maybe", apperr.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.target, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if got := decodeError(t, rec); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

func TestTopology(t *testing.T) {
	s := newTestServer(t, nil)

	svg := do(t, s, http.MethodGet, "/v1/topology.svg?seed=3&detailed=true", "")
	if svg.Code != http.StatusOK {
		t.Fatalf("svg status = %d, body = %s", svg.Code, svg.Body)
	}
	if !strings.Contains(svg.Body.String(), "<svg") {
		t.Error("svg body is not SVG")
	}

	dot := do(t, s, http.MethodGet, "/v1/topology.dot?seed=3", "")
	if !strings.HasPrefix(dot.Body.String(), "digraph strike {") {
		t.Errorf("dot body = %q", dot.Body.String())
	}
}

func TestStrikeJSON(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/v1/strike.json?width=100&height=100&seed=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var sum pipeline.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Seed != 1 || sum.Width != 100 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestVersionAndHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/v1/version", "")
	var info buildinfo.Info
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.Version != buildinfo.Version {
		t.Errorf("version = %q", info.Version)
	}

	if rec := do(t, s, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/v2/nothing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != apperr.ErrCodeNotFound {
		t.Errorf("code = %s", got.Code)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("X-Request-Id = %q", got)
	}
}
