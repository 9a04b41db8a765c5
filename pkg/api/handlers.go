package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/matzehuels/stormbolt/pkg/buildinfo"
	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/pipeline"
	"github.com/matzehuels/stormbolt/pkg/result"
	"github.com/matzehuels/stormbolt/pkg/worker"
)

// strikeResponse is the POST /v1/strike body.
type strikeResponse struct {
	ID             string       `json:"id"`
	Seed           uint64       `json:"seed"`
	Width          int          `json:"width"`
	Height         int          `json:"height"`
	ShakeIntensity float64      `json:"shakeIntensity"`
	DidStrike      bool         `json:"didStrike"`
	Segments       int          `json:"segments"`
	Branches       int          `json:"branches"`
	MaxWidth       float64      `json:"maxWidth"`
	ElapsedMS      float64      `json:"elapsedMs"`
	Image          imagePayload `json:"image"`
}

// degradedResponse is the POST /v1/strike body for a strike that produced no
// image: image is null, intensity zero and didStrike false, next to the usual
// error envelope.
type degradedResponse struct {
	ID             string        `json:"id"`
	Seed           uint64        `json:"seed"`
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	ShakeIntensity float64       `json:"shakeIntensity"`
	DidStrike      bool          `json:"didStrike"`
	Image          *imagePayload `json:"image"`
	Error          errorDetail   `json:"error"`
}

// imagePayload carries a PNG for bitmaps and raw RGBA rows for pixel buffers.
type imagePayload struct {
	Kind     result.Kind `json:"kind"`
	Encoding string      `json:"encoding"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Stride   int         `json:"stride,omitempty"`
	Data     string      `json:"data"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleStrike(w http.ResponseWriter, r *http.Request) {
	req := worker.NewRequest()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if err := apperr.ValidateDimensions(req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := s.runner.Worker.Strike(r.Context(), req)
	if resp.Err != nil {
		status, detail := s.describe(r, resp.Err)
		s.writeJSON(w, status, degradedResponse{
			ID:     resp.ID,
			Seed:   resp.Seed,
			Width:  resp.Width,
			Height: resp.Height,
			Error:  detail,
		})
		return
	}

	payload, err := encodeImage(resp.Image)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, strikeResponse{
		ID:             resp.ID,
		Seed:           resp.Seed,
		Width:          resp.Width,
		Height:         resp.Height,
		ShakeIntensity: resp.ShakeIntensity,
		DidStrike:      resp.DidStrike,
		Segments:       len(resp.Segments),
		Branches:       len(resp.Branches),
		MaxWidth:       resp.MaxWidth,
		ElapsedMS:      float64(resp.Elapsed.Microseconds()) / 1000,
		Image:          payload,
	})
}

func encodeImage(im *result.Image) (imagePayload, error) {
	if im == nil {
		return imagePayload{}, apperr.New(apperr.ErrCodeEncodeFailed, "strike produced no image")
	}
	b := im.Bounds()
	p := imagePayload{Kind: im.Kind, Width: b.Dx(), Height: b.Dy()}
	if im.Kind == result.KindPixels && im.Pixels != nil {
		p.Encoding = "rgba"
		p.Stride = im.Pixels.Stride
		p.Data = base64.StdEncoding.EncodeToString(im.Pixels.Data)
		return p, nil
	}
	data, err := im.EncodePNG()
	if err != nil {
		return imagePayload{}, err
	}
	p.Encoding = "png"
	p.Data = base64.StdEncoding.EncodeToString(data)
	return p, nil
}

var contentTypes = map[string]string{
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// handleArtifact serves one pipeline format. The json summary is always
// produced alongside so the strike headers survive cache hits.
func (s *Server) handleArtifact(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := parseQuery(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}
		if format != pipeline.FormatJSON {
			opts.Formats = append(opts.Formats, pipeline.FormatJSON)
		}

		res, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var sum pipeline.Summary
		if err := json.Unmarshal(res.Artifacts[pipeline.FormatJSON], &sum); err != nil {
			s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInternal, err, "read strike summary"))
			return
		}

		h := w.Header()
		h.Set("Content-Type", contentTypes[format])
		h.Set("X-Seed", strconv.FormatUint(res.Seed, 10))
		h.Set("X-Shake-Intensity", strconv.FormatFloat(sum.ShakeIntensity, 'f', -1, 64))
		h.Set("X-Did-Strike", strconv.FormatBool(sum.DidStrike))
		if res.CacheInfo.Hit {
			h.Set("X-Cache", "hit")
		} else {
			h.Set("X-Cache", "miss")
		}
		if opts.Cacheable() {
			h.Set("Cache-Control", "public, max-age=86400, immutable")
		} else {
			h.Set("Cache-Control", "no-store")
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Artifacts[format])
	}
}

// parseQuery reads width, height, seed, scale, detailed and refresh.
func parseQuery(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Width:  pipeline.DefaultWidth,
		Height: pipeline.DefaultHeight,
	}

	var err error
	if v := q.Get("width"); v != "" {
		if opts.Width, err = strconv.Atoi(v); err != nil {
			return opts, apperr.Wrap(apperr.ErrCodeInvalidDimensions, err, "invalid width %q", v)
		}
	}
	if v := q.Get("height"); v != "" {
		if opts.Height, err = strconv.Atoi(v); err != nil {
			return opts, apperr.Wrap(apperr.ErrCodeInvalidDimensions, err, "invalid height %q", v)
		}
	}
	if v := q.Get("seed"); v != "" {
		seed, err := apperr.ParseSeed(v)
		if err != nil {
			return opts, err
		}
		opts.Seed = &seed
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			return opts, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid scale %q", v)
		}
	}
	if v := q.Get("detailed"); v != "" {
		if opts.Detailed, err = strconv.ParseBool(v); err != nil {
			return opts, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid detailed flag %q", v)
		}
	}
	if v := q.Get("refresh"); v != "" {
		if opts.Refresh, err = strconv.ParseBool(v); err != nil {
			return opts, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid refresh flag %q", v)
		}
	}
	return opts, nil
}
