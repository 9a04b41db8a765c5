package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"

	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/render/topology"
	"github.com/matzehuels/stormbolt/pkg/result"
	"github.com/matzehuels/stormbolt/pkg/worker"
)

// Encode renders every requested format from a worker response.
func Encode(ctx context.Context, resp worker.Response, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatPNG:
			data, err = EncodePNG(resp.Image, opts.Scale)
		case FormatJSON:
			data, err = json.MarshalIndent(Summarize(resp), "", "  ")
		case FormatDOT:
			if dot == "" {
				dot = topology.ToDOT(resp.Branches, topology.Options{Detailed: opts.Detailed})
			}
			data = []byte(dot)
		case FormatSVG:
			if dot == "" {
				dot = topology.ToDOT(resp.Branches, topology.Options{Detailed: opts.Detailed})
			}
			data, err = topology.RenderSVG(ctx, dot)
		default:
			err = apperr.New(apperr.ErrCodeInvalidFormat, "unknown format %q", format)
		}
		if err != nil {
			if apperr.GetCode(err) == "" {
				err = apperr.Wrap(apperr.ErrCodeEncodeFailed, err, "encode %s", format)
			}
			return nil, err
		}
		out[format] = data
	}
	return out, nil
}

// EncodePNG encodes an image as PNG, resampling it first when scale is not 1.
func EncodePNG(im *result.Image, scale float64) ([]byte, error) {
	if im == nil {
		return nil, apperr.New(apperr.ErrCodeEncodeFailed, "no image to encode")
	}
	if scale == 0 || scale == 1 || im.Bounds().Empty() {
		return im.EncodePNG()
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, result.Scale(im.Decoded(), scale)); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeEncodeFailed, err, "encode png")
	}
	return buf.Bytes(), nil
}

// Summarize converts a worker response to its json artifact.
func Summarize(resp worker.Response) Summary {
	s := Summary{
		Seed:           resp.Seed,
		Width:          resp.Width,
		Height:         resp.Height,
		DidStrike:      resp.DidStrike,
		ShakeIntensity: resp.ShakeIntensity,
		MaxWidth:       resp.MaxWidth,
		Segments:       make([]SegmentSummary, len(resp.Segments)),
		Branches:       resp.Branches,
	}
	if resp.Image != nil {
		s.Image = string(resp.Image.Kind)
	}
	for i, seg := range resp.Segments {
		s.Segments[i] = SegmentSummary{Branch: seg.Branch, Depth: seg.Depth, Width: seg.Width, Points: seg.Points}
	}
	return s
}
