// Package pipeline turns strike requests into encoded artifacts.
//
// The pipeline runs a strike through the [worker] and encodes the response in
// one or more formats:
//
//   - png: the rendered bolt, optionally rescaled
//   - json: a [Summary] of the strike geometry
//   - dot: the branch spawn tree in Graphviz DOT
//   - svg: the branch spawn tree laid out by Graphviz
//
// Seeded runs are deterministic and are cached; unseeded runs never are.
//
// # Usage
//
//	runner := pipeline.NewRunner(worker.New(), cache, nil, logger)
//	seed := uint64(42)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Width:   800,
//	    Height:  600,
//	    Seed:    &seed,
//	    Formats: []string{pipeline.FormatPNG, pipeline.FormatJSON},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts[pipeline.FormatPNG]
//
// [worker]: github.com/matzehuels/stormbolt/pkg/worker
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stormbolt/pkg/bolt"
	"github.com/matzehuels/stormbolt/pkg/cache"
	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/worker"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = worker.DefaultWidth

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = worker.DefaultHeight

	// DefaultScale leaves the PNG at canvas size.
	DefaultScale = 1.0
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatPNG, FormatJSON, FormatDOT, FormatSVG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Seed   *uint64 `json:"seed,omitempty"`

	Formats []string `json:"formats,omitempty"`
	// Scale resizes the PNG output; 1 keeps canvas size.
	Scale float64 `json:"scale,omitempty"`
	// Detailed adds counts to topology node labels.
	Detailed bool `json:"detailed,omitempty"`
	// Refresh skips cache reads but still writes.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Response is the worker response. It is zero when every artifact came
	// from the cache.
	Response worker.Response

	// Seed is the seed the strike was generated from.
	Seed uint64

	// Artifacts contains encoded outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo reports how the cache was used.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Segments     int
	Branches     int
	MaxDepth     int
	GenerateTime time.Duration
	EncodeTime   time.Duration
}

// CacheInfo tracks cache use for a run.
type CacheInfo struct {
	Cacheable bool // Whether the run was seeded and could use the cache
	Hit       bool // Whether all artifacts came from cache
}

// Summary is the json artifact: the strike outcome and its geometry without pixels.
type Summary struct {
	Seed           uint64           `json:"seed"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	DidStrike      bool             `json:"did_strike"`
	ShakeIntensity float64          `json:"shake_intensity"`
	MaxWidth       float64          `json:"max_width"`
	Image          string           `json:"image,omitempty"`
	Segments       []SegmentSummary `json:"segments"`
	Branches       []bolt.Branch    `json:"branches"`
}

// SegmentSummary describes one committed segment.
type SegmentSummary struct {
	Branch int          `json:"branch"`
	Depth  int          `json:"depth"`
	Width  float64      `json:"width"`
	Points []bolt.Point `json:"points"`
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := apperr.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	for _, f := range o.Formats {
		if err := apperr.ValidateFormat(f, ValidFormats); err != nil {
			return err
		}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if err := apperr.ValidateScale(o.Scale); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Cacheable reports whether the run is deterministic and may use the cache.
func (o *Options) Cacheable() bool {
	return o.Seed != nil
}

// Request returns the worker request for these options.
func (o *Options) Request() worker.Request {
	return worker.Request{Width: o.Width, Height: o.Height, Seed: o.Seed}
}

// StrikeKeyOpts returns cache key options for the strike geometry.
func (o *Options) StrikeKeyOpts(paramsHash string) cache.StrikeKeyOpts {
	var seed uint64
	if o.Seed != nil {
		seed = *o.Seed
	}
	return cache.StrikeKeyOpts{Width: o.Width, Height: o.Height, Seed: seed, ParamsHash: paramsHash}
}

// ArtifactKeyOpts returns cache key options for one encoded format.
// Only the PNG depends on the style and scale.
func (o *Options) ArtifactKeyOpts(format, styleHash string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		opts.Scale = o.Scale
		opts.StyleHash = styleHash
	case FormatDOT, FormatSVG:
		opts.Detailed = o.Detailed
	}
	return opts
}
