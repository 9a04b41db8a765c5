package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stormbolt/pkg/bolt"
	"github.com/matzehuels/stormbolt/pkg/cache"
	"github.com/matzehuels/stormbolt/pkg/observability"
	"github.com/matzehuels/stormbolt/pkg/worker"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner is stateless except for the worker, cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Worker *worker.Worker
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration

	paramsHash string
	styleHash  string
}

// NewRunner creates a runner.
// If w is nil, a default worker is used.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(w *worker.Worker, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if w == nil {
		w = worker.New()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Worker:     w,
		Cache:      c,
		Keyer:      keyer,
		Logger:     logger,
		TTL:        cache.DefaultTTL,
		paramsHash: hashJSON(w.Params()),
		styleHash:  hashJSON(w.Style()),
	}
}

// Execute runs strike → encode with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	res := &Result{CacheInfo: CacheInfo{Cacheable: opts.Cacheable()}}
	strikeKey := r.Keyer.StrikeKey(opts.StrikeKeyOpts(r.paramsHash))

	if opts.Cacheable() {
		res.Seed = *opts.Seed
		if !opts.Refresh {
			if artifacts, ok := r.lookup(ctx, strikeKey, opts); ok {
				res.Artifacts = artifacts
				res.CacheInfo.Hit = true
				r.Logger.Info("served from cache", "seed", res.Seed, "formats", opts.Formats)
				return res, nil
			}
		}
	}

	// Stage 1: Strike
	genStart := time.Now()
	resp := r.Worker.Strike(ctx, opts.Request())
	if resp.Err != nil {
		return nil, fmt.Errorf("strike: %w", resp.Err)
	}
	res.Response = resp
	res.Seed = resp.Seed
	res.Stats.GenerateTime = time.Since(genStart)
	res.Stats.Segments = len(resp.Segments)
	res.Stats.Branches = len(resp.Branches)
	res.Stats.MaxDepth = maxDepth(resp.Segments)

	r.Logger.Info("generated strike",
		"seed", resp.Seed,
		"segments", res.Stats.Segments,
		"branches", res.Stats.Branches,
		"struck", resp.DidStrike,
		"duration", res.Stats.GenerateTime)

	// Stage 2: Encode
	encStart := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, err := Encode(ctx, resp, opts)
	res.Stats.EncodeTime = time.Since(encStart)
	hooks.OnRenderComplete(ctx, opts.Formats, res.Stats.EncodeTime, err)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	res.Artifacts = artifacts

	r.Logger.Info("encoded outputs",
		"formats", opts.Formats,
		"duration", res.Stats.EncodeTime)

	if opts.Cacheable() {
		r.store(ctx, strikeKey, opts, artifacts)
	}
	return res, nil
}

// lookup returns every requested artifact when all of them are cached.
func (r *Runner) lookup(ctx context.Context, strikeKey string, opts Options) (map[string][]byte, bool) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(strikeKey, opts.ArtifactKeyOpts(format, r.styleHash))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "format", format, "err", err)
		}
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, format)
			return nil, false
		}
		observability.Cache().OnCacheHit(ctx, format)
		artifacts[format] = data
	}
	return artifacts, true
}

// store writes artifacts to the cache. Failures are logged, not returned.
func (r *Runner) store(ctx context.Context, strikeKey string, opts Options, artifacts map[string][]byte) {
	for format, data := range artifacts {
		key := r.Keyer.ArtifactKey(strikeKey, opts.ArtifactKeyOpts(format, r.styleHash))
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "err", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, format, len(data))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func maxDepth(segs []bolt.Segment) int {
	d := bolt.MainDepth
	for _, s := range segs {
		d = max(d, s.Depth)
	}
	return d
}

func hashJSON(v any) string {
	data, _ := json.Marshal(v)
	return cache.Hash(data)
}
