// Package pkg provides the core libraries for Stormbolt procedural lightning.
//
// # Overview
//
// Stormbolt grows a fractal lightning bolt across a canvas, renders it in two
// passes (an additive blurred glow, then a sharp core) and reports how hard
// the strike should shake the camera. The pkg directory is organized into
// three areas:
//
//  1. Generation - [bolt] grows the path and its branches
//  2. Rendering - [surface], [render] and [result] turn segments into an image
//  3. Delivery - [worker], [pipeline], [cache] and [api] run strikes for callers
//
// # Architecture
//
// The data flow through one strike:
//
//	worker.Request (width, height, seed)
//	         ↓
//	    [bolt] Generator (main path + depth-capped branch task stack)
//	         ↓
//	    [bolt] Accumulator (segments, branch table, max width)
//	         ↓
//	    [render] Renderer (glow pass, core pass) onto a [surface] Surface
//	         ↓
//	    [result] Packager (bitmap, else pixels, else degraded)
//	         ↓
//	worker.Response (image, shake intensity, did strike)
//
// # Quick Start
//
// Run one reproducible strike:
//
//	w := worker.New()
//	resp := w.Strike(ctx, worker.NewRequest().WithSeed(42))
//	if resp.Err != nil {
//	    log.Fatal(resp.Err)
//	}
//	png, _ := resp.Image.EncodePNG()
//
// Produce cached artifacts:
//
//	runner := pipeline.NewRunner(w, fileCache, nil, logger)
//	res, _ := runner.Execute(ctx, pipeline.Options{
//	    Width: 800, Height: 600, Seed: &seed,
//	    Formats: []string{pipeline.FormatPNG, pipeline.FormatSVG},
//	})
//
// # Main Packages
//
// [bolt] - Path generator, branch generator and segment accumulator. All
// randomness comes from an injected source so seeded strikes repeat exactly.
//
// [surface] - The drawing surface contract, a gg-backed Canvas and a
// Recorder test double with fault injection.
//
// [render] - The two-pass renderer and its Style. [render/topology] exports
// the branch spawn tree as DOT or SVG.
//
// [result] - Shake intensity and image extraction with the pixel fallback.
//
// [worker] - The one-shot request/response boundary.
//
// [pipeline] - Encodes strikes as png, json, dot or svg and caches seeded runs.
//
// [cache] - File, Redis and MongoDB artifact caches.
//
// [api] - HTTP routes over the pipeline.
//
// [config] - TOML configuration.
//
// [bolt]: https://pkg.go.dev/github.com/matzehuels/stormbolt/pkg/bolt
// [surface]: https://pkg.go.dev/github.com/matzehuels/stormbolt/pkg/surface
// [render]: https://pkg.go.dev/github.com/matzehuels/stormbolt/pkg/render
// [render/topology]: https://pkg.go.dev/github.com/matzehuels/stormbolt/pkg/render/topology
// [result]: https://pkg.go.dev/github.com/matzehuels/stormbolt/pkg/result
// [worker]: https://pkg.go.dev/github.com/matzehuels/stormbolt/pkg/worker
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stormbolt/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/stormbolt/pkg/cache
// [api]: https://pkg.go.dev/github.com/matzehuels/stormbolt/pkg/api
// [config]: https://pkg.go.dev/github.com/matzehuels/stormbolt/pkg/config
package pkg
