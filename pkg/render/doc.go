// Package render draws committed bolt segments onto a [surface.Surface].
//
// # Two Passes
//
// [Renderer.Draw] makes exactly two passes over the segment list:
//
//   - Glow pass: additive compositing, a fixed shadow blur and one pale
//     stroke color. Each segment is stroked at [Style.GlowWidthFactor] times
//     its width.
//   - Core pass: no blur, source-over compositing, and a per-segment color
//     from [Style.CoreColor] so thick channels burn brighter than thin ones.
//
// Drawing state that is uniform across a pass is set once per pass, not once
// per segment. An empty segment list leaves the surface cleared.
//
//	r := render.New(render.DefaultStyle())
//	r.Draw(canvas, acc.Segments())
//
// The [topology] subpackage renders the branch spawn tree with Graphviz.
//
// [topology]: github.com/matzehuels/stormbolt/pkg/render/topology
package render
