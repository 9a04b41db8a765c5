// Package topology renders the branch spawn tree of a strike.
//
// Every executed stepping task becomes a node; an edge runs from the task that
// spawned a branch to the branch. [ToDOT] produces Graphviz DOT text and
// [RenderSVG] lays it out with Graphviz.
//
//	dot := topology.ToDOT(resp.Branches, topology.Options{Detailed: true})
//	svg, err := topology.RenderSVG(ctx, dot)
package topology
