package topology

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stormbolt/pkg/bolt"
)

// Options configures topology rendering.
type Options struct {
	// Detailed adds depth, step and segment counts to node labels.
	Detailed bool
}

var depthFill = []string{"#fff6c2", "#e3ecff", "#cddcff", "#b8ccf5"}

// ToDOT converts a branch table to Graphviz DOT.
// Branches that committed no segment are drawn dashed.
func ToDOT(branches []bolt.Branch, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph strike {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	for _, b := range branches {
		fmt.Fprintf(&buf, "  %q [%s];\n", nodeID(b.ID), strings.Join(fmtAttrs(b, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, b := range branches {
		if b.Parent < 0 {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", nodeID(b.Parent), nodeID(b.ID))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string {
	if id == bolt.MainBranch {
		return "main"
	}
	return "b" + strconv.Itoa(id)
}

func fmtLabel(b bolt.Branch, detailed bool) string {
	if !detailed {
		return nodeID(b.ID)
	}
	depth := "main"
	if b.Depth != bolt.MainDepth {
		depth = fmt.Sprintf("depth: %d", b.Depth)
	}
	return strings.Join([]string{
		nodeID(b.ID),
		depth,
		fmt.Sprintf("steps: %d", b.Steps),
		fmt.Sprintf("segments: %d", b.Segments),
	}, "\n")
}

func fmtAttrs(b bolt.Branch, detailed bool) []string {
	fill := depthFill[min(len(depthFill)-1, b.Depth+1)]
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(b, detailed)), fmt.Sprintf("fillcolor=%q", fill)}
	if b.Segments == 0 {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fontcolor=gray40")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from a zero origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
