package topology

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/stormbolt/pkg/bolt"
)

var sample = []bolt.Branch{
	{ID: 0, Parent: -1, Depth: bolt.MainDepth, Steps: 150, Segments: 1},
	{ID: 1, Parent: 0, Depth: 0, Steps: 40, Segments: 2},
	{ID: 2, Parent: 1, Depth: 1, Steps: 3, Segments: 0},
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample, Options{})

	for _, want := range []string{
		"digraph strike {",
		`"main" [label="main"`,
		`"main" -> "b1";`,
		`"b1" -> "b2";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Count(dot, "->") != 2 {
		t.Errorf("edges = %d, want 2", strings.Count(dot, "->"))
	}
	// b2 committed nothing and is drawn dashed.
	if !strings.Contains(dot, `"b2" [label="b2", fillcolor="#cddcff", style="rounded,filled,dashed"`) {
		t.Errorf("empty branch not dashed:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample, Options{Detailed: true})
	if !strings.Contains(dot, `depth: 1\nsteps: 3\nsegments: 0`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if !strings.HasPrefix(dot, "digraph strike {") || strings.Contains(dot, "->") {
		t.Errorf("unexpected DOT for empty table:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample, Options{Detailed: true}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Fatal("output is not SVG")
	}
	if !bytes.Contains(svg, []byte(`viewBox="0 0 `)) {
		t.Error("viewBox not normalized")
	}
}

func TestRenderSVGInvalid(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" viewBox="0.00 0.00 120.50 80.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 120.50 80.00" width="120" height="80">`) {
		t.Errorf("normalized = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("svg without viewBox changed: %s", got)
	}
}
