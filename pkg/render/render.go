package render

import (
	"image/color"

	"github.com/matzehuels/stormbolt/pkg/bolt"
	"github.com/matzehuels/stormbolt/pkg/surface"
)

// Renderer draws segments in a glow pass followed by a core pass.
// A Renderer holds no per-call state and may be shared.
type Renderer struct {
	style Style
}

// New returns a renderer using style.
func New(style Style) *Renderer {
	return &Renderer{style: style}
}

// Style returns the renderer's style.
func (r *Renderer) Style() Style { return r.style }

// Draw clears s and draws segs onto it. It returns the number of strokes made,
// which is twice the number of segments.
func (r *Renderer) Draw(s surface.Surface, segs []bolt.Segment) int {
	w, h := s.Size()
	s.ClearRect(0, 0, float64(w), float64(h))
	if len(segs) == 0 {
		return 0
	}

	st := r.style

	// Glow
	s.SetCompositeOp(surface.Lighter)
	s.SetShadow(st.GlowBlur, st.ShadowColor.WithAlpha(st.ShadowAlpha))
	s.SetStrokeColor(st.GlowColor.WithAlpha(st.GlowAlpha))
	for _, seg := range segs {
		s.SetLineWidth(st.GlowWidth(seg.Width))
		trace(s, seg.Points)
		s.Stroke()
	}

	// Core
	s.SetShadow(0, color.Transparent)
	s.SetCompositeOp(surface.SourceOver)
	for _, seg := range segs {
		s.SetLineWidth(st.CoreWidth(seg.Width))
		s.SetStrokeColor(st.CoreColor(seg.Width))
		trace(s, seg.Points)
		s.Stroke()
	}
	return 2 * len(segs)
}

func trace(s surface.Surface, pts []bolt.Point) {
	s.BeginPath()
	if len(pts) == 0 {
		return
	}
	s.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		s.LineTo(p.X, p.Y)
	}
}
