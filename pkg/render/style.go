package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Hex is an RGB color written as "#rrggbb" in config files.
type Hex struct {
	colorful.Color
}

// MustHex parses s and panics on error. Intended for package-level defaults.
func MustHex(s string) Hex {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return Hex{c}
}

func (h Hex) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

func (h *Hex) UnmarshalText(b []byte) error {
	c, err := colorful.Hex(string(b))
	if err != nil {
		return fmt.Errorf("parse color %q: %w", b, err)
	}
	h.Color = c
	return nil
}

// WithAlpha returns the color with the given alpha in [0, 1].
func (h Hex) WithAlpha(a float64) color.NRGBA {
	r, g, b := h.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha255(a)}
}

// Style holds the shading constants of both passes.
type Style struct {
	GlowColor       Hex     `toml:"glow_color" json:"glow_color"`
	GlowAlpha       float64 `toml:"glow_alpha" json:"glow_alpha"`
	ShadowColor     Hex     `toml:"shadow_color" json:"shadow_color"`
	ShadowAlpha     float64 `toml:"shadow_alpha" json:"shadow_alpha"`
	GlowBlur        float64 `toml:"glow_blur" json:"glow_blur"`
	GlowWidthFactor float64 `toml:"glow_width_factor" json:"glow_width_factor"`
	GlowMinWidth    float64 `toml:"glow_min_width" json:"glow_min_width"`
	CoreMinWidth    float64 `toml:"core_min_width" json:"core_min_width"`

	// ReferenceWidth is the segment width that maps to full core brightness.
	ReferenceWidth     float64 `toml:"reference_width" json:"reference_width"`
	BrightnessExponent float64 `toml:"brightness_exponent" json:"brightness_exponent"`
	BrightnessFloor    float64 `toml:"brightness_floor" json:"brightness_floor"`
	AlphaFloor         float64 `toml:"alpha_floor" json:"alpha_floor"`
}

// DefaultStyle returns the stock pale blue-white look.
func DefaultStyle() Style {
	return Style{
		GlowColor:          MustHex("#dce6ff"),
		GlowAlpha:          0.9,
		ShadowColor:        MustHex("#c8dcff"),
		ShadowAlpha:        0.9,
		GlowBlur:           12,
		GlowWidthFactor:    2.4,
		GlowMinWidth:       1.0,
		CoreMinWidth:       0.6,
		ReferenceWidth:     12,
		BrightnessExponent: 0.9,
		BrightnessFloor:    0.05,
		AlphaFloor:         0.25,
	}
}

// Validate rejects styles that cannot produce a visible bolt.
func (s Style) Validate() error {
	switch {
	case s.ReferenceWidth <= 0:
		return fmt.Errorf("reference_width must be positive, got %v", s.ReferenceWidth)
	case s.GlowBlur < 0:
		return fmt.Errorf("glow_blur must not be negative, got %v", s.GlowBlur)
	case s.GlowWidthFactor <= 0:
		return fmt.Errorf("glow_width_factor must be positive, got %v", s.GlowWidthFactor)
	case s.BrightnessFloor < 0 || s.BrightnessFloor > 1:
		return fmt.Errorf("brightness_floor must be in [0,1], got %v", s.BrightnessFloor)
	case s.AlphaFloor < 0 || s.AlphaFloor > 1:
		return fmt.Errorf("alpha_floor must be in [0,1], got %v", s.AlphaFloor)
	}
	return nil
}

// Brightness maps a segment width to [BrightnessFloor, 1].
func (s Style) Brightness(width float64) float64 {
	n := clamp01(width / s.ReferenceWidth)
	return math.Pow(n, s.BrightnessExponent)*(1-s.BrightnessFloor) + s.BrightnessFloor
}

// CoreColor returns the core pass color of a segment: a gray level equal to
// its brightness, with alpha never below AlphaFloor.
func (s Style) CoreColor(width float64) color.NRGBA {
	b := s.Brightness(width)
	r, g, bl := colorful.Color{R: b, G: b, B: b}.RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: alpha255(max(s.AlphaFloor, b))}
}

// GlowWidth returns the glow pass stroke width of a segment.
func (s Style) GlowWidth(width float64) float64 {
	return max(s.GlowMinWidth, width*s.GlowWidthFactor)
}

// CoreWidth returns the core pass stroke width of a segment.
func (s Style) CoreWidth(width float64) float64 {
	return max(s.CoreMinWidth, width)
}

func clamp01(v float64) float64 { return max(0, min(1, v)) }

func alpha255(a float64) uint8 { return uint8(math.Round(255 * clamp01(a))) }
