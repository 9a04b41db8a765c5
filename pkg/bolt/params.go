package bolt

import (
	"fmt"
	"math"
)

// Params holds the tuned constants of the generator. Ranges are expressed as
// [Min, Max] pairs for uniform draws or as half-widths (Spread, Noise) for
// draws symmetric around zero.
type Params struct {
	// Main path
	MainMinSteps    int     `toml:"main_min_steps" json:"main_min_steps"`
	MainStepDivisor float64 `toml:"main_step_divisor" json:"main_step_divisor"`
	InitialBearing  float64 `toml:"initial_bearing" json:"initial_bearing"`
	TargetSpread    float64 `toml:"target_spread" json:"target_spread"`
	StepScaleMin    float64 `toml:"step_scale_min" json:"step_scale_min"`
	StepScaleMax    float64 `toml:"step_scale_max" json:"step_scale_max"`
	StepJitterMin   float64 `toml:"step_jitter_min" json:"step_jitter_min"`
	StepJitterMax   float64 `toml:"step_jitter_max" json:"step_jitter_max"`
	MainWidth       float64 `toml:"main_width" json:"main_width"`
	MainNoise       float64 `toml:"main_noise" json:"main_noise"`
	MainRelax       float64 `toml:"main_relax" json:"main_relax"`

	// Branch spawning from the main path
	BranchChance   float64 `toml:"branch_chance" json:"branch_chance"`
	BranchSpread   float64 `toml:"branch_spread" json:"branch_spread"`
	BranchWidthMin float64 `toml:"branch_width_min" json:"branch_width_min"`
	BranchWidthMax float64 `toml:"branch_width_max" json:"branch_width_max"`

	// Branch stepping
	BranchStepMin  float64 `toml:"branch_step_min" json:"branch_step_min"`
	BranchStepMax  float64 `toml:"branch_step_max" json:"branch_step_max"`
	BranchNoise    float64 `toml:"branch_noise" json:"branch_noise"`
	BranchRelax    float64 `toml:"branch_relax" json:"branch_relax"`
	BranchMaxSteps int     `toml:"branch_max_steps" json:"branch_max_steps"`
	MaxDepth       int     `toml:"max_depth" json:"max_depth"`

	// Width decay and re-branching
	DecayChance    float64 `toml:"decay_chance" json:"decay_chance"`
	DecayMin       float64 `toml:"decay_min" json:"decay_min"`
	DecayMax       float64 `toml:"decay_max" json:"decay_max"`
	MinBranchWidth float64 `toml:"min_branch_width" json:"min_branch_width"`
	RebranchChance float64 `toml:"rebranch_chance" json:"rebranch_chance"`
	RebranchWidth  float64 `toml:"rebranch_width" json:"rebranch_width"`
	RebranchSpread float64 `toml:"rebranch_spread" json:"rebranch_spread"`

	// WidthFloor is the minimum width a committed segment carries.
	WidthFloor float64 `toml:"width_floor" json:"width_floor"`
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		MainMinSteps:    40,
		MainStepDivisor: 4,
		InitialBearing:  math.Pi / 6,
		TargetSpread:    math.Pi / 6,
		StepScaleMin:    2.0,
		StepScaleMax:    4.0,
		StepJitterMin:   0.8,
		StepJitterMax:   2.0,
		MainWidth:       8.0,
		MainNoise:       0.5,
		MainRelax:       0.07,

		BranchChance:   0.03,
		BranchSpread:   1.0,
		BranchWidthMin: 0.4,
		BranchWidthMax: 0.9,

		BranchStepMin:  1.0,
		BranchStepMax:  2.6,
		BranchNoise:    0.4,
		BranchRelax:    0.06,
		BranchMaxSteps: 140,
		MaxDepth:       2,

		DecayChance:    0.02,
		DecayMin:       0.6,
		DecayMax:       0.95,
		MinBranchWidth: 0.35,
		RebranchChance: 0.12,
		RebranchWidth:  0.8,
		RebranchSpread: 0.6,

		WidthFloor: 0.5,
	}
}

// MainStepCap returns the step cap of the main path for a canvas height.
func (p Params) MainStepCap(height float64) int {
	return max(p.MainMinSteps, int(math.Floor(height/p.MainStepDivisor)))
}

// Validate checks that the caps are positive and every probability is in [0, 1].
func (p Params) Validate() error {
	if p.MainMinSteps <= 0 {
		return fmt.Errorf("main_min_steps must be positive, got %d", p.MainMinSteps)
	}
	if p.MainStepDivisor <= 0 {
		return fmt.Errorf("main_step_divisor must be positive, got %g", p.MainStepDivisor)
	}
	if p.BranchMaxSteps <= 0 {
		return fmt.Errorf("branch_max_steps must be positive, got %d", p.BranchMaxSteps)
	}
	if p.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", p.MaxDepth)
	}
	if p.WidthFloor <= 0 {
		return fmt.Errorf("width_floor must be positive, got %g", p.WidthFloor)
	}
	if p.MainWidth <= 0 {
		return fmt.Errorf("main_width must be positive, got %g", p.MainWidth)
	}

	probs := []struct {
		name  string
		value float64
	}{
		{"branch_chance", p.BranchChance},
		{"decay_chance", p.DecayChance},
		{"rebranch_chance", p.RebranchChance},
	}
	for _, pr := range probs {
		if pr.value < 0 || pr.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %g", pr.name, pr.value)
		}
	}

	ranges := []struct {
		name     string
		min, max float64
	}{
		{"step_scale", p.StepScaleMin, p.StepScaleMax},
		{"step_jitter", p.StepJitterMin, p.StepJitterMax},
		{"branch_width", p.BranchWidthMin, p.BranchWidthMax},
		{"branch_step", p.BranchStepMin, p.BranchStepMax},
		{"decay", p.DecayMin, p.DecayMax},
	}
	for _, r := range ranges {
		if r.min > r.max {
			return fmt.Errorf("%s_min (%g) exceeds %s_max (%g)", r.name, r.min, r.name, r.max)
		}
	}
	return nil
}
