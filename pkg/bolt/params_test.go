package bolt

import "testing"

func TestDefaultParamsValid(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("DefaultParams().Validate() = %v", err)
	}
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero main steps", func(p *Params) { p.MainMinSteps = 0 }},
		{"zero divisor", func(p *Params) { p.MainStepDivisor = 0 }},
		{"zero branch steps", func(p *Params) { p.BranchMaxSteps = 0 }},
		{"negative depth", func(p *Params) { p.MaxDepth = -1 }},
		{"zero floor", func(p *Params) { p.WidthFloor = 0 }},
		{"branch chance above one", func(p *Params) { p.BranchChance = 1.5 }},
		{"negative decay chance", func(p *Params) { p.DecayChance = -0.1 }},
		{"inverted decay range", func(p *Params) { p.DecayMin, p.DecayMax = 0.9, 0.6 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("Validate() should fail")
			}
		})
	}
}
