package bolt

// spawn describes a branch requested by a step: where it starts, where it
// heads, how wide it is and how deep it sits below the main path.
type spawn struct {
	origin  Point
	bearing float64
	width   float64
	depth   int
	parent  int
}

// branchTask opens a branch in the accumulator and returns its task.
func (g *Generator) branchTask(acc *Accumulator, sp spawn) *task {
	return &task{
		id:    acc.openBranch(sp.parent, sp.depth, sp.origin),
		depth: sp.depth,
		limit: g.params.BranchMaxSteps,
		st: GenerationState{
			Position:      sp.origin,
			Bearing:       sp.bearing,
			StrokeWidth:   sp.width,
			TargetBearing: sp.bearing,
		},
		points: []Point{sp.origin},
	}
}

// stepBranch advances a branch once. On a decay the current piece is
// committed at its pre-shrink width and a new piece starts at the current
// point. A branch thinner than MinBranchWidth stops without a final commit.
func (g *Generator) stepBranch(acc *Accumulator, t *task) *spawn {
	p := g.params
	st := &t.st
	st.advance(g.uniform(p.BranchStepMin, p.BranchStepMax))
	st.steer(g.symmetric(p.BranchNoise), p.BranchRelax)
	t.points = append(t.points, st.Position)

	if g.rng.Float64() >= p.DecayChance {
		return nil
	}

	acc.Commit(t.points, st.StrokeWidth, t.id, t.depth)
	st.StrokeWidth *= g.uniform(p.DecayMin, p.DecayMax)
	if st.StrokeWidth < p.MinBranchWidth {
		t.stopped = true
		return nil
	}

	var sp *spawn
	if g.rng.Float64() < p.RebranchChance {
		sp = &spawn{
			origin:  st.Position,
			bearing: st.TargetBearing + g.symmetric(p.RebranchSpread),
			width:   st.StrokeWidth * p.RebranchWidth,
			depth:   t.depth + 1,
			parent:  t.id,
		}
	}
	t.points = append(t.points[:0], st.Position)
	return sp
}
