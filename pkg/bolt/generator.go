package bolt

// Generator synthesizes strike geometry from a Params tuning and a random source.
// A Generator is not safe for concurrent use; create one per generation call.
type Generator struct {
	params Params
	rng    Rand
}

// NewGenerator returns a generator drawing from rng.
func NewGenerator(params Params, rng Rand) *Generator {
	return &Generator{params: params, rng: rng}
}

// task is a path being stepped: the main channel or one branch.
type task struct {
	id     int
	depth  int
	main   bool
	scale  float64 // main path step scale
	limit  int
	st     GenerationState
	points []Point
	// stopped is set when a branch thinned out; its buffer is not committed.
	stopped bool
}

func (t *task) running(height float64) bool {
	return !t.stopped && t.st.Position.Y < height && t.st.StepCount < t.limit
}

// Generate produces the geometry of one strike on a width×height canvas.
// A canvas without area receives no strike.
//
// Tasks run on an explicit stack. A branch spawned by a step runs to
// completion before its parent takes another step, so a nested branch commits
// between its parent's pieces and the main channel commits last.
func (g *Generator) Generate(width, height float64) *Accumulator {
	acc := NewAccumulator(g.params.WidthFloor)
	if width <= 0 || height <= 0 {
		return acc
	}

	stack := []*task{g.mainTask(acc, width, height)}
	for len(stack) > 0 {
		t := stack[len(stack)-1]
		if !t.running(height) {
			if !t.stopped {
				acc.Commit(t.points, t.st.StrokeWidth, t.id, t.depth)
			}
			acc.closeBranch(t.id, t.st.StepCount)
			stack = stack[:len(stack)-1]
			continue
		}

		var sp *spawn
		if t.main {
			sp = g.stepMain(t, height)
		} else {
			sp = g.stepBranch(acc, t)
		}
		if sp != nil && sp.depth <= g.params.MaxDepth {
			stack = append(stack, g.branchTask(acc, *sp))
		}
	}
	return acc
}

// mainTask opens the main channel at the top center of the canvas. The main
// path keeps its initial width for its whole length.
func (g *Generator) mainTask(acc *Accumulator, width, height float64) *task {
	p := g.params
	st := GenerationState{
		Position:      Point{X: width / 2, Y: 0},
		Bearing:       p.InitialBearing,
		StrokeWidth:   p.MainWidth,
		TargetBearing: g.symmetric(p.TargetSpread),
	}
	return &task{
		id:     acc.openBranch(-1, MainDepth, st.Position),
		depth:  MainDepth,
		main:   true,
		scale:  g.uniform(p.StepScaleMin, p.StepScaleMax),
		limit:  p.MainStepCap(height),
		st:     st,
		points: []Point{st.Position},
	}
}

// stepMain advances the main channel once and returns the branch it spawned
// at the new position, if any.
func (g *Generator) stepMain(t *task, height float64) *spawn {
	p := g.params
	st := &t.st
	st.advance(t.scale * g.uniform(p.StepJitterMin, p.StepJitterMax))
	st.steer(g.symmetric(p.MainNoise), p.MainRelax)
	t.points = append(t.points, st.Position)

	// Branching thins out toward the bottom of the canvas.
	if g.rng.Float64() >= p.BranchChance*(1-st.Position.Y/height) {
		return nil
	}
	width := st.StrokeWidth * g.uniform(p.BranchWidthMin, p.BranchWidthMax)
	bearing := st.TargetBearing + g.symmetric(p.BranchSpread)
	return &spawn{origin: st.Position, bearing: bearing, width: width, depth: 0, parent: t.id}
}

// uniform draws from [lo, hi).
func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// symmetric draws from [-half, half).
func (g *Generator) symmetric(half float64) float64 {
	return (g.rng.Float64() - 0.5) * 2 * half
}
