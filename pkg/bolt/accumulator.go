package bolt

import "slices"

// Accumulator collects the segments committed during one generation call.
// It only grows; segments are never removed or modified.
type Accumulator struct {
	floor     float64
	segments  []Segment
	branches  []Branch
	maxWidth  float64
	didStrike bool
}

// NewAccumulator returns an empty accumulator that clamps committed widths
// to floor.
func NewAccumulator(floor float64) *Accumulator {
	return &Accumulator{floor: floor}
}

// Commit records points as a segment of the given branch. Polylines with
// fewer than two points are discarded and Commit reports false.
// The points are copied; the caller may reuse its buffer.
func (a *Accumulator) Commit(points []Point, width float64, branch, depth int) bool {
	if len(points) < 2 {
		return false
	}
	width = max(a.floor, width)
	a.segments = append(a.segments, Segment{
		Points: slices.Clone(points),
		Width:  width,
		Branch: branch,
		Depth:  depth,
	})
	a.maxWidth = max(a.maxWidth, width)
	a.didStrike = true
	if branch >= 0 && branch < len(a.branches) {
		a.branches[branch].Segments++
	}
	return true
}

// openBranch registers a new stepping task and returns its ID.
func (a *Accumulator) openBranch(parent, depth int, origin Point) int {
	id := len(a.branches)
	a.branches = append(a.branches, Branch{ID: id, Parent: parent, Depth: depth, Origin: origin})
	return id
}

// closeBranch records the number of steps a task took.
func (a *Accumulator) closeBranch(id, steps int) {
	a.branches[id].Steps = steps
}

// Segments returns the committed segments in commit order.
// The returned slice must be treated as read-only.
func (a *Accumulator) Segments() []Segment { return a.segments }

// Branches returns every executed stepping task, main path first.
func (a *Accumulator) Branches() []Branch { return a.branches }

// Len returns the number of committed segments.
func (a *Accumulator) Len() int { return len(a.segments) }

// MaxWidth returns the widest committed segment width, or 0 if nothing was committed.
func (a *Accumulator) MaxWidth() float64 { return a.maxWidth }

// DidStrike reports whether at least one segment was committed.
func (a *Accumulator) DidStrike() bool { return a.didStrike }

// MaxDepth returns the deepest branch depth that committed a segment, or
// MainDepth if only the main path did (or nothing at all).
func (a *Accumulator) MaxDepth() int {
	d := MainDepth
	for _, s := range a.segments {
		d = max(d, s.Depth)
	}
	return d
}
