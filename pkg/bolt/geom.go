package bolt

// MainBranch is the branch ID of the main path.
const MainBranch = 0

// MainDepth is the depth recorded for main path segments. Branches spawned
// from the main path start at depth 0.
const MainDepth = -1

// Point is a coordinate in canvas space. X grows to the right, Y grows down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is a committed polyline with a stroke width.
// Segments are never modified after they are committed.
type Segment struct {
	Points []Point `json:"points"`
	Width  float64 `json:"width"`
	Branch int     `json:"branch"` // branch that committed the segment
	Depth  int     `json:"depth"`  // MainDepth for the main path
}

// IsMain reports whether the segment belongs to the main path.
func (s Segment) IsMain() bool { return s.Branch == MainBranch }

// Flat returns the points as interleaved x, y coordinates.
func (s Segment) Flat() []float64 {
	out := make([]float64, 0, 2*len(s.Points))
	for _, p := range s.Points {
		out = append(out, p.X, p.Y)
	}
	return out
}

// Branch describes one executed stepping task. The main path is branch 0.
type Branch struct {
	ID       int   `json:"id"`
	Parent   int   `json:"parent"` // -1 for the main path
	Depth    int   `json:"depth"`
	Origin   Point `json:"origin"`
	Steps    int   `json:"steps"`
	Segments int   `json:"segments"`
}
