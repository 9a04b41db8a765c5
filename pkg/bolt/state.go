package bolt

import "math"

// GenerationState is the stepping state owned by one path or branch.
type GenerationState struct {
	Position      Point
	Bearing       float64
	StrokeWidth   float64
	TargetBearing float64
	StepCount     int
}

// advance moves the position by step along the current bearing.
// A bearing of 0 points straight down the canvas.
func (s *GenerationState) advance(step float64) {
	s.Position.X += math.Sin(s.Bearing) * step
	s.Position.Y += math.Cos(s.Bearing) * step
	s.StepCount++
}

// steer adds noise to the bearing and then relaxes it toward the target by
// the given fraction.
func (s *GenerationState) steer(noise, relax float64) {
	s.Bearing += noise
	s.Bearing -= (s.Bearing - s.TargetBearing) * relax
}
