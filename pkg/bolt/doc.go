// Package bolt synthesizes branching lightning geometry.
//
// The main path steps from the top center of the canvas toward a randomized
// target bearing until it leaves the canvas or hits its step cap. Branches
// spawn along the way and run on an explicit task stack: each steps with its
// own bearing and width, may thin out and re-branch, and commits its
// polylines to the shared [Accumulator] before its parent steps again. The
// main channel is committed last, after every branch it spawned.
//
// # Bounds
//
// Generation always terminates. The main path is capped at
// max(MainMinSteps, height/MainStepDivisor) steps, every branch at
// BranchMaxSteps, and tasks deeper than MaxDepth are refused. These caps hold
// for every random draw.
//
// # Randomness
//
// The generator never touches a global random source. Callers inject a
// [Rand]; [NewRand] returns a seeded PCG source so a seed fully determines the
// geometry.
//
//	acc := bolt.NewGenerator(bolt.DefaultParams(), bolt.NewRand(7)).Generate(800, 600)
//	for _, seg := range acc.Segments() {
//	    fmt.Println(len(seg.Points), seg.Width)
//	}
package bolt
