// Package worker runs strike requests as isolated one-shot tasks.
//
// Every request gets its own random source, accumulator and surface, and
// produces exactly one [Response] on a buffered channel. Failures, including
// panics in any stage, become a degraded response with Error set; [Worker]
// never returns a Go error across its boundary.
//
//	w := worker.New(worker.WithLogger(logger))
//	resp := <-w.Submit(ctx, worker.Request{Width: 800, Height: 600})
//	if resp.DidStrike {
//	    shake(resp.ShakeIntensity)
//	}
package worker
