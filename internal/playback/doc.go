// Package playback steps a cooldown run interactively.
//
// A [Controller] owns at most one run. The host drives it either by calling
// [Controller.Tick] from its own frame loop (a bubbletea tick, for instance)
// or by handing a [Scheduler] to the [Handle] returned from
// [Controller.Play]:
//
//	h, err := c.Play()
//	if err != nil {
//		return err
//	}
//	err = h.Run(ctx, playback.NewRateScheduler(30))
//
// Each tick performs max(1, round(speed)) integration steps, appends one
// sample per step and renders once. The controller is not safe for
// concurrent use; every call must come from the goroutine driving it.
package playback
