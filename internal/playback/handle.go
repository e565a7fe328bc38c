package playback

import (
	"context"
	"errors"
)

// Scheduler is the host's next-frame primitive. Frame blocks until the host
// is ready for another tick and returns ctx.Err() if ctx ends first. Input
// handling, including calls to Pause, happens inside Frame.
type Scheduler interface {
	Frame(ctx context.Context) error
}

// Handle drives one Play session. It goes stale once the controller is
// paused, reset or played again.
type Handle struct {
	c   *Controller
	gen uint64
}

func (h *Handle) live() bool {
	return h.c.gen == h.gen && h.c.phase == Running
}

// Run loops tick, yield, tick until the controller leaves Running. Pause
// cancels the pending Frame; the loop then returns nil. A stall is
// returned as an error. Cancelling ctx pauses the controller and returns
// ctx.Err().
func (h *Handle) Run(ctx context.Context, sched Scheduler) error {
	for {
		if !h.live() {
			return nil
		}
		if err := h.c.Tick(); err != nil {
			return err
		}
		if !h.live() {
			return nil
		}

		fctx, cancel := context.WithCancel(ctx)
		h.c.cancel = cancel
		err := sched.Frame(fctx)
		cancel()
		if h.gen == h.c.gen {
			h.c.cancel = nil
		}

		if err != nil {
			if ctx.Err() != nil {
				h.c.Pause()
				return ctx.Err()
			}
			if errors.Is(err, context.Canceled) && !h.live() {
				return nil
			}
			h.c.Pause()
			return err
		}
	}
}

// Cancel pauses the controller if this handle is still current.
func (h *Handle) Cancel() {
	if h.c.gen == h.gen {
		h.c.Pause()
	}
}
