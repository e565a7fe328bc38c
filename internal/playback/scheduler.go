package playback

import (
	"context"

	"golang.org/x/time/rate"
)

// RateScheduler paces frames at a fixed rate.
type RateScheduler struct {
	limiter *rate.Limiter
}

func NewRateScheduler(fps float64) *RateScheduler {
	if fps <= 0 {
		fps = 30
	}
	return &RateScheduler{limiter: rate.NewLimiter(rate.Limit(fps), 1)}
}

func (s *RateScheduler) Frame(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// FrameFunc adapts a function to the Scheduler interface.
type FrameFunc func(ctx context.Context) error

func (f FrameFunc) Frame(ctx context.Context) error { return f(ctx) }
