package batch

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/cooldown/internal/thermal"
)

// Variant is the outcome of one scenario in a sweep. Exactly one of
// Result and Err is set.
type Variant struct {
	Inputs thermal.Inputs
	Result *Result
	Err    error
}

// Sweep runs independent scenarios concurrently. A failing scenario is
// recorded in its Variant and does not stop the others; only context
// cancellation fails the sweep as a whole.
func (r *Runner) Sweep(ctx context.Context, scenarios []thermal.Inputs) ([]Variant, error) {
	out := make([]Variant, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, in := range scenarios {
		i, in := i, in
		g.Go(func() error {
			res, err := r.Run(gctx, in)
			if err != nil && gctx.Err() != nil {
				return gctx.Err()
			}
			out[i] = Variant{Inputs: in, Result: res, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
