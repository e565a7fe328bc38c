// Package batch integrates a cooldown scenario to completion in one call.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/cooldown/internal/metrics"
	"github.com/san-kum/cooldown/internal/samplelog"
	"github.com/san-kum/cooldown/internal/thermal"
)

const (
	DefaultStep           = 10.0 // s
	DefaultSampleInterval = 60.0 // s
)

var ErrStepLimit = errors.New("batch: step limit reached before target")

type Runner struct {
	step      float64
	interval  float64
	maxSteps  int
	fluid     thermal.Fluid
	log       logrus.FieldLogger
	newMetric func() []metrics.Metric
}

type Option func(*Runner)

// WithStep sets the fixed integration step in seconds.
func WithStep(dt float64) Option { return func(r *Runner) { r.step = dt } }

// WithSampleInterval sets the spacing of logged samples in seconds.
func WithSampleInterval(s float64) Option { return func(r *Runner) { r.interval = s } }

// WithMaxSteps bounds the loop. Zero means unlimited.
func WithMaxSteps(n int) Option { return func(r *Runner) { r.maxSteps = n } }

func WithFluid(f thermal.Fluid) Option { return func(r *Runner) { r.fluid = f } }

func WithLogger(l logrus.FieldLogger) Option { return func(r *Runner) { r.log = l } }

// WithMetrics replaces the default metric set. The factory is called once
// per run so concurrent runs never share state.
func WithMetrics(f func() []metrics.Metric) Option {
	return func(r *Runner) { r.newMetric = f }
}

func New(opts ...Option) *Runner {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	r := &Runner{
		step:      DefaultStep,
		interval:  DefaultSampleInterval,
		fluid:     thermal.Nitrogen,
		log:       discard,
		newMetric: metrics.Defaults,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is a completed run.
type Result struct {
	Inputs  thermal.Inputs
	Coeffs  thermal.DerivedCoefficients
	Log     *samplelog.Log
	Totals  metrics.Totals
	Metrics map[string]float64
}

func (r *Runner) validate() error {
	if !(r.step > 0) || math.IsInf(r.step, 0) {
		return &thermal.ValidationError{Field: "time step", Value: r.step, Reason: "must be positive"}
	}
	if !(r.interval > 0) || math.IsInf(r.interval, 0) {
		return &thermal.ValidationError{Field: "sample interval", Value: r.interval, Reason: "must be positive"}
	}
	return nil
}

// Run integrates from the initial temperature until the pipe is within
// thermal.BatchTolerance of the target. A stall aborts the run and no
// result is returned.
func (r *Runner) Run(ctx context.Context, in thermal.Inputs) (*Result, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	d, err := thermal.Derive(in, r.fluid)
	if err != nil {
		return nil, err
	}

	integ := thermal.NewIntegrator(d, thermal.BatchTolerance)
	s := thermal.NewState(d)
	log := samplelog.FromState(s)

	ledger := metrics.NewHeatLedger()
	ms := append([]metrics.Metric{ledger}, r.newMetric()...)
	metrics.Start(ms, d)

	entry := r.log.WithFields(logrus.Fields{
		"steel_kg":   d.SteelMass,
		"gas_kg_s":   d.GasMassFlow,
		"initial_c":  in.InitialC,
		"target_c":   in.TargetC,
		"step_s":     r.step,
		"interval_s": r.interval,
	})
	entry.Debug("batch run started")

	for steps := 0; !integ.Done(s); steps++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if r.maxSteps > 0 && steps >= r.maxSteps {
			return nil, fmt.Errorf("%w: %d steps, %.2f °C at %.2f h", ErrStepLimit, steps, s.Celsius(), s.Elapsed/3600)
		}

		next, step, err := integ.Advance(s, r.step)
		if err != nil {
			entry.WithError(err).Warn("batch run aborted")
			return nil, err
		}
		metrics.ObserveAll(ms, next, step)

		if crossed(s.Elapsed, next.Elapsed, r.interval) {
			log.Append(next.Elapsed, next.Temperature)
		}
		s = next
	}

	if last := log.Last(); last.Elapsed != s.Elapsed {
		log.Append(s.Elapsed, s.Temperature)
	}

	totals := metrics.NewTotals(d, s, ledger)
	entry.WithFields(logrus.Fields{
		"hours":   totals.Hours(),
		"steps":   totals.Steps,
		"gas_nm3": totals.GasVolume,
		"net_mj":  totals.NetMJ,
	}).Info("batch run complete")

	return &Result{
		Inputs:  in,
		Coeffs:  d,
		Log:     log,
		Totals:  totals,
		Metrics: metrics.Collect(ms),
	}, nil
}

// crossed reports whether (prev, next] contains a multiple of interval.
func crossed(prev, next, interval float64) bool {
	return math.Floor(next/interval) > math.Floor(prev/interval)
}
