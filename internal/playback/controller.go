package playback

import (
	"errors"
	"io"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/cooldown/internal/metrics"
	"github.com/san-kum/cooldown/internal/samplelog"
	"github.com/san-kum/cooldown/internal/thermal"
)

const (
	DefaultStepSize = 10.0 // s
	DefaultSpeed    = 1.0
	MaxSpeed        = 4.0
)

var ErrNoRun = errors.New("playback: no run, press play or reset first")

type Phase int

const (
	Idle Phase = iota
	Paused
	Running
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Paused:
		return "paused"
	case Running:
		return "running"
	}
	return "unknown"
}

// FormReader supplies validated scenario inputs.
type FormReader interface {
	Inputs() (thermal.Inputs, error)
}

// Renderer draws the curve. cursor is the index of the sample the pipe
// state currently sits on.
type Renderer interface {
	Render(log *samplelog.Log, cursor int)
}

type nopRenderer struct{}

func (nopRenderer) Render(*samplelog.Log, int) {}

// run is the single active simulation. Only the controller touches it.
type run struct {
	inputs thermal.Inputs
	coeffs thermal.DerivedCoefficients
	integ  *thermal.Integrator
	state  thermal.State
	log    *samplelog.Log
	ledger *metrics.HeatLedger
	cursor int
}

type Controller struct {
	form     FormReader
	renderer Renderer
	fluid    thermal.Fluid
	log      logrus.FieldLogger

	stepSize float64
	speed    float64

	phase Phase
	run   *run

	gen    uint64
	cancel func()
}

type Option func(*Controller)

func WithRenderer(r Renderer) Option        { return func(c *Controller) { c.renderer = r } }
func WithFluid(f thermal.Fluid) Option      { return func(c *Controller) { c.fluid = f } }
func WithLogger(l logrus.FieldLogger) Option { return func(c *Controller) { c.log = l } }
func WithSpeed(x float64) Option            { return func(c *Controller) { c.speed = clampSpeed(x) } }

// WithStepSize sets the initial step. Sizes SetStepSize would reject are
// ignored and the default kept.
func WithStepSize(dt float64) Option {
	return func(c *Controller) { _ = c.SetStepSize(dt) }
}

func New(form FormReader, opts ...Option) *Controller {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Controller{
		form:     form,
		renderer: nopRenderer{},
		fluid:    thermal.Nitrogen,
		log:      discard,
		stepSize: DefaultStepSize,
		speed:    DefaultSpeed,
		phase:    Idle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Phase() Phase       { return c.phase }
func (c *Controller) Speed() float64     { return c.speed }
func (c *Controller) StepSize() float64  { return c.stepSize }
func (c *Controller) StepsPerTick() int  { return stepsFor(c.speed) }
func (c *Controller) HasRun() bool       { return c.run != nil }

// State returns the current pipe state, or the zero state when idle.
func (c *Controller) State() thermal.State {
	if c.run == nil {
		return thermal.State{}
	}
	return c.run.state
}

// Log returns the sample log of the active run, nil when idle.
func (c *Controller) Log() *samplelog.Log {
	if c.run == nil {
		return nil
	}
	return c.run.log
}

// SetSpeed sets the multiplier, clamped to [0, MaxSpeed].
func (c *Controller) SetSpeed(x float64) {
	c.speed = clampSpeed(x)
}

// SetStepSize changes the integration step. It applies from the next
// advance on; the logged history is left alone.
func (c *Controller) SetStepSize(dt float64) error {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return &thermal.ValidationError{Field: "time step", Value: dt, Reason: "must be positive"}
	}
	c.stepSize = dt
	return nil
}

func clampSpeed(x float64) float64 {
	if math.IsNaN(x) {
		return DefaultSpeed
	}
	return math.Max(0, math.Min(MaxSpeed, x))
}

func stepsFor(speed float64) int {
	return max(1, int(math.Round(speed)))
}

// build creates a run from the form. A non-nil log is truncated and reused
// so renderers holding it see the reset.
func (c *Controller) build(log *samplelog.Log) error {
	in, err := c.form.Inputs()
	if err != nil {
		return err
	}
	d, err := thermal.Derive(in, c.fluid)
	if err != nil {
		return err
	}

	s := thermal.NewState(d)
	if log == nil {
		log = samplelog.FromState(s)
	} else {
		log.Reset(samplelog.Sample{Elapsed: s.Elapsed, Temperature: s.Temperature})
	}
	c.run = &run{
		inputs: in,
		coeffs: d,
		integ:  thermal.NewIntegrator(d, 0),
		state:  s,
		log:    log,
		ledger: metrics.NewHeatLedger(),
	}
	c.log.WithFields(logrus.Fields{
		"steel_kg": d.SteelMass,
		"gas_kg_s": d.GasMassFlow,
		"target_c": in.TargetC,
	}).Debug("run built")
	return nil
}

// Play starts or resumes the run. From Idle it first builds a run from the
// form; if the inputs are rejected the controller stays Idle.
func (c *Controller) Play() (*Handle, error) {
	if c.phase == Running {
		return &Handle{c: c, gen: c.gen}, nil
	}
	if c.run == nil {
		if err := c.build(nil); err != nil {
			c.log.WithError(err).Warn("inputs rejected")
			return nil, err
		}
	}

	c.gen++
	c.phase = Running
	c.log.WithField("elapsed_s", c.run.state.Elapsed).Debug("play")
	return &Handle{c: c, gen: c.gen}, nil
}

// Pause stops scheduling further ticks. Safe to call in any phase.
func (c *Controller) Pause() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.phase == Running {
		c.phase = Paused
		c.log.WithField("elapsed_s", c.run.state.Elapsed).Debug("pause")
	}
}

// Reset discards the run and rebuilds it from the current form inputs,
// leaving the controller Paused at the initial condition. When the inputs
// are rejected the controller drops back to Idle.
func (c *Controller) Reset() error {
	c.Pause()
	c.gen++
	var log *samplelog.Log
	if c.run != nil {
		log = c.run.log
	}
	c.run = nil
	c.phase = Idle

	if err := c.build(log); err != nil {
		c.log.WithError(err).Warn("inputs rejected")
		return err
	}
	c.phase = Paused
	c.renderer.Render(c.run.log, 0)
	return nil
}

// Tick performs one burst of integration steps. It does nothing unless the
// controller is Running. Reaching the target pauses the controller; a stall
// pauses it and returns the *thermal.StallError, keeping the curve so far.
func (c *Controller) Tick() error {
	if c.phase != Running {
		return nil
	}
	r := c.run
	c.resume()

	var stepErr error
	for i := 0; i < stepsFor(c.speed); i++ {
		next, step, err := r.integ.Advance(r.state, c.stepSize)
		if err != nil {
			stepErr = err
			break
		}
		if !step.Taken {
			break
		}
		r.state = next
		r.cursor = c.record(next, step)
	}

	c.renderer.Render(r.log, r.cursor)

	if stepErr != nil {
		c.Pause()
		c.log.WithError(stepErr).Warn("run stalled")
		return stepErr
	}
	if r.integ.Done(r.state) {
		c.Pause()
		c.log.WithFields(logrus.Fields{
			"hours":   r.state.Elapsed / 3600,
			"samples": r.log.Len(),
		}).Info("target reached")
	}
	return nil
}

// resume moves a scrubbed state back onto the log tail so integration
// always continues the logged curve.
func (c *Controller) resume() {
	r := c.run
	if last := r.log.Last(); r.state != last.State() {
		r.state = last.State()
		r.cursor = r.log.Len() - 1
	}
}

// record appends the new state to the log and the ledger and returns its
// index.
func (c *Controller) record(s thermal.State, step thermal.Step) int {
	r := c.run
	r.log.Append(s.Elapsed, s.Temperature)
	r.ledger.Observe(s, step)
	return r.log.Len() - 1
}

// Seek moves the pipe state onto logged sample i without integrating. The
// controller pauses; the log is not modified. Seek only scrubs: the next
// tick resumes from the end of the log.
func (c *Controller) Seek(i int) error {
	if c.run == nil {
		return ErrNoRun
	}
	sample, err := c.run.log.At(i)
	if err != nil {
		return err
	}

	c.Pause()
	c.run.state = sample.State()
	c.run.cursor = i
	c.renderer.Render(c.run.log, i)
	return nil
}

// NetPower returns the net cooling power of every logged step, in W, with
// a leading zero for the initial sample.
func (c *Controller) NetPower() []float64 {
	if c.run == nil {
		return nil
	}
	return c.run.ledger.NetPower()
}

// Snapshot is a read-only view of the controller for status lines.
type Snapshot struct {
	Phase        Phase
	Elapsed      float64 // s
	Temperature  float64 // K
	InitialK     float64
	TargetK      float64
	StepSize     float64
	Speed        float64
	StepsPerTick int
	Samples      int
	Cursor       int
	NetPower     float64 // W, last step
	NetMJ        float64
	GasKg        float64
}

func (s Snapshot) Hours() float64   { return s.Elapsed / 3600 }
func (s Snapshot) Celsius() float64 { return s.Temperature - thermal.KelvinOffset }

// Progress is the fraction of the initial-to-target drop covered so far,
// clamped to [0, 1].
func (s Snapshot) Progress() float64 {
	span := s.InitialK - s.TargetK
	if span <= 0 {
		return 0
	}
	return min(1, max(0, (s.InitialK-s.Temperature)/span))
}

func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:        c.phase,
		StepSize:     c.stepSize,
		Speed:        c.speed,
		StepsPerTick: stepsFor(c.speed),
	}
	if c.run == nil {
		return snap
	}

	r := c.run
	np := r.ledger.NetPower()
	snap.Elapsed = r.state.Elapsed
	snap.Temperature = r.state.Temperature
	snap.InitialK = r.coeffs.InitialK
	snap.TargetK = r.coeffs.TargetK
	snap.Samples = r.log.Len()
	snap.Cursor = r.cursor
	snap.NetPower = np[len(np)-1]
	snap.NetMJ = r.ledger.Value()
	snap.GasKg = r.coeffs.GasMassFlow * r.state.Elapsed
	return snap
}
