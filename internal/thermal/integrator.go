package thermal

import "github.com/san-kum/cooldown/internal/material"

// BatchTolerance keeps the batch loop from chasing the target through
// overshoot at the boundary.
const BatchTolerance = 0.1

// StallBand is how close to an equilibrium above the target the pipe may
// creep before the run is declared stalled. Euler approaches such an
// equilibrium without ever reaching zero net power.
const StallBand = 0.01 // K

// Step reports what one Advance did. Energies are power times dt.
type Step struct {
	Taken bool
	Dt    float64 // s

	CoolingPower float64 // W
	IngressPower float64 // W
	NetPower     float64 // W

	Removed float64 // J, gross cooling
	Ingress float64 // J
	Net     float64 // J
}

// Integrator advances the energy balance with explicit Euler.
type Integrator struct {
	d         DerivedCoefficients
	Tolerance float64
}

func NewIntegrator(d DerivedCoefficients, tolerance float64) *Integrator {
	return &Integrator{d: d, Tolerance: tolerance}
}

// Done reports whether s has reached the target within Tolerance.
func (it *Integrator) Done(s State) bool {
	return s.Temperature <= it.d.TargetK+it.Tolerance
}

// Powers evaluates the balance at temperature tk without stepping.
func (it *Integrator) Powers(tk float64) (cooling, ingress float64) {
	d := it.d
	cooling = d.GasMassFlow * d.Fluid.SpecificHeat * (tk - d.GasK) * d.Efficiency
	ingress = d.HeatTransfer * d.OuterArea * (d.AmbientK - tk)
	return cooling, ingress
}

// Equilibrium returns the temperature at which gas cooling exactly balances
// ingress. ok is false when neither power depends on temperature.
func (it *Integrator) Equilibrium() (tk float64, ok bool) {
	d := it.d
	a := d.GasMassFlow * d.Fluid.SpecificHeat * d.Efficiency
	b := d.HeatTransfer * d.OuterArea
	if a+b <= 0 {
		return 0, false
	}
	return (a*d.GasK + b*d.AmbientK) / (a + b), true
}

// Reachable reports whether the target lies below the equilibrium, i.e.
// whether the run can finish at all.
func (it *Integrator) Reachable() bool {
	teq, ok := it.Equilibrium()
	return ok && teq < it.d.TargetK+it.Tolerance
}

func (it *Integrator) creeping(tk float64) bool {
	if it.Reachable() {
		return false
	}
	teq, ok := it.Equilibrium()
	return ok && tk-teq <= StallBand
}

// Advance moves s forward by dt seconds. A completed state is returned
// unchanged with Step.Taken false. On stall (no net cooling, or parked
// within StallBand of an equilibrium above the target) the input state is
// returned along with a *StallError.
func (it *Integrator) Advance(s State, dt float64) (State, Step, error) {
	if !(dt > 0) || !finite(dt) {
		return s, Step{}, &ValidationError{Field: "time step", Value: dt, Reason: "must be positive"}
	}
	if it.Done(s) {
		return s, Step{}, nil
	}

	cp := material.SpecificHeat(s.Temperature)
	qCool, qIngress := it.Powers(s.Temperature)
	qNet := qCool - qIngress

	if qNet <= 0 || it.creeping(s.Temperature) {
		return s, Step{}, &StallError{
			Temperature:  s.Temperature,
			Elapsed:      s.Elapsed,
			CoolingPower: qCool,
			IngressPower: qIngress,
		}
	}

	energy := qNet * dt
	next := State{
		Elapsed:     s.Elapsed + dt,
		Temperature: s.Temperature - energy/(it.d.SteelMass*cp),
	}

	return next, Step{
		Taken:        true,
		Dt:           dt,
		CoolingPower: qCool,
		IngressPower: qIngress,
		NetPower:     qNet,
		Removed:      qCool * dt,
		Ingress:      qIngress * dt,
		Net:          energy,
	}, nil
}
