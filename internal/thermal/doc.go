// Package thermal implements the lumped-mass cooldown model of a steel pipe
// flushed with cryogenic gas.
//
// The package is organised around three pieces:
//
//   - [Inputs]: the operator-supplied scenario, in form units (°C, mm, Nm³/h)
//   - [DerivedCoefficients]: geometry and flow constants computed once per run
//   - [Integrator]: advances a [State] by one explicit Euler step
//
// # Example
//
//	d, err := thermal.Derive(in, thermal.Nitrogen)
//	if err != nil {
//		return err
//	}
//	integ := thermal.NewIntegrator(d, thermal.BatchTolerance)
//	s := thermal.NewState(d)
//	s, step, err = integ.Advance(s, 10)
//
// Temperatures inside the model are kelvin. Inputs are converted once by
// [Derive].
package thermal
