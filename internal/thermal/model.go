package thermal

import "math"

// DerivedCoefficients are fixed for the lifetime of a run. Rebuild them with
// Derive whenever the inputs change.
type DerivedCoefficients struct {
	InnerDiameter float64 // m
	SteelArea     float64 // m², wall cross-section
	SteelMass     float64 // kg
	OuterArea     float64 // m²
	GasMassFlow   float64 // kg/s

	InitialK float64
	TargetK  float64
	GasK     float64
	AmbientK float64

	HeatTransfer float64
	Efficiency   float64
	Fluid        Fluid
}

// Derive validates the inputs and computes the run constants.
func Derive(in Inputs, f Fluid) (DerivedCoefficients, error) {
	if err := in.Validate(); err != nil {
		return DerivedCoefficients{}, err
	}
	if err := f.Validate(); err != nil {
		return DerivedCoefficients{}, err
	}

	od := in.OuterDiameterMM * 1e-3
	id := od - 2*in.WallThicknessMM*1e-3
	area := math.Pi / 4 * (od*od - id*id)

	return DerivedCoefficients{
		InnerDiameter: id,
		SteelArea:     area,
		SteelMass:     area * in.Length * SteelDensity,
		OuterArea:     math.Pi * od * in.Length,
		GasMassFlow:   in.GasFlowNm3h * f.Density / secondsPerHour,
		InitialK:      in.InitialC + KelvinOffset,
		TargetK:       in.TargetC + KelvinOffset,
		GasK:          in.GasInletC + KelvinOffset,
		AmbientK:      in.AmbientC + KelvinOffset,
		HeatTransfer:  in.HeatTransfer,
		Efficiency:    in.Efficiency,
		Fluid:         f,
	}, nil
}

// GasVolume converts a gas mass to normal cubic metres.
func (d DerivedCoefficients) GasVolume(massKg float64) float64 {
	return massKg / d.Fluid.Density
}

// State is the mutable part of a run.
type State struct {
	Elapsed     float64 // s
	Temperature float64 // K
}

func NewState(d DerivedCoefficients) State {
	return State{Elapsed: 0, Temperature: d.InitialK}
}

func (s State) Celsius() float64 { return s.Temperature - KelvinOffset }
