package thermal

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the model. All are terminal for the current run.
var (
	// ErrValidation indicates malformed or out-of-range inputs.
	ErrValidation = errors.New("thermal: invalid inputs")

	// ErrGeometry indicates a wall thickness that leaves no bore.
	ErrGeometry = errors.New("thermal: non-positive inner diameter")

	// ErrStall indicates heat ingress at or above the available cooling power.
	ErrStall = errors.New("thermal: stall, heat ingress >= cooling power")
)

// ValidationError names the offending input field.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%g): %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// GeometryError is returned when OD - 2*thickness <= 0.
type GeometryError struct {
	OuterDiameterMM float64
	ThicknessMM     float64
}

func (e *GeometryError) InnerDiameterMM() float64 {
	return e.OuterDiameterMM - 2*e.ThicknessMM
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("negative inner diameter: OD %.2f mm - 2 x %.2f mm wall = %.2f mm",
		e.OuterDiameterMM, e.ThicknessMM, e.InnerDiameterMM())
}

func (e *GeometryError) Unwrap() error { return ErrGeometry }

// StallError carries the operating point at which cooling stopped making
// progress. The state it was raised from is left untouched.
type StallError struct {
	Temperature  float64 // K
	Elapsed      float64 // s
	CoolingPower float64 // W
	IngressPower float64 // W
}

func (e *StallError) Error() string {
	return fmt.Sprintf("stall at %.1f °C (%.1f K) after %.2f h: heat ingress %.0f W >= cooling %.0f W; lower target or improve insulation/flow",
		e.Temperature-KelvinOffset, e.Temperature, e.Elapsed/3600, e.IngressPower, e.CoolingPower)
}

func (e *StallError) Unwrap() error { return ErrStall }
