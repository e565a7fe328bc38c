package thermal

import "math"

const (
	KelvinOffset   = 273.15
	SteelDensity   = 8000.0 // kg/m³
	secondsPerHour = 3600.0
)

// Fluid holds the coolant properties. Density is at normal conditions
// (0 °C, 1 atm) so that it converts Nm³ to kg.
type Fluid struct {
	Name         string  `yaml:"name"`
	Density      float64 `yaml:"density"`       // kg/Nm³
	SpecificHeat float64 `yaml:"specific_heat"` // J/(kg·K)
}

var Nitrogen = Fluid{Name: "N2", Density: 1.250, SpecificHeat: 1.04e3}

func (f Fluid) Validate() error {
	if !finite(f.Density) || f.Density <= 0 {
		return &ValidationError{Field: "gas density", Value: f.Density, Reason: "must be positive"}
	}
	if !finite(f.SpecificHeat) || f.SpecificHeat <= 0 {
		return &ValidationError{Field: "gas specific heat", Value: f.SpecificHeat, Reason: "must be positive"}
	}
	return nil
}

// Inputs is one cooldown scenario in the units an operator types.
type Inputs struct {
	Length          float64 `yaml:"length_m"`
	OuterDiameterMM float64 `yaml:"outer_diameter_mm"`
	WallThicknessMM float64 `yaml:"wall_thickness_mm"`
	InitialC        float64 `yaml:"initial_c"`
	TargetC         float64 `yaml:"target_c"`
	GasInletC       float64 `yaml:"gas_inlet_c"`
	GasFlowNm3h     float64 `yaml:"gas_flow_nm3h"`
	AmbientC        float64 `yaml:"ambient_c"`
	HeatTransfer    float64 `yaml:"heat_transfer_w_m2k"`
	Efficiency      float64 `yaml:"efficiency"`
}

// Validate checks finiteness and the ordering invariants, then geometry.
func (in Inputs) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"length", in.Length},
		{"outer diameter", in.OuterDiameterMM},
		{"wall thickness", in.WallThicknessMM},
		{"initial temperature", in.InitialC},
		{"target temperature", in.TargetC},
		{"gas inlet temperature", in.GasInletC},
		{"gas flow", in.GasFlowNm3h},
		{"ambient temperature", in.AmbientC},
		{"heat transfer coefficient", in.HeatTransfer},
		{"efficiency", in.Efficiency},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return &ValidationError{Field: f.name, Value: f.v, Reason: "not a finite number"}
		}
	}

	if in.TargetC >= in.InitialC {
		return &ValidationError{Field: "target temperature", Value: in.TargetC, Reason: "must be below initial temperature"}
	}
	if in.GasInletC >= in.TargetC {
		return &ValidationError{Field: "gas inlet temperature", Value: in.GasInletC, Reason: "must be below target temperature"}
	}
	if in.GasInletC+KelvinOffset <= 0 {
		return &ValidationError{Field: "gas inlet temperature", Value: in.GasInletC, Reason: "below absolute zero"}
	}
	if in.Efficiency <= 0 || in.Efficiency > 1 {
		return &ValidationError{Field: "efficiency", Value: in.Efficiency, Reason: "must be in (0, 1]"}
	}
	if in.Length <= 0 {
		return &ValidationError{Field: "length", Value: in.Length, Reason: "must be positive"}
	}
	if in.OuterDiameterMM <= 0 {
		return &ValidationError{Field: "outer diameter", Value: in.OuterDiameterMM, Reason: "must be positive"}
	}
	if in.WallThicknessMM <= 0 {
		return &ValidationError{Field: "wall thickness", Value: in.WallThicknessMM, Reason: "must be positive"}
	}
	if in.GasFlowNm3h < 0 {
		return &ValidationError{Field: "gas flow", Value: in.GasFlowNm3h, Reason: "must not be negative"}
	}
	if in.HeatTransfer < 0 {
		return &ValidationError{Field: "heat transfer coefficient", Value: in.HeatTransfer, Reason: "must not be negative"}
	}

	if in.OuterDiameterMM-2*in.WallThicknessMM <= 0 {
		return &GeometryError{OuterDiameterMM: in.OuterDiameterMM, ThicknessMM: in.WallThicknessMM}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
