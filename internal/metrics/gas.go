package metrics

import "github.com/san-kum/cooldown/internal/thermal"

// GasUsage sums the coolant mass sent through the pipe, step by step.
type GasUsage struct {
	name     string
	massFlow float64
	mass     float64
}

func NewGasUsage() *GasUsage {
	return &GasUsage{name: "gas_kg"}
}

// Bind sets the mass flow of the run being observed.
func (g *GasUsage) Bind(d thermal.DerivedCoefficients) { g.massFlow = d.GasMassFlow }

func (g *GasUsage) Name() string { return g.name }

func (g *GasUsage) Observe(_ thermal.State, step thermal.Step) {
	if step.Taken {
		g.mass += g.massFlow * step.Dt
	}
}

func (g *GasUsage) Value() float64 { return g.mass }

func (g *GasUsage) Reset() { g.mass = 0 }
