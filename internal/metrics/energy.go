package metrics

import "github.com/san-kum/cooldown/internal/thermal"

// HeatLedger integrates gross refrigeration and ambient ingress. It also
// keeps the net power of each step for live display.
type HeatLedger struct {
	name     string
	removed  float64
	ingress  float64
	steps    int
	netPower []float64
}

func NewHeatLedger() *HeatLedger {
	return &HeatLedger{
		name:     "net_heat_mj",
		netPower: []float64{0},
	}
}

func (h *HeatLedger) Name() string { return h.name }

func (h *HeatLedger) Observe(_ thermal.State, step thermal.Step) {
	if !step.Taken {
		return
	}
	h.removed += step.Removed
	h.ingress += step.Ingress
	h.netPower = append(h.netPower, step.NetPower)
	h.steps++
}

// Value is the net heat removed in MJ.
func (h *HeatLedger) Value() float64 { return (h.removed - h.ingress) / 1e6 }

func (h *HeatLedger) Removed() float64 { return h.removed }
func (h *HeatLedger) Ingress() float64 { return h.ingress }
func (h *HeatLedger) Steps() int       { return h.steps }

// NetPower returns the per-step net power history in W. Index 0 is the
// initial condition and always zero.
func (h *HeatLedger) NetPower() []float64 {
	out := make([]float64, len(h.netPower))
	copy(out, h.netPower)
	return out
}

func (h *HeatLedger) Reset() {
	h.removed = 0
	h.ingress = 0
	h.steps = 0
	h.netPower = h.netPower[:1]
}
