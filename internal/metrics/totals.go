package metrics

import "github.com/san-kum/cooldown/internal/thermal"

// Totals summarises a completed run.
type Totals struct {
	Elapsed          float64 `json:"elapsed_s"`
	Steps            int     `json:"steps"`
	FinalTemperature float64 `json:"final_temperature_k"`
	GasMass          float64 `json:"gas_kg"`
	GasVolume        float64 `json:"gas_nm3"`
	Removed          float64 `json:"gross_removed_j"`
	Ingress          float64 `json:"ingress_j"`
	NetMJ            float64 `json:"net_removed_mj"`
}

// NewTotals derives the run totals from the final state and the ledger.
// Gas consumption is the constant mass flow times the elapsed time.
func NewTotals(d thermal.DerivedCoefficients, final thermal.State, h *HeatLedger) Totals {
	mass := d.GasMassFlow * final.Elapsed
	return Totals{
		Elapsed:          final.Elapsed,
		Steps:            h.Steps(),
		FinalTemperature: final.Temperature,
		GasMass:          mass,
		GasVolume:        d.GasVolume(mass),
		Removed:          h.Removed(),
		Ingress:          h.Ingress(),
		NetMJ:            (h.Removed() - h.Ingress()) / 1e6,
	}
}

func (t Totals) Hours() float64        { return t.Elapsed / 3600 }
func (t Totals) FinalCelsius() float64 { return t.FinalTemperature - thermal.KelvinOffset }
func (t Totals) RemovedMJ() float64    { return t.Removed / 1e6 }
func (t Totals) IngressMJ() float64    { return t.Ingress / 1e6 }
