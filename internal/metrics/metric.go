// Package metrics accumulates per-step quantities of a cooldown run.
package metrics

import "github.com/san-kum/cooldown/internal/thermal"

// Metric observes every integration step actually taken.
type Metric interface {
	Name() string
	Observe(s thermal.State, step thermal.Step)
	Value() float64
	Reset()
}

// Collect reads every metric into a map keyed by name.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Defaults returns the metrics reported alongside the heat ledger.
func Defaults() []Metric {
	return []Metric{NewStallMargin(), NewGasUsage()}
}

// Binder is implemented by metrics that need the run constants.
type Binder interface {
	Bind(d thermal.DerivedCoefficients)
}

// Start resets every metric and binds it to a new run.
func Start(ms []Metric, d thermal.DerivedCoefficients) {
	for _, m := range ms {
		m.Reset()
		if b, ok := m.(Binder); ok {
			b.Bind(d)
		}
	}
}

// ObserveAll feeds one step to every metric.
func ObserveAll(ms []Metric, s thermal.State, step thermal.Step) {
	for _, m := range ms {
		m.Observe(s, step)
	}
}
