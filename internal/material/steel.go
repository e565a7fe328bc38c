// Package material holds temperature-dependent material properties used by
// the thermal model.
package material

// Band over which the steel fit was regressed. Outside it the polynomial
// still evaluates but drifts quickly.
const (
	ValidMin = 60.0
	ValidMax = 300.0
)

// SpecificHeat returns the specific heat of AISI-304 steel in J/(kg·K) at
// the given absolute temperature. Quartic fit, ±2 % inside [ValidMin, ValidMax].
// The range is not enforced.
func SpecificHeat(tempK float64) float64 {
	t := tempK / 100
	return 100 * (2.716 + t*(9.146+t*(-14.08+t*(9.369-1.916*t))))
}

func InRange(tempK float64) bool {
	return tempK >= ValidMin && tempK <= ValidMax
}
