package thermal

// reference scenario: 4" schedule-ish line, 50 Nm³/h LN2 boil-off.
func referenceInputs() Inputs {
	return Inputs{
		Length:          10,
		OuterDiameterMM: 114.3,
		WallThicknessMM: 6,
		InitialC:        20,
		TargetC:         -190,
		GasInletC:       -196,
		GasFlowNm3h:     50,
		AmbientC:        20,
		HeatTransfer:    0.05,
		Efficiency:      0.9,
	}
}
