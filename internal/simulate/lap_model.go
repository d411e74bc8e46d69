package simulate

// BaselineLapModel is the built-in pace predictor used when no trained model
// is injected. It captures the first-order effects only: fuel weight, tyre
// age, compound offset, and dirty air from running deep in the field.
func BaselineLapModel(lap, tyreLife int, fuelLoad float64, position int, compound string) float64 {
	base := 90.0
	base += fuelLoad * 0.03
	base += float64(tyreLife) * 0.05
	base += float64(position) * 0.02
	switch compound {
	case "SOFT":
		base -= 0.3
	case "HARD":
		base += 0.4
	}
	return base
}
