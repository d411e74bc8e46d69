package models

// Weather is the race-day forecast fed into the simulators.
type Weather string

const (
	WeatherDry Weather = "Dry"
	WeatherWet Weather = "Wet"
)

// Valid reports whether the weather value is one of the known forecasts.
func (w Weather) Valid() bool {
	return w == WeatherDry || w == WeatherWet
}

// ChaosMultiplier scales rank perturbation noise: wet races are half again
// as chaotic as dry ones.
func (w Weather) ChaosMultiplier() float64 {
	if w == WeatherWet {
		return 1.5
	}
	return 1.0
}

// DNFMultiplier scales per-entrant retirement probability.
func (w Weather) DNFMultiplier() float64 {
	if w == WeatherWet {
		return 1.5
	}
	return 1.0
}
