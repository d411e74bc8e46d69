package models

// RaceEntrant is one row of simulation input. It is fully resolved before
// simulation starts: every model or database lookup has already been folded
// into plain values, so the simulators never perform I/O.
type RaceEntrant struct {
	Driver            string  `json:"driver" validate:"required"`
	Team              string  `json:"team" validate:"required"`
	GridPosition      int     `json:"grid_position" validate:"required,gt=0"`
	OvertakingFactor  int     `json:"overtaking_factor" validate:"required,min=1,max=10"`
	Reliability       float64 `json:"reliability" validate:"gte=0,lte=1"`
	Consistency       float64 `json:"consistency" validate:"gte=0"`
	RecentForm        float64 `json:"recent_form"`
	DriverElo         float64 `json:"driver_elo"`
	TeamElo           float64 `json:"team_elo"`
}

// PerformanceWeight is the lap-time multiplier derived from recent form.
// Form 0 (poor) gives 1.01, form 1 (strong) gives 0.99.
func (e RaceEntrant) PerformanceWeight() float64 {
	return 1.01 - 0.02*e.RecentForm
}

// LapNoiseSigma is the per-lap Gaussian noise spread in seconds. Stronger
// form means a tighter spread.
func (e RaceEntrant) LapNoiseSigma() float64 {
	return 0.5 - 0.3*e.RecentForm
}
