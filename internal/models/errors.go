package models

import "errors"

// Custom errors
var (
	ErrNoEntrants         = errors.New("entrant list is empty")
	ErrInvalidSimulations = errors.New("simulation count must be positive")
	ErrEmptyResidualPool  = errors.New("residual pool is empty")
	ErrScorerRequired     = errors.New("no ranking scorer injected and heuristic fallback is disabled")
	ErrLapModelRequired   = errors.New("no lap-time model injected")
	ErrInvalidWeather     = errors.New("weather must be Dry or Wet")
	ErrSnapshotNotFound   = errors.New("rating snapshot not found")
	ErrForecastNotFound   = errors.New("forecast not found")
	ErrNoHistory          = errors.New("no historical results available")
)
