package rating

import (
	"math"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/grid-oracle/internal/models"
)

const (
	formWindow        = 5
	reliabilityWindow = 10

	defaultForm        = 0.5
	defaultConsistency = 3.0
	defaultReliability = 0.8
)

// Replay feeds historical results through a fresh tracker in strict
// chronological order and returns the tracker together with per-driver
// derived statistics. Later races depend on the ratings produced by earlier
// ones, so the race loop is inherently sequential.
func Replay(results []models.HistoricalResult, logger *logrus.Logger) (*Tracker, *DriverStats, error) {
	if len(results) == 0 {
		return nil, nil, models.ErrNoHistory
	}

	tracker := NewTracker(DefaultBase)
	stats := NewDriverStats()

	races := models.GroupByRace(results)
	for _, race := range races {
		// Stats are sampled before the update so each race sees only
		// strictly prior information, matching the rating semantics.
		stats.observe(race)
		tracker.Update(race)
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"races":   len(races),
			"drivers": tracker.DriverCount(),
			"teams":   tracker.TeamCount(),
		}).Info("Elo replay complete")
	}

	return tracker, stats, nil
}

// StatsFromHistory rebuilds the derived statistics from stored results
// without touching any ratings.
func StatsFromHistory(results []models.HistoricalResult) *DriverStats {
	stats := NewDriverStats()
	for _, race := range models.GroupByRace(results) {
		stats.observe(race)
	}
	return stats
}

// DriverStats accumulates rolling per-driver and per-team statistics from
// the replayed history: recent form, finishing consistency, and team
// reliability.
type DriverStats struct {
	driverPositions map[string][]int
	teamFinishes    map[string][]bool
}

// NewDriverStats returns an empty statistics accumulator. Every lookup on it
// answers with the documented defaults until races are observed.
func NewDriverStats() *DriverStats {
	return &DriverStats{
		driverPositions: make(map[string][]int),
		teamFinishes:    make(map[string][]bool),
	}
}

func (s *DriverStats) observe(race []models.HistoricalResult) {
	for _, row := range race {
		s.driverPositions[row.Driver] = appendBounded(s.driverPositions[row.Driver], row.EffectivePosition(), formWindow)
		s.teamFinishes[row.Team] = appendBounded(s.teamFinishes[row.Team], row.Classified(), reliabilityWindow)
	}
}

// Form returns the driver's recent form in [0, 1]: 1 means an average
// finishing position of first, 0 means last or worse.
func (s *DriverStats) Form(driver string) float64 {
	positions := s.driverPositions[driver]
	if len(positions) == 0 {
		return defaultForm
	}
	sum := 0
	for _, p := range positions {
		sum += p
	}
	avg := float64(sum) / float64(len(positions))
	form := (21.0 - avg) / 20.0
	if form < 0 {
		form = 0
	}
	return form
}

// Consistency returns the standard deviation of the driver's recent
// finishing positions. Fewer than two results gives the default spread.
func (s *DriverStats) Consistency(driver string) float64 {
	positions := s.driverPositions[driver]
	if len(positions) < 2 {
		return defaultConsistency
	}
	mean := 0.0
	for _, p := range positions {
		mean += float64(p)
	}
	mean /= float64(len(positions))
	variance := 0.0
	for _, p := range positions {
		diff := float64(p) - mean
		variance += diff * diff
	}
	variance /= float64(len(positions) - 1)
	return math.Sqrt(variance)
}

// Reliability returns the share of the team's recent entries that were
// classified finishers.
func (s *DriverStats) Reliability(team string) float64 {
	finishes := s.teamFinishes[team]
	if len(finishes) == 0 {
		return defaultReliability
	}
	finished := 0
	for _, ok := range finishes {
		if ok {
			finished++
		}
	}
	return float64(finished) / float64(len(finishes))
}

func appendBounded[T any](window []T, v T, limit int) []T {
	window = append(window, v)
	if len(window) > limit {
		window = window[len(window)-limit:]
	}
	return window
}

