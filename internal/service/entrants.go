package service

import (
	"sort"

	"github.com/yourusername/grid-oracle/internal/models"
	"github.com/yourusername/grid-oracle/internal/rating"
)

// Grid provenance values recorded on forecasts.
const (
	GridSourceQualifying = "qualifying"
	GridSourceProjected  = "projected"
)

// EntryRequest names one driver in a prediction request. GridPosition 0
// means qualifying has not happened yet and the slot must be projected.
type EntryRequest struct {
	Driver       string `json:"driver" validate:"required"`
	Team         string `json:"team" validate:"required"`
	GridPosition int    `json:"grid_position" validate:"gte=0"`
}

// buildEntrants resolves entry requests into fully populated simulation
// inputs using the current ratings, replayed statistics, and circuit DNA.
// It returns the entrants plus the grid provenance.
func buildEntrants(entries []EntryRequest, circuit string, tracker *rating.Tracker, stats *rating.DriverStats) ([]models.RaceEntrant, string) {
	dna := models.LookupTrackDNA(circuit)

	entrants := make([]models.RaceEntrant, len(entries))
	needsProjection := false
	for i, entry := range entries {
		entrants[i] = models.RaceEntrant{
			Driver:           entry.Driver,
			Team:             entry.Team,
			GridPosition:     entry.GridPosition,
			OvertakingFactor: dna.Overtaking,
			Reliability:      stats.Reliability(entry.Team),
			Consistency:      stats.Consistency(entry.Driver),
			RecentForm:       stats.Form(entry.Driver),
			DriverElo:        tracker.DriverRating(entry.Driver),
			TeamElo:          tracker.TeamRating(entry.Team),
		}
		if entry.GridPosition <= 0 {
			needsProjection = true
		}
	}

	if !needsProjection {
		return entrants, GridSourceQualifying
	}

	projectGrid(entrants)
	return entrants, GridSourceProjected
}

// projectGrid fills the whole grid from ratings when any slot is missing.
// Partial qualifying data is discarded rather than merged, so the projected
// order is internally consistent.
func projectGrid(entrants []models.RaceEntrant) {
	order := make([]int, len(entrants))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return projectedPace(entrants[order[a]]) > projectedPace(entrants[order[b]])
	})
	for slot, idx := range order {
		entrants[idx].GridPosition = slot + 1
	}
}

// projectedPace weighs driver skill over team machinery for grid projection.
func projectedPace(e models.RaceEntrant) float64 {
	return 0.6*e.DriverElo + 0.4*e.TeamElo
}
