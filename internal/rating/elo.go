// Package rating maintains Elo-style skill estimates for drivers and teams,
// built by replaying historical race results in chronological order.
package rating

import (
	"math"

	"github.com/yourusername/grid-oracle/internal/models"
)

const (
	// DefaultBase is the rating assigned to entities never seen before.
	DefaultBase = 1500.0
	// driverK and teamK are the Elo K-factors per pairwise comparison.
	driverK = 32.0
	teamK   = 24.0
	// logisticScale is the standard Elo logistic divisor.
	logisticScale = 400.0
)

// Tracker holds driver and team ratings. Ratings change only through whole
// race updates, never mid-race.
type Tracker struct {
	base    float64
	drivers map[string]float64
	teams   map[string]float64
}

// NewTracker creates a tracker where every unseen entity rates at base.
func NewTracker(base float64) *Tracker {
	if base <= 0 {
		base = DefaultBase
	}
	return &Tracker{
		base:    base,
		drivers: make(map[string]float64),
		teams:   make(map[string]float64),
	}
}

// Rating returns the current rating for a driver or team identifier.
func (t *Tracker) Rating(id string, isTeam bool) float64 {
	target := t.drivers
	if isTeam {
		target = t.teams
	}
	if r, ok := target[id]; ok {
		return r
	}
	return t.base
}

// DriverRating is shorthand for Rating(id, false).
func (t *Tracker) DriverRating(id string) float64 { return t.Rating(id, false) }

// TeamRating is shorthand for Rating(id, true).
func (t *Tracker) TeamRating(id string) float64 { return t.Rating(id, true) }

// Update applies one race's results. Every pairwise comparison reads the
// pre-update snapshot, so the whole race updates simultaneously rather than
// sequentially; each pair's deltas are equal and opposite. Driver pairs on
// the same team still update driver ratings but skip the team comparison,
// since a team cannot gain rating by beating itself.
func (t *Tracker) Update(race []models.HistoricalResult) {
	if len(race) < 2 {
		return
	}

	snapD := make(map[string]float64, len(race))
	snapT := make(map[string]float64, len(race))
	for _, row := range race {
		snapD[row.Driver] = t.Rating(row.Driver, false)
		snapT[row.Team] = t.Rating(row.Team, true)
	}
	newD := make(map[string]float64, len(snapD))
	newT := make(map[string]float64, len(snapT))
	for k, v := range snapD {
		newD[k] = v
	}
	for k, v := range snapT {
		newT[k] = v
	}

	for i := 0; i < len(race); i++ {
		a := race[i]
		for j := i + 1; j < len(race); j++ {
			b := race[j]

			score := pairScore(a.EffectivePosition(), b.EffectivePosition())

			expD := expectedScore(snapD[a.Driver], snapD[b.Driver])
			deltaD := driverK * (score - expD)
			newD[a.Driver] += deltaD
			newD[b.Driver] -= deltaD

			if a.Team == b.Team {
				continue
			}
			expT := expectedScore(snapT[a.Team], snapT[b.Team])
			deltaT := teamK * (score - expT)
			newT[a.Team] += deltaT
			newT[b.Team] -= deltaT
		}
	}

	for k, v := range newD {
		t.drivers[k] = v
	}
	for k, v := range newT {
		t.teams[k] = v
	}
}

// DriverCount returns how many drivers have an explicit rating.
func (t *Tracker) DriverCount() int { return len(t.drivers) }

// TeamCount returns how many teams have an explicit rating.
func (t *Tracker) TeamCount() int { return len(t.teams) }

func pairScore(posA, posB int) float64 {
	switch {
	case posA < posB:
		return 1.0
	case posA > posB:
		return 0.0
	default:
		return 0.5
	}
}

func expectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/logisticScale))
}
