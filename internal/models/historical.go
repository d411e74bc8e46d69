package models

import "sort"

// HistoricalResult is one classified entrant in one historical race, as
// delivered by the timing-service ingestion pipeline.
type HistoricalResult struct {
	Year           int    `json:"year" db:"year"`
	Round          int    `json:"round" db:"round"`
	Circuit        string `json:"circuit" db:"circuit"`
	Driver         string `json:"driver" db:"driver"`
	Team           string `json:"team" db:"team"`
	Grid           int    `json:"grid" db:"grid"`
	FinishPosition int    `json:"finish_position" db:"finish_position"`
	Status         string `json:"status" db:"status"`
}

// Classified reports whether the entrant completed enough of the race to be
// counted as a finisher.
func (r HistoricalResult) Classified() bool {
	return r.Status == "Finished" || r.Status == "+1 Lap"
}

// EffectivePosition returns the finishing position used for rating updates.
// Unclassified or missing positions count as last place.
func (r HistoricalResult) EffectivePosition() int {
	if r.FinishPosition <= 0 {
		return 20
	}
	return r.FinishPosition
}

// GroupByRace partitions results into races ordered by (year, round). The
// rows inside each race keep their input order.
func GroupByRace(results []HistoricalResult) [][]HistoricalResult {
	type raceKey struct {
		year  int
		round int
	}
	byRace := make(map[raceKey][]HistoricalResult)
	keys := make([]raceKey, 0)
	for _, r := range results {
		k := raceKey{r.Year, r.Round}
		if _, ok := byRace[k]; !ok {
			keys = append(keys, k)
		}
		byRace[k] = append(byRace[k], r)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].round < keys[j].round
	})

	races := make([][]HistoricalResult, 0, len(keys))
	for _, k := range keys {
		races = append(races, byRace[k])
	}
	return races
}
