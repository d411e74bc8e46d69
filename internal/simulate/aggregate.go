package simulate

import (
	"sort"

	"github.com/yourusername/grid-oracle/internal/models"
)

// Aggregate converts a count matrix into the per-driver probability table.
// Win, podium, top-5 and points percentages are nested-threshold counts over
// the same sample, so win% ≤ podium% ≤ top5% ≤ points% holds by
// construction. Average position is the mean over non-DNF outcomes only.
// Rows come back sorted by win% descending, ties broken by average position
// ascending.
func Aggregate(outcome *Outcome, entrants []models.RaceEntrant) []models.OutcomeProbability {
	if outcome == nil || outcome.Sims == 0 {
		return nil
	}

	rows := make([]models.OutcomeProbability, len(entrants))
	sims := float64(outcome.Sims)

	for d, entrant := range entrants {
		counts := outcome.Counts[d]
		row := models.OutcomeProbability{
			Driver: entrant.Driver,
			Team:   entrant.Team,
			Grid:   entrant.GridPosition,
		}

		row.WinPct = 100 * float64(sumSlots(counts, 1)) / sims
		row.PodiumPct = 100 * float64(sumSlots(counts, 3)) / sims
		row.Top5Pct = 100 * float64(sumSlots(counts, 5)) / sims
		row.PointsPct = 100 * float64(sumSlots(counts, 10)) / sims
		row.DNFPct = 100 * float64(outcome.DNFs[d]) / sims

		finishes := outcome.Sims - outcome.DNFs[d]
		if finishes > 0 {
			weighted := 0.0
			for slot, c := range counts {
				weighted += float64(c) * float64(slot+1)
			}
			row.AvgPosition = weighted / float64(finishes)
		} else {
			row.AvgPosition = float64(len(entrants))
		}

		row.Explain(entrant.DriverElo, entrant.TeamElo)
		rows[d] = row
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].WinPct != rows[j].WinPct {
			return rows[i].WinPct > rows[j].WinPct
		}
		return rows[i].AvgPosition < rows[j].AvgPosition
	})

	return rows
}

func sumSlots(counts []int, upTo int) int {
	if upTo > len(counts) {
		upTo = len(counts)
	}
	total := 0
	for slot := 0; slot < upTo; slot++ {
		total += counts[slot]
	}
	return total
}
