package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScoreSource identifies which scoring path produced the base ordering for a
// rank-perturbation forecast.
type ScoreSource string

const (
	// ScoreSourceModel means the injected ranking model supplied the scores.
	ScoreSourceModel ScoreSource = "model"
	// ScoreSourceEloGrid means the Elo/grid heuristic fallback was used.
	ScoreSourceEloGrid ScoreSource = "elo_grid_fallback"
	// ScoreSourceLapModel means the per-lap pace model drove the forecast.
	ScoreSourceLapModel ScoreSource = "lap_model"
)

// OutcomeProbability is the derived probability row for one driver. All
// percentages are in [0, 100].
type OutcomeProbability struct {
	Driver      string  `json:"driver" db:"driver"`
	Team        string  `json:"team" db:"team"`
	Grid        int     `json:"grid" db:"grid"`
	WinPct      float64 `json:"win_pct" db:"win_pct"`
	PodiumPct   float64 `json:"podium_pct" db:"podium_pct"`
	Top5Pct     float64 `json:"top5_pct" db:"top5_pct"`
	PointsPct   float64 `json:"points_pct" db:"points_pct"`
	DNFPct      float64 `json:"dnf_pct" db:"dnf_pct"`
	AvgPosition float64 `json:"avg_position" db:"avg_position"`
	Explanation string  `json:"explanation,omitempty" db:"explanation"`
}

// FairWinOdds converts the win percentage into fair decimal odds, rounded to
// two places. Zero-probability drivers have no finite price.
func (o OutcomeProbability) FairWinOdds() (decimal.Decimal, bool) {
	if o.WinPct <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromInt(100).Div(decimal.NewFromFloat(o.WinPct)).Round(2), true
}

// Explain builds the human-readable summary shown next to each row.
func (o *OutcomeProbability) Explain(driverElo, teamElo float64) {
	parts := make([]string, 0, 3)
	switch {
	case driverElo >= 1600:
		parts = append(parts, fmt.Sprintf("Elite Elo (%.0f)", driverElo))
	case driverElo >= 1550:
		parts = append(parts, fmt.Sprintf("Strong Elo (%.0f)", driverElo))
	default:
		parts = append(parts, fmt.Sprintf("Elo %.0f", driverElo))
	}
	switch {
	case o.Grid <= 3:
		parts = append(parts, fmt.Sprintf("Front Row (P%d)", o.Grid))
	case o.Grid <= 10:
		parts = append(parts, fmt.Sprintf("Grid P%d", o.Grid))
	default:
		parts = append(parts, fmt.Sprintf("Back Grid (P%d)", o.Grid))
	}
	if teamElo >= 1580 {
		parts = append(parts, "Top Team")
	}
	o.Explanation = strings.Join(parts, " | ")
}

// Forecast is a complete prediction for one race: the sorted probability
// table plus provenance about how it was produced.
type Forecast struct {
	ID           uuid.UUID            `json:"id" db:"id"`
	RaceName     string               `json:"race_name" db:"race_name"`
	Weather      Weather              `json:"weather" db:"weather"`
	Mode         string               `json:"mode" db:"mode"`
	Simulations  int                  `json:"simulations" db:"simulations"`
	Seed         int64                `json:"seed" db:"seed"`
	ScoreSource  ScoreSource          `json:"score_source" db:"score_source"`
	GridSource   string               `json:"grid_source" db:"grid_source"`
	CoercedCells int                  `json:"coerced_cells" db:"coerced_cells"`
	Rows         []OutcomeProbability `json:"rows"`
	CreatedAt    time.Time            `json:"created_at" db:"created_at"`
}
